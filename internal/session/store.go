package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/thomas/lookbook-terminal/internal/api"
)

// ErrNotAdmin is returned when a non-admin account signs in to the admin console.
var ErrNotAdmin = errors.New("this account does not have admin access")

var errServerNoToken = errors.New("server returned no token")

// Store holds the signed-in user of one role.
type Store struct {
	mu      sync.RWMutex
	client  *api.Client
	tokens  *Tokens
	user    *Profile
	logger  *log.Logger
	nowFunc func() time.Time // For testing
}

// NewStore creates a session store. client must use tokens as its token store.
func NewStore(client *api.Client, tokens *Tokens, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		client:  client,
		tokens:  tokens,
		logger:  logger.WithPrefix("session"),
		nowFunc: time.Now,
	}
}

// User returns the signed-in user, or nil.
func (s *Store) User() *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// SignedIn reports whether a user is loaded.
func (s *Store) SignedIn() bool {
	return s.User() != nil
}

func (s *Store) setUser(p *Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = p
}

// Bootstrap restores the user from the stored token. Any failure leaves the
// session signed out; it is never returned to the caller.
func (s *Store) Bootstrap(ctx context.Context) *Profile {
	token := s.tokens.Token()
	if token == "" {
		s.setUser(nil)
		return nil
	}

	if Expired(token, s.nowFunc()) {
		s.logger.Debug("Stored token expired", "role", s.client.Role())
		s.tokens.ClearToken()
		s.setUser(nil)
		return nil
	}

	raw, err := s.client.Profile(ctx)
	if err != nil {
		s.logger.Debug("Bootstrap failed", "role", s.client.Role(), "err", err)
		s.setUser(nil)
		return nil
	}

	user := Normalize(raw)
	if s.client.Role() == api.RoleAdmin && !user.IsAdmin() {
		s.tokens.ClearToken()
		s.setUser(nil)
		return nil
	}

	s.setUser(user)
	return user
}

// Login signs in. For the admin role, non-admin accounts are rejected with ErrNotAdmin
// and their token is discarded.
func (s *Store) Login(ctx context.Context, email, password string) (*Profile, error) {
	resp, err := s.client.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return s.accept(ctx, resp)
}

// Register creates a customer account and signs in with it.
func (s *Store) Register(ctx context.Context, req api.RegisterRequest) (*Profile, error) {
	resp, err := s.client.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.accept(ctx, resp)
}

func (s *Store) accept(ctx context.Context, resp *api.AuthResponse) (*Profile, error) {
	if resp.Token == "" {
		return nil, errServerNoToken
	}
	s.tokens.SetToken(resp.Token)

	raw := resp.User
	if raw == nil {
		var err error
		if raw, err = s.client.Profile(ctx); err != nil {
			s.tokens.ClearToken()
			return nil, err
		}
	}

	user := Normalize(raw)
	if s.client.Role() == api.RoleAdmin {
		if !user.IsAdmin() {
			s.tokens.ClearToken()
			return nil, ErrNotAdmin
		}
		s.tokens.SaveAdminSession(AdminSession{
			Email:     user.Email,
			Name:      user.Name,
			Role:      user.Role,
			StartedAt: s.nowFunc().UTC(),
		})
	}

	s.setUser(user)
	s.logger.Info("Signed in", "role", s.client.Role(), "email", user.Email)
	return user, nil
}

// Logout forgets the token and the user.
func (s *Store) Logout() {
	s.tokens.ClearToken()
	s.setUser(nil)
}

// UpdateProfile saves profile changes and reloads the user from the response.
func (s *Store) UpdateProfile(ctx context.Context, update api.ProfileUpdate) (*Profile, error) {
	raw, err := s.client.UpdateProfile(ctx, update)
	if err != nil {
		return nil, err
	}
	user := Normalize(raw)
	s.setUser(user)
	return user, nil
}

// ChangePassword changes the signed-in user's password.
func (s *Store) ChangePassword(ctx context.Context, current, next string) error {
	return s.client.ChangePassword(ctx, api.PasswordChange{CurrentPassword: current, NewPassword: next})
}

// HandleError signs the session out when err is a 401. The client has already
// cleared the token.
func (s *Store) HandleError(err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Unauthorized() {
		s.setUser(nil)
	}
}
