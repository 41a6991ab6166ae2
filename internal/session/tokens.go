package session

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"

	"github.com/thomas/lookbook-terminal/internal/api"
	"github.com/thomas/lookbook-terminal/internal/storage"
)

// Persisted token keys.
const (
	CustomerTokenKey = "authToken"
	AdminTokenKey    = "adminAuthToken"
	AdminSessionKey  = "adminSession:v1"
)

// AdminSession describes who opened the admin console and when.
type AdminSession struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	StartedAt time.Time `json:"startedAt"`
}

// Tokens persists the bearer token of one role. It implements api.TokenStore.
type Tokens struct {
	mu     sync.RWMutex
	kv     storage.KV
	role   api.Role
	token  string
	logger *log.Logger
}

var _ api.TokenStore = (*Tokens)(nil)

// NewTokens loads the stored token for role from kv.
func NewTokens(kv storage.KV, role api.Role, logger *log.Logger) *Tokens {
	if logger == nil {
		logger = log.Default()
	}
	t := &Tokens{kv: kv, role: role, logger: logger.WithPrefix("tokens")}

	data, err := kv.Load(t.key())
	switch {
	case err == nil:
		t.token = string(data)
	case !errors.Is(err, storage.ErrNotFound):
		t.logger.Warn("Failed to load token", "role", role, "err", err)
	}
	return t
}

func (t *Tokens) key() string {
	if t.role == api.RoleAdmin {
		return AdminTokenKey
	}
	return CustomerTokenKey
}

// Token returns the current token, or "" when signed out.
func (t *Tokens) Token() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token
}

// SetToken stores a new token.
func (t *Tokens) SetToken(token string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.token = token
	if err := t.kv.Save(t.key(), []byte(token)); err != nil {
		t.logger.Debug("Failed to persist token", "role", t.role, "err", err)
	}
}

// ClearToken forgets the token. For the admin role the admin session record goes too.
func (t *Tokens) ClearToken() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.token = ""
	if err := t.kv.Remove(t.key()); err != nil {
		t.logger.Debug("Failed to remove token", "role", t.role, "err", err)
	}
	if t.role == api.RoleAdmin {
		if err := t.kv.Remove(AdminSessionKey); err != nil {
			t.logger.Debug("Failed to remove admin session", "err", err)
		}
	}
}

// SaveAdminSession records the admin session. It is a no-op for customers.
func (t *Tokens) SaveAdminSession(s AdminSession) {
	if t.role != api.RoleAdmin {
		return
	}
	data, err := json.Marshal(s)
	if err != nil {
		t.logger.Debug("Failed to encode admin session", "err", err)
		return
	}
	if err := t.kv.Save(AdminSessionKey, data); err != nil {
		t.logger.Debug("Failed to persist admin session", "err", err)
	}
}

// AdminSession returns the recorded admin session, if any.
func (t *Tokens) AdminSession() (*AdminSession, bool) {
	if t.role != api.RoleAdmin {
		return nil, false
	}
	data, err := t.kv.Load(AdminSessionKey)
	if err != nil {
		return nil, false
	}
	var s AdminSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, false
	}
	return &s, true
}

// Expired reports whether token is a JWT whose exp claim lies before now.
// Opaque tokens and JWTs without exp never expire client side; the server decides.
func Expired(token string, now time.Time) bool {
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}
