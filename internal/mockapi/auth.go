package mockapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/thomas/lookbook-terminal/internal/api"
)

const (
	roleAdmin    = "admin"
	roleCustomer = "customer"

	minPasswordLength = 6

	ctxAccount   = "account"
	ctxAuthError = "authError"
)

// Claims are the claims of an issued bearer token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(u api.User) (string, error) {
	now := s.nowFunc()
	claims := Claims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID(u),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opts.JWTSecret))
}

func (s *Server) parseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithTimeFunc(s.nowFunc))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// authenticate resolves the bearer token, if any. A bad token leaves the request
// anonymous so public routes keep working; protected routes report why it was rejected.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.Set(ctxAuthError, "authorization header must be in format: Bearer <token>")
			c.Next()
			return
		}

		claims, err := s.parseToken(tokenString)
		if err != nil {
			c.Set(ctxAuthError, "invalid or expired token")
			c.Next()
			return
		}

		s.store.mu.RLock()
		a := s.store.accountByID(claims.Subject)
		s.store.mu.RUnlock()
		if a == nil {
			c.Set(ctxAuthError, "account no longer exists")
			c.Next()
			return
		}

		c.Set(ctxAccount, a)
		c.Next()
	}
}

func unauthenticated(c *gin.Context) {
	msg := c.GetString(ctxAuthError)
	if msg == "" {
		msg = "authentication required"
	}
	fail(c, http.StatusUnauthorized, msg)
}

func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentAccount(c) == nil {
			unauthenticated(c)
			return
		}
		c.Next()
	}
}

func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		a := currentAccount(c)
		if a == nil {
			unauthenticated(c)
			return
		}
		if a.user.Role != roleAdmin {
			fail(c, http.StatusForbidden, "admin access required")
			return
		}
		c.Next()
	}
}

func currentAccount(c *gin.Context) *account {
	v, ok := c.Get(ctxAccount)
	if !ok {
		return nil
	}
	a, _ := v.(*account)
	return a
}

// ============================================
// Handlers
// ============================================

func (s *Server) login(c *gin.Context) {
	if !s.limiter.Allow() {
		fail(c, http.StatusTooManyRequests, "too many login attempts, try again shortly")
		return
	}

	var creds api.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	s.store.mu.RLock()
	a := s.store.accountByEmail(creds.Email)
	var hash []byte
	if a != nil {
		hash = a.passwordHash
	}
	s.store.mu.RUnlock()

	if a == nil || bcrypt.CompareHashAndPassword(hash, []byte(creds.Password)) != nil {
		s.logger.WithField("email", creds.Email).Info("login rejected")
		fail(c, http.StatusUnauthorized, "invalid email or password")
		return
	}

	s.respondWithToken(c, http.StatusOK, a)
}

func (s *Server) register(c *gin.Context) {
	var req api.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	email := strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		fail(c, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		fail(c, http.StatusBadRequest, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		return
	}

	s.store.mu.Lock()
	if s.store.accountByEmail(email) != nil {
		s.store.mu.Unlock()
		fail(c, http.StatusConflict, "an account with this email already exists")
		return
	}
	a, err := s.store.addAccount(api.User{
		ID:    uuid.NewString(),
		Email: email,
		Role:  roleCustomer,
		Profile: &api.UserProfile{
			FirstName: strings.TrimSpace(req.FirstName),
			LastName:  strings.TrimSpace(req.LastName),
		},
	}, req.Password)
	s.store.mu.Unlock()
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.WithField("email", email).Info("account registered")
	s.respondWithToken(c, http.StatusCreated, a)
}

func (s *Server) respondWithToken(c *gin.Context, status int, a *account) {
	s.store.mu.RLock()
	user := a.user
	s.store.mu.RUnlock()

	token, err := s.issueToken(user)
	if err != nil {
		fail(c, http.StatusInternalServerError, "issuing token failed")
		return
	}
	c.JSON(status, api.AuthResponse{Token: token, User: &user})
}

func (s *Server) profile(c *gin.Context) {
	s.store.mu.RLock()
	user := currentAccount(c).user
	s.store.mu.RUnlock()
	c.JSON(http.StatusOK, user)
}

func (s *Server) updateProfile(c *gin.Context) {
	var update api.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	a := currentAccount(c)
	if email := strings.TrimSpace(update.Email); email != "" && !strings.EqualFold(email, a.user.Email) {
		if s.store.accountByEmail(email) != nil {
			fail(c, http.StatusConflict, "an account with this email already exists")
			return
		}
		delete(s.store.accounts, strings.ToLower(a.user.Email))
		a.user.Email = email
		s.store.accounts[strings.ToLower(email)] = a
	}
	if name := strings.TrimSpace(update.Name); name != "" {
		a.user.Name = name
	}
	if update.Profile != nil {
		p := *update.Profile
		a.user.Profile = &p
	}

	c.JSON(http.StatusOK, a.user)
}

func (s *Server) changePassword(c *gin.Context) {
	var change api.PasswordChange
	if err := c.ShouldBindJSON(&change); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(change.NewPassword) < minPasswordLength {
		fail(c, http.StatusBadRequest, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	a := currentAccount(c)
	if bcrypt.CompareHashAndPassword(a.passwordHash, []byte(change.CurrentPassword)) != nil {
		fail(c, http.StatusBadRequest, "current password is incorrect")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(change.NewPassword), s.store.passwordCost)
	if err != nil {
		fail(c, http.StatusInternalServerError, "hashing password failed")
		return
	}
	a.passwordHash = hash

	c.Status(http.StatusNoContent)
}
