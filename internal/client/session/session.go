// Package session owns the authenticated identity for the running
// client. It is the single writer of auth state: only Restore, Login,
// Register and Logout touch it, everything else reads.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/joaomvale/turvia/internal/models"
)

// API is the slice of the backend the session store needs.
type API interface {
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, name, email, password string) (*models.AuthResponse, error)
	Me(ctx context.Context) (*models.User, error)
}

// Credentials persists the bearer token between runs.
type Credentials interface {
	Token() string
	Save(token string) error
	Clear() error
}

// AuthError reports a rejected login or registration. Op is "login" or
// "register"; Err is the backend's rejection, message verbatim.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return e.Op + " failed: " + e.Err.Error()
}

func (e *AuthError) Unwrap() error { return e.Err }

// Store holds the current identity. The zero value is not usable; use
// New.
type Store struct {
	api   API
	creds Credentials
	log   *zap.Logger

	mu   sync.Mutex
	user *models.User
}

// New returns a Store with no identity. Call Restore at startup to
// pick up a persisted credential.
func New(api API, creds Credentials, log *zap.Logger) *Store {
	return &Store{api: api, creds: creds, log: log}
}

// Restore checks a persisted token against the backend. On success the
// identity is set; on rejection the stale credential is cleared and
// the client continues unauthenticated. Only an error writing the
// credential store is returned.
func (s *Store) Restore(ctx context.Context) error {
	if s.creds.Token() == "" {
		return nil
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		s.log.Warn("session restore rejected, clearing credential", zap.Error(err))
		s.mu.Lock()
		s.user = nil
		s.mu.Unlock()
		return s.creds.Clear()
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	s.log.Info("session restored", zap.String("user", user.Email))
	return nil
}

// Login authenticates and replaces any prior session atomically. The
// identity is only set once the credential is persisted, so no partial
// session is ever visible.
func (s *Store) Login(ctx context.Context, email, password string) (*models.User, error) {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, &AuthError{Op: "login", Err: err}
	}
	return s.install(resp)
}

// Register creates an account and logs it in. Same contract as Login.
func (s *Store) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	resp, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		return nil, &AuthError{Op: "register", Err: err}
	}
	return s.install(resp)
}

func (s *Store) install(resp *models.AuthResponse) (*models.User, error) {
	if err := s.creds.Save(resp.Token); err != nil {
		return nil, fmt.Errorf("persist credential: %w", err)
	}
	user := resp.User
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return &user, nil
}

// Logout drops the identity and the persisted credential. No network
// call is made; logging out twice is harmless.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	return s.creds.Clear()
}

// User returns the current identity, or nil when unauthenticated.
func (s *Store) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// IsAuthenticated reports whether an identity is present.
func (s *Store) IsAuthenticated() bool {
	return s.User() != nil
}

// IsAdmin reports whether the current identity holds the ADMIN role.
// Always derived from the role on read; never cached separately.
func (s *Store) IsAdmin() bool {
	return s.User().IsAdmin()
}

// TokenExpiry peeks at the expiry claim of the stored token without
// verifying the signature. Display only; /auth/me stays the source of
// truth for whether the token is good.
func (s *Store) TokenExpiry() (time.Time, bool) {
	token := s.creds.Token()
	if token == "" {
		return time.Time{}, false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
