package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/joaomvale/turvia/internal/client/session"
	"github.com/joaomvale/turvia/internal/models"
)

type fakeAPI struct {
	LoginFunc    func(ctx context.Context, email, password string) (*models.AuthResponse, error)
	RegisterFunc func(ctx context.Context, name, email, password string) (*models.AuthResponse, error)
	MeFunc       func(ctx context.Context) (*models.User, error)
	meCalls      int
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	return f.LoginFunc(ctx, email, password)
}

func (f *fakeAPI) Register(ctx context.Context, name, email, password string) (*models.AuthResponse, error) {
	return f.RegisterFunc(ctx, name, email, password)
}

func (f *fakeAPI) Me(ctx context.Context) (*models.User, error) {
	f.meCalls++
	return f.MeFunc(ctx)
}

type fakeCreds struct {
	token    string
	saveErr  error
	clearErr error
	clears   int
}

func (f *fakeCreds) Token() string { return f.token }

func (f *fakeCreds) Save(token string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.token = token
	return nil
}

func (f *fakeCreds) Clear() error {
	f.clears++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.token = ""
	return nil
}

func adminUser() models.User {
	return models.User{ID: "u1", Name: "Ana", Email: "ana@example.com", Role: models.RoleAdmin}
}

func TestLogin_Success(t *testing.T) {
	user := adminUser()
	api := &fakeAPI{
		LoginFunc: func(_ context.Context, email, password string) (*models.AuthResponse, error) {
			require.Equal(t, "ana@example.com", email)
			require.Equal(t, "secret", password)
			return &models.AuthResponse{Token: "tok-1", User: user}, nil
		},
	}
	creds := &fakeCreds{}
	s := session.New(api, creds, zap.NewNop())

	got, err := s.Login(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "tok-1", creds.token)
	assert.True(t, s.IsAuthenticated())
	assert.True(t, s.IsAdmin())
}

func TestLogin_Rejected(t *testing.T) {
	api := &fakeAPI{
		LoginFunc: func(context.Context, string, string) (*models.AuthResponse, error) {
			return nil, errors.New("Credenciais inválidas")
		},
	}
	creds := &fakeCreds{}
	s := session.New(api, creds, zap.NewNop())

	_, err := s.Login(context.Background(), "ana@example.com", "wrong")
	var authErr *session.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "login", authErr.Op)
	assert.Contains(t, err.Error(), "Credenciais inválidas")
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, creds.token)
}

func TestLogin_PersistFailureLeavesNoIdentity(t *testing.T) {
	api := &fakeAPI{
		LoginFunc: func(context.Context, string, string) (*models.AuthResponse, error) {
			return &models.AuthResponse{Token: "tok-1", User: adminUser()}, nil
		},
	}
	creds := &fakeCreds{saveErr: errors.New("disk full")}
	s := session.New(api, creds, zap.NewNop())

	_, err := s.Login(context.Background(), "ana@example.com", "secret")
	require.Error(t, err)
	// No partial session: the identity must not be visible either.
	assert.False(t, s.IsAuthenticated())
}

func TestRegister_Rejected(t *testing.T) {
	api := &fakeAPI{
		RegisterFunc: func(context.Context, string, string, string) (*models.AuthResponse, error) {
			return nil, errors.New("email already taken")
		},
	}
	s := session.New(api, &fakeCreds{}, zap.NewNop())

	_, err := s.Register(context.Background(), "Ana", "ana@example.com", "secret")
	var authErr *session.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "register", authErr.Op)
}

func TestRestore_NoCredentialSkipsNetwork(t *testing.T) {
	api := &fakeAPI{
		MeFunc: func(context.Context) (*models.User, error) {
			return nil, errors.New("should not be called")
		},
	}
	s := session.New(api, &fakeCreds{}, zap.NewNop())

	require.NoError(t, s.Restore(context.Background()))
	assert.Zero(t, api.meCalls)
	assert.False(t, s.IsAuthenticated())
}

func TestRestore_Success(t *testing.T) {
	user := adminUser()
	api := &fakeAPI{
		MeFunc: func(context.Context) (*models.User, error) { return &user, nil },
	}
	s := session.New(api, &fakeCreds{token: "tok-1"}, zap.NewNop())

	require.NoError(t, s.Restore(context.Background()))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "u1", s.User().ID)
}

func TestRestore_RejectedClearsCredential(t *testing.T) {
	api := &fakeAPI{
		MeFunc: func(context.Context) (*models.User, error) {
			return nil, errors.New("token expired")
		},
	}
	creds := &fakeCreds{token: "stale"}
	s := session.New(api, creds, zap.NewNop())

	require.NoError(t, s.Restore(context.Background()))
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, creds.token)
	assert.Equal(t, 1, creds.clears)
}

func TestLogout_Idempotent(t *testing.T) {
	user := adminUser()
	api := &fakeAPI{
		LoginFunc: func(context.Context, string, string) (*models.AuthResponse, error) {
			return &models.AuthResponse{Token: "tok-1", User: user}, nil
		},
		MeFunc: func(context.Context) (*models.User, error) {
			return nil, errors.New("should not be called")
		},
	}
	creds := &fakeCreds{}
	s := session.New(api, creds, zap.NewNop())

	_, err := s.Login(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)

	require.NoError(t, s.Logout())
	require.NoError(t, s.Logout())
	assert.False(t, s.IsAuthenticated())
	assert.False(t, s.IsAdmin())

	// A restore after logout finds no credential and stays offline.
	require.NoError(t, s.Restore(context.Background()))
	assert.Zero(t, api.meCalls)
	assert.False(t, s.IsAuthenticated())
}

func TestIsAdmin_DerivedFromRole(t *testing.T) {
	tests := []struct {
		name string
		user *models.User
		want bool
	}{
		{"admin role", &models.User{ID: "u1", Role: models.RoleAdmin}, true},
		{"user role", &models.User{ID: "u2", Role: models.RoleUser}, false},
		{"no identity", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{
				MeFunc: func(context.Context) (*models.User, error) {
					if tt.user == nil {
						return nil, errors.New("no session")
					}
					return tt.user, nil
				},
			}
			creds := &fakeCreds{}
			if tt.user != nil {
				creds.token = "tok"
			}
			s := session.New(api, creds, zap.NewNop())
			require.NoError(t, s.Restore(context.Background()))
			assert.Equal(t, tt.want, s.IsAdmin())
			assert.Equal(t, tt.user != nil, s.IsAuthenticated())
		})
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	s := session.New(&fakeAPI{}, &fakeCreds{token: token}, zap.NewNop())
	got, ok := s.TokenExpiry()
	require.True(t, ok)
	assert.True(t, got.Equal(exp))
}

func TestTokenExpiry_OpaqueToken(t *testing.T) {
	s := session.New(&fakeAPI{}, &fakeCreds{token: "not-a-jwt"}, zap.NewNop())
	_, ok := s.TokenExpiry()
	assert.False(t, ok)
}
