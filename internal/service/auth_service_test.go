package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oneday-labs/intake-api/internal/models"
	"github.com/oneday-labs/intake-api/pkg/config"
	appErrors "github.com/oneday-labs/intake-api/pkg/errors"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("sup3rsecret"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Admin.Email = "ops@example.com"
	cfg.Admin.PasswordHash = string(hash)
	cfg.JWT.Secret = "test-signing-key"
	cfg.JWT.Expiration = time.Hour
	cfg.JWT.Issuer = "intake-api"
	return NewAuthService(cfg, nil)
}

func TestLoginSuccess(t *testing.T) {
	svc := newTestAuthService(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "Ops@Example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Email)
	assert.Equal(t, "intake-api", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestAuthService(t)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "ops@example.com", "nope"},
		{"unknown email", "other@example.com", "sup3rsecret"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), models.LoginRequest{Email: tc.email, Password: tc.password})
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestLoginWithoutConfiguredOperator(t *testing.T) {
	svc := NewAuthService(&config.Config{}, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "a@b.co", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := newTestAuthService(t)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ops@example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken)
	require.Error(t, err)
}
