package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/oneday-labs/intake-api/internal/models"
	"github.com/oneday-labs/intake-api/pkg/config"
	appErrors "github.com/oneday-labs/intake-api/pkg/errors"
)

// AuthService authenticates the single configured operator and issues the
// JWTs that guard the admin surface.
type AuthService struct {
	adminEmail   string
	passwordHash string
	jwtSecret    []byte
	jwtExpiry    time.Duration
	jwtIssuer    string
	logger       *zap.Logger
	now          func() time.Time
}

// NewAuthService constructs the auth service from configuration.
func NewAuthService(cfg *config.Config, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	expiry := cfg.JWT.Expiration
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &AuthService{
		adminEmail:   strings.ToLower(strings.TrimSpace(cfg.Admin.Email)),
		passwordHash: cfg.Admin.PasswordHash,
		jwtSecret:    []byte(cfg.JWT.Secret),
		jwtExpiry:    expiry,
		jwtIssuer:    cfg.JWT.Issuer,
		logger:       logger,
		now:          time.Now,
	}
}

// Login verifies the operator credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if s.adminEmail == "" || s.passwordHash == "" {
		s.logger.Warn("login attempted with no operator configured")
		return nil, appErrors.ErrInvalidCredentials
	}

	if strings.ToLower(strings.TrimSpace(req.Email)) != s.adminEmail {
		return nil, appErrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	issuedAt := s.now().UTC()
	claims := models.JWTClaims{
		Email: s.adminEmail,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.jwtIssuer,
			Subject:   s.adminEmail,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.jwtExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		s.logger.Error("failed to sign token", zap.Error(err))
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal)
	}

	s.logger.Info("operator logged in", zap.String("email", s.adminEmail))
	return &models.LoginResponse{
		AccessToken: signed,
		ExpiresIn:   int64(s.jwtExpiry.Seconds()),
		IssuedAt:    issuedAt,
	}, nil
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErrors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok {
		return nil, appErrors.ErrUnauthorized
	}
	return claims, nil
}
