package services

import (
	"context"
	"crypto/subtle"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/careerdesk/careerdesk/api/internal/core/domain"
)

var _ domain.AuthService = (*AuthService)(nil)

// AuthService guards the admin analysis console. There is a single admin
// account configured by username and bcrypt hash.
type AuthService struct {
	username     string
	passwordHash []byte
	tokens       *TokenService
	logger       *slog.Logger
}

func NewAuthService(username, passwordHash string, tokens *TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		username:     username,
		passwordHash: []byte(passwordHash),
		tokens:       tokens,
		logger:       logger,
	}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1

	// Constant-time check, run even for a wrong username so timing does not leak it
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))

	if !userOK || passErr != nil {
		s.logger.Warn("Admin login rejected", slog.String("username", username))
		return "", "", domain.ErrInvalidCredentials
	}

	return s.tokens.GenerateTokenPair(s.username)
}

// Refresh rotates the session: a valid refresh token buys a brand-new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	subject, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil || subject != s.username {
		return "", "", domain.ErrInvalidCredentials
	}
	return s.tokens.GenerateTokenPair(subject)
}

func (s *AuthService) ValidateAccessToken(ctx context.Context, token string) (*domain.AdminClaims, error) {
	subject, err := s.tokens.VerifyAccessToken(token)
	if err != nil || subject != s.username {
		return nil, domain.ErrInvalidCredentials
	}
	return &domain.AdminClaims{Subject: subject}, nil
}

// HashAdminPassword produces the value expected in ADMIN_PASSWORD_HASH.
func HashAdminPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
