package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	appErr "github.com/schemapilot/schemapilot/internal/pkg/errors"
	"github.com/schemapilot/schemapilot/internal/pkg/jwt"
)

// AuthService verifies the single config-provisioned admin account and
// issues tokens for the mutating routes.
type AuthService struct {
	adminUser string
	passHash  string
	secret    []byte
	ttl       time.Duration
}

func NewAuthService(adminUser, passHash string, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{
		adminUser: adminUser,
		passHash:  passHash,
		secret:    secret,
		ttl:       ttl,
	}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	_ = ctx
	if username != s.adminUser {
		return "", appErr.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passHash), []byte(password)); err != nil {
		return "", appErr.ErrUnauthorized
	}
	return jwt.GenerateToken(username, "admin", s.secret, s.ttl)
}
