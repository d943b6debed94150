package auth

import (
	"context"
	"errors"
	"time"

	"booksstock/internal/entity"
	"booksstock/internal/platform/crypto"
	"booksstock/internal/user"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when valid credentials belong to an account
	// that may not administer the catalog.
	ErrForbidden = errors.New("forbidden")
)

// Token is an issued access token.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Service struct {
	secret      string
	ttl         time.Duration
	userService *user.Service
	blacklist   Blacklist
}

func NewService(secret string, ttl time.Duration, userService *user.Service, blacklist Blacklist) *Service {
	return &Service{secret: secret, ttl: ttl, userService: userService, blacklist: blacklist}
}

func (s *Service) Login(ctx context.Context, login, password string) (Token, error) {
	u, err := s.userService.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Token{}, ErrUnauthorized
		}
		return Token{}, err
	}
	if !crypto.VerifyPassword(u.Password, password) {
		return Token{}, ErrUnauthorized
	}
	if u.Role != entity.RoleAdmin {
		return Token{}, ErrForbidden
	}

	value, _, expiresAt, err := crypto.GenerateToken(s.secret, u.ID, u.Login, u.Role, s.ttl)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: value, ExpiresAt: expiresAt}, nil
}

// Logout revokes token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := crypto.ParseToken(s.secret, token)
	if err != nil {
		return ErrUnauthorized
	}
	return s.blacklist.AddToken(ctx, claims.ID, claims.Sub, claims.ExpiresAt.Time)
}

// ParseToken satisfies httpx.TokenParser. Revoked tokens are rejected.
func (s *Service) ParseToken(ctx context.Context, token string) (string, string, error) {
	claims, err := crypto.ParseToken(s.secret, token)
	if err != nil {
		return "", "", ErrUnauthorized
	}
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return "", "", err
	}
	if revoked {
		return "", "", ErrUnauthorized
	}
	return claims.Sub, claims.Role, nil
}
