package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/resumatch/resumatch-backend/config"
	"github.com/resumatch/resumatch-backend/internal/api"
	"github.com/resumatch/resumatch-backend/internal/types"
)

// TokenService signs and verifies the stateless session credential. A
// small in-process deny-list keyed by jti gives signout real revocation
// until the token would have expired naturally.
type TokenService struct {
	secret   []byte
	ttl      time.Duration
	issuer   string
	denylist *gocache.Cache
	logger   *slog.Logger
}

func NewTokenService(cfg config.JWTConfig, logger *slog.Logger) (*TokenService, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("token service: signing secret is empty")
	}
	return &TokenService{
		secret:   []byte(cfg.SecretKey),
		ttl:      cfg.TokenTTL,
		issuer:   cfg.Issuer,
		denylist: gocache.New(cfg.TokenTTL, 10*time.Minute),
		logger:   logger,
	}, nil
}

// TTL exposes the configured token lifetime so the cookie MaxAge can
// match it exactly.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue produces a signed, expiring token for the given user.
func (s *TokenService) Issue(user *types.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify decodes the token and checks signature, expiry, issuer and the
// revocation deny-list. Every failure collapses to ErrUnauthenticated so
// the caller cannot leak which check tripped.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		s.logger.Debug("Token verification failed", slog.Any("error", err))
		return nil, api.ErrUnauthenticated
	}

	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, api.ErrUnauthenticated
	}

	if claims.ID != "" {
		if _, revoked := s.denylist.Get(claims.ID); revoked {
			return nil, api.ErrUnauthenticated
		}
	}

	return claims, nil
}

// Revoke deny-lists the token's jti for its remaining lifetime. Tokens
// without an expiry fall back to the full TTL.
func (s *TokenService) Revoke(claims *Claims) {
	if claims == nil || claims.ID == "" {
		return
	}
	remaining := s.ttl
	if claims.ExpiresAt != nil {
		remaining = time.Until(claims.ExpiresAt.Time)
	}
	if remaining <= 0 {
		return
	}
	s.denylist.Set(claims.ID, struct{}{}, remaining)
}
