package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/resumatch/resumatch-backend/internal/api"
	"github.com/resumatch/resumatch-backend/internal/types"
)

// bcryptCost matches the saltRounds the rest of the deployment's stored
// hashes were produced with.
const bcryptCost = 12

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// Register creates a user with the default role and returns the user
	// plus a freshly issued session token.
	Register(ctx context.Context, username, password string) (*types.User, string, error)

	// Login verifies credentials and returns the user plus a session token.
	// Unknown username -> api.ErrNotFound; wrong password -> api.ErrUnauthenticated.
	Login(ctx context.Context, username, password string) (*types.User, string, error)
}

type ServiceImpl struct {
	repo   Repository
	tokens *TokenService
	logger *slog.Logger
}

func NewService(repo Repository, tokens *TokenService, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:   repo,
		tokens: tokens,
		logger: logger,
	}
}

func (s *ServiceImpl) Register(ctx context.Context, username, password string) (*types.User, string, error) {
	l := s.logger.With(slog.String("method", "Register"), slog.String("username", username))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, username, string(hash))
	if err != nil {
		if errors.Is(err, api.ErrConflict) {
			l.WarnContext(ctx, "Signup with taken username")
			return nil, "", err
		}
		return nil, "", fmt.Errorf("register: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("register: %w", err)
	}

	l.InfoContext(ctx, "User registered", slog.String("user_id", user.ID.String()))
	return user, token, nil
}

func (s *ServiceImpl) Login(ctx context.Context, username, password string) (*types.User, string, error) {
	l := s.logger.With(slog.String("method", "Login"), slog.String("username", username))

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			l.WarnContext(ctx, "Login for unknown username")
			return nil, "", api.ErrNotFound
		}
		return nil, "", fmt.Errorf("login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		l.WarnContext(ctx, "Login with invalid password")
		return nil, "", api.ErrUnauthenticated
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("login: %w", err)
	}

	return user, token, nil
}
