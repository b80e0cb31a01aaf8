package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/resumatch/resumatch-backend/internal/api"
	"github.com/resumatch/resumatch-backend/internal/types"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	EndpointStats(ctx context.Context) ([]types.EndpointStat, error)
	UserStats(ctx context.Context) ([]types.UserStat, error)

	// ListUsers normalizes page/limit (defaults 1/10, limit capped at
	// 100) and returns one page plus pagination metadata.
	ListUsers(ctx context.Context, page, limit int) (*types.UserPage, error)

	// UpdateUserRole rejects roles outside {admin, user} with
	// api.ErrValidation before touching storage.
	UpdateUserRole(ctx context.Context, userID uuid.UUID, role string) error

	// DeleteUser rejects self-deletion with api.ErrValidation.
	DeleteUser(ctx context.Context, callerID, userID uuid.UUID) error
}

type ServiceImpl struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

func (s *ServiceImpl) EndpointStats(ctx context.Context) ([]types.EndpointStat, error) {
	return s.repo.EndpointStats(ctx)
}

func (s *ServiceImpl) UserStats(ctx context.Context) ([]types.UserStat, error) {
	return s.repo.UserStats(ctx)
}

func (s *ServiceImpl) ListUsers(ctx context.Context, page, limit int) (*types.UserPage, error) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset := (page - 1) * limit
	users, total, err := s.repo.ListUsers(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &types.UserPage{
		Users: users,
		Pagination: types.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

func (s *ServiceImpl) UpdateUserRole(ctx context.Context, userID uuid.UUID, role string) error {
	if !types.ValidRole(role) {
		return fmt.Errorf("role %q outside {admin, user}: %w", role, api.ErrValidation)
	}

	if err := s.repo.UpdateUserRole(ctx, userID, role); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "User role updated",
		slog.String("user_id", userID.String()),
		slog.String("role", role),
	)
	return nil
}

func (s *ServiceImpl) DeleteUser(ctx context.Context, callerID, userID uuid.UUID) error {
	if callerID == userID {
		return fmt.Errorf("self-deletion forbidden: %w", api.ErrValidation)
	}

	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "User deleted", slog.String("user_id", userID.String()))
	return nil
}
