package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/resumatch/resumatch-backend/internal/api"
	"github.com/resumatch/resumatch-backend/internal/types"
)

var _ Repository = (*PostgresRepository)(nil)

// Repository is the read/mutate surface behind the admin dashboard.
type Repository interface {
	// EndpointStats aggregates request counts per (method, endpoint)
	// across all users, descending by total.
	EndpointStats(ctx context.Context) ([]types.EndpointStat, error)

	// UserStats lists every user with their total request count; users
	// with no usage rows appear with a zero total.
	UserStats(ctx context.Context) ([]types.UserStat, error)

	// ListUsers returns one page of users ordered by creation time plus
	// the total user count.
	ListUsers(ctx context.Context, offset, limit int) ([]types.User, int64, error)

	// UpdateUserRole sets the role; api.ErrNotFound when the id is unknown.
	UpdateUserRole(ctx context.Context, userID uuid.UUID, role string) error

	// DeleteUser hard-deletes the user; usage counters cascade.
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

type PostgresRepository struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresRepository(pgpool *pgxpool.Pool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresRepository) EndpointStats(ctx context.Context) ([]types.EndpointStat, error) {
	ctx, span := otel.Tracer("admin-repository").Start(ctx, "EndpointStats")
	defer span.End()

	rows, err := r.pgpool.Query(ctx,
		`SELECT method, endpoint, SUM(request_count) AS total
         FROM api_usage
         GROUP BY method, endpoint
         ORDER BY total DESC`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "endpoint stats query failed")
		return nil, fmt.Errorf("failed to query endpoint stats: %w", err)
	}
	defer rows.Close()

	stats := make([]types.EndpointStat, 0)
	for rows.Next() {
		var s types.EndpointStat
		if err := rows.Scan(&s.Method, &s.Endpoint, &s.TotalRequests); err != nil {
			return nil, fmt.Errorf("failed to scan endpoint stat: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("endpoint stats rows: %w", err)
	}
	return stats, nil
}

func (r *PostgresRepository) UserStats(ctx context.Context) ([]types.UserStat, error) {
	ctx, span := otel.Tracer("admin-repository").Start(ctx, "UserStats")
	defer span.End()

	rows, err := r.pgpool.Query(ctx,
		`SELECT u.id, u.username, u.role, COALESCE(t.total_requests, 0) AS total
         FROM users u
         LEFT JOIN api_usage_totals t ON t.user_id = u.id
         ORDER BY total DESC, u.username`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "user stats query failed")
		return nil, fmt.Errorf("failed to query user stats: %w", err)
	}
	defer rows.Close()

	stats := make([]types.UserStat, 0)
	for rows.Next() {
		var s types.UserStat
		if err := rows.Scan(&s.UserID, &s.Username, &s.Role, &s.TotalRequests); err != nil {
			return nil, fmt.Errorf("failed to scan user stat: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("user stats rows: %w", err)
	}
	return stats, nil
}

func (r *PostgresRepository) ListUsers(ctx context.Context, offset, limit int) ([]types.User, int64, error) {
	ctx, span := otel.Tracer("admin-repository").Start(ctx, "ListUsers")
	defer span.End()

	var total int64
	if err := r.pgpool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	rows, err := r.pgpool.Query(ctx,
		`SELECT id, username, role, is_active, created_at, updated_at
         FROM users
         ORDER BY created_at, id
         OFFSET $1 LIMIT $2`,
		offset, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "user listing query failed")
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]types.User, 0, limit)
	for rows.Next() {
		var u types.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("user listing rows: %w", err)
	}
	return users, total, nil
}

func (r *PostgresRepository) UpdateUserRole(ctx context.Context, userID uuid.UUID, role string) error {
	ctx, span := otel.Tracer("admin-repository").Start(ctx, "UpdateUserRole")
	defer span.End()

	tag, err := r.pgpool.Exec(ctx,
		`UPDATE users SET role = $1, updated_at = now() WHERE id = $2`,
		role, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "role update failed")
		return fmt.Errorf("failed to update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return api.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	ctx, span := otel.Tracer("admin-repository").Start(ctx, "DeleteUser")
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "user delete failed")
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return api.ErrNotFound
	}
	return nil
}
