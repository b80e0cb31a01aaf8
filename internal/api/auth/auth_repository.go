package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/resumatch/resumatch-backend/internal/api"
	"github.com/resumatch/resumatch-backend/internal/types"
)

const uniqueViolation = "23505"

var _ Repository = (*PostgresRepository)(nil)

// Repository is the credential store: user identity lookup and creation.
type Repository interface {
	// CreateUser inserts a new active user. Role defaults to "user".
	// Returns api.ErrConflict when the username is already taken.
	CreateUser(ctx context.Context, username, passwordHash string) (*types.User, error)

	// GetUserByUsername returns an active user for login.
	// Returns api.ErrNotFound when no such user exists.
	GetUserByUsername(ctx context.Context, username string) (*types.User, error)

	// GetUserByID returns a user regardless of active flag.
	GetUserByID(ctx context.Context, id uuid.UUID) (*types.User, error)
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

func (r *PostgresRepository) CreateUser(ctx context.Context, username, passwordHash string) (*types.User, error) {
	ctx, span := otel.Tracer("auth-repository").Start(ctx, "CreateUser")
	defer span.End()
	span.SetAttributes(attribute.String("db.operation", "INSERT"), attribute.String("db.sql.table", "users"))

	var user types.User
	err := r.pgpool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash)
         VALUES ($1, $2)
         RETURNING id, username, password_hash, role, is_active, created_at, updated_at`,
		username, passwordHash,
	).Scan(&user.ID, &user.Username, &user.Password, &user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			span.SetStatus(codes.Error, "duplicate username")
			return nil, fmt.Errorf("username %q taken: %w", username, api.ErrConflict)
		}
		span.SetStatus(codes.Error, "insert failed")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

func (r *PostgresRepository) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	ctx, span := otel.Tracer("auth-repository").Start(ctx, "GetUserByUsername")
	defer span.End()

	var user types.User
	err := r.pgpool.QueryRow(ctx,
		`SELECT id, username, password_hash, role, is_active, created_at, updated_at
         FROM users
         WHERE username = $1 AND is_active`,
		username,
	).Scan(&user.ID, &user.Username, &user.Password, &user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, api.ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to fetch user by username: %w", err)
	}

	return &user, nil
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*types.User, error) {
	ctx, span := otel.Tracer("auth-repository").Start(ctx, "GetUserByID")
	defer span.End()

	var user types.User
	err := r.pgpool.QueryRow(ctx,
		`SELECT id, username, password_hash, role, is_active, created_at, updated_at
         FROM users
         WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Username, &user.Password, &user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, api.ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to fetch user by id: %w", err)
	}

	return &user, nil
}
