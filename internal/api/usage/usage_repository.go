package usage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/resumatch/resumatch-backend/app/observability/metrics"
)

func countQueryError(ctx context.Context) {
	if m := metrics.Get(); m != nil {
		m.DbQueryErrorsTotal.Add(ctx, 1)
	}
}

var _ Ledger = (*PostgresLedger)(nil)

// DB is the slice of pgxpool.Pool the ledger needs; satisfied by both the
// real pool and pgxmock.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Ledger persists per-user and per-(user,endpoint) request counters.
type Ledger interface {
	// Increment bumps both the per-endpoint counter and the per-user
	// total for one request. Both upserts run inside a single
	// transaction so a crash cannot leave them out of step.
	Increment(ctx context.Context, userID uuid.UUID, method, endpoint string) error

	// TotalForUser reads the denormalized per-user total; 0 when the
	// user has never made a metered request.
	TotalForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type PostgresLedger struct {
	logger *slog.Logger
	pgpool DB
}

func NewPostgresLedger(pgpool DB, logger *slog.Logger) *PostgresLedger {
	return &PostgresLedger{
		logger: logger,
		pgpool: pgpool,
	}
}

func (l *PostgresLedger) Increment(ctx context.Context, userID uuid.UUID, method, endpoint string) error {
	ctx, span := otel.Tracer("usage-ledger").Start(ctx, "Increment")
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", endpoint),
	)

	tx, err := l.pgpool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to begin usage tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO api_usage (user_id, method, endpoint)
         VALUES ($1, $2, $3)
         ON CONFLICT (user_id, method, endpoint)
         DO UPDATE SET request_count = api_usage.request_count + 1,
                       last_called_at = now()`,
		userID, method, endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "endpoint counter upsert failed")
		countQueryError(ctx)
		return fmt.Errorf("failed to upsert endpoint counter: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO api_usage_totals (user_id)
         VALUES ($1)
         ON CONFLICT (user_id)
         DO UPDATE SET total_requests = api_usage_totals.total_requests + 1,
                       last_called_at = now()`,
		userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "total counter upsert failed")
		countQueryError(ctx)
		return fmt.Errorf("failed to upsert total counter: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to commit usage tx: %w", err)
	}
	return nil
}

func (l *PostgresLedger) TotalForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	ctx, span := otel.Tracer("usage-ledger").Start(ctx, "TotalForUser")
	defer span.End()

	var total int64
	err := l.pgpool.QueryRow(ctx,
		`SELECT total_requests FROM api_usage_totals WHERE user_id = $1`,
		userID).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "total query failed")
		countQueryError(ctx)
		return 0, fmt.Errorf("failed to read usage total: %w", err)
	}
	return total, nil
}
