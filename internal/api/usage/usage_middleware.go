package usage

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/resumatch/resumatch-backend/app/observability/metrics"
	"github.com/resumatch/resumatch-backend/internal/api/auth"
	"github.com/resumatch/resumatch-backend/internal/types"
)

type contextKey string

const summaryKey contextKey = "usageSummary"

// SummaryFromContext returns the usage summary the meter attached, if any.
func SummaryFromContext(ctx context.Context) (types.UsageSummary, bool) {
	summary, ok := ctx.Value(summaryKey).(types.UsageSummary)
	return summary, ok
}

// Meter counts every authenticated request against the usage ledger and
// attaches a summary to the context. Metering is strictly best-effort:
// a storage failure is logged and swallowed, never surfaced to the client.
type Meter struct {
	ledger    Ledger
	freeLimit int64
	logger    *slog.Logger
}

func NewMeter(ledger Ledger, freeLimit int64, logger *slog.Logger) *Meter {
	return &Meter{
		ledger:    ledger,
		freeLimit: freeLimit,
		logger:    logger,
	}
}

// FreeLimit exposes the configured free-tier threshold.
func (m *Meter) FreeLimit() int64 {
	return m.freeLimit
}

// Summarize builds the usage summary for a known total.
func (m *Meter) Summarize(total int64) types.UsageSummary {
	return types.UsageSummary{
		TotalRequests: total,
		FreeLimit:     m.freeLimit,
		OverFreeLimit: total > m.freeLimit,
	}
}

// Track is the metering middleware. Runs after auth.Authenticate; when no
// identity is present it is a no-op and the request proceeds.
func (m *Meter) Track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		summary := m.Summarize(0)

		err := m.ledger.Increment(ctx, claims.UserID, r.Method, r.URL.Path)
		if err == nil {
			var total int64
			total, err = m.ledger.TotalForUser(ctx, claims.UserID)
			if err == nil {
				summary = m.Summarize(total)
			}
		}

		if appm := metrics.Get(); appm != nil {
			if err != nil {
				appm.MeteringFailuresTotal.Add(ctx, 1)
			} else {
				appm.MeteredRequestsTotal.Add(ctx, 1,
					metric.WithAttributes(
						attribute.String("method", r.Method),
						attribute.String("endpoint", r.URL.Path),
					))
			}
		}

		if err != nil {
			// Availability over accuracy: undercounting is acceptable,
			// failing the request because of metering is not.
			m.logger.ErrorContext(ctx, "Usage metering failed",
				slog.String("user_id", claims.UserID.String()),
				slog.String("method", r.Method),
				slog.String("endpoint", r.URL.Path),
				slog.Any("error", err),
			)
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, summaryKey, summary)))
	})
}
