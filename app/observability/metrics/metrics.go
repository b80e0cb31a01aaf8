package metrics

import (
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	LoginAttemptsTotal    metric.Int64Counter
	SignupsTotal          metric.Int64Counter
	MeteredRequestsTotal  metric.Int64Counter
	MeteringFailuresTotal metric.Int64Counter
	UpstreamLatencySecs   metric.Float64Histogram
	DbQueryErrorsTotal    metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
	initErr    error
)

// InitAppMetrics wires the OTel meter provider to the Prometheus exporter
// (scraped via promhttp on /metrics) and creates the instruments. Safe to
// call more than once; only the first call does work.
func InitAppMetrics() (*AppMetrics, error) {
	once.Do(func() {
		exporter, err := otelprom.New()
		if err != nil {
			initErr = fmt.Errorf("failed to create prometheus exporter: %w", err)
			return
		}
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
		otel.SetMeterProvider(provider)

		meter := provider.Meter("resumatch-backend")
		m := &AppMetrics{}

		m.LoginAttemptsTotal, err = meter.Int64Counter(
			"login_attempts_total",
			metric.WithDescription("Total number of login attempts"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			initErr = err
			return
		}

		m.SignupsTotal, err = meter.Int64Counter(
			"signups_total",
			metric.WithDescription("Total number of completed signups"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			initErr = err
			return
		}

		m.MeteredRequestsTotal, err = meter.Int64Counter(
			"metered_requests_total",
			metric.WithDescription("Total number of requests counted by the usage meter"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			initErr = err
			return
		}

		m.MeteringFailuresTotal, err = meter.Int64Counter(
			"metering_failures_total",
			metric.WithDescription("Usage meter storage failures (swallowed, request continues)"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			initErr = err
			return
		}

		m.UpstreamLatencySecs, err = meter.Float64Histogram(
			"upstream_request_duration_seconds",
			metric.WithDescription("Latency of calls to the analyzer/suggestions services"),
			metric.WithUnit("s"),
		)
		if err != nil {
			initErr = err
			return
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			initErr = err
			return
		}

		appMetrics = m
	})
	return appMetrics, initErr
}

// Get returns the globally initialized AppMetrics instance, or nil when
// InitAppMetrics has not run. Callers treat nil as "metrics disabled".
func Get() *AppMetrics {
	return appMetrics
}
