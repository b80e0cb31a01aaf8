package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/resumatch/resumatch-backend/app/observability/metrics"
	"github.com/resumatch/resumatch-backend/config"
)

// Upstream failure classes; the handler maps them to 504 / 502 / 500.
var (
	ErrTimeout       = errors.New("upstream service timed out")
	ErrUnavailable   = errors.New("upstream service call failed")
	ErrNotConfigured = errors.New("upstream service URL not configured")
)

// Client proxies resume/job content to the external analyzer and
// suggestions services. Responses are opaque bytes here; Normalize turns
// them into the canonical shape.
type Client struct {
	httpClient *http.Client
	cfg        config.UpstreamConfig
	logger     *slog.Logger
}

func NewClient(cfg config.UpstreamConfig, logger *slog.Logger) *Client {
	return &Client{
		// The per-call context carries the timeout; the client-level
		// timeout is a backstop against leaked requests.
		httpClient: &http.Client{Timeout: cfg.Timeout + 5*time.Second},
		cfg:        cfg,
		logger:     logger,
	}
}

// AnalyzerPayload is the wire format both upstreams agreed on.
type AnalyzerPayload struct {
	ResumeText string `json:"resume_text"`
	JobText    string `json:"job_text"`
}

// Style controls the suggestions generator output.
type Style struct {
	Bullets  int    `json:"bullets"`
	MaxWords int    `json:"max_words"`
	Tone     string `json:"tone"`
}

// DefaultStyle matches what the frontend sends when the user picks nothing.
func DefaultStyle() Style {
	return Style{Bullets: 7, MaxWords: 1000, Tone: "professional"}
}

type suggestPayload struct {
	Analysis json.RawMessage `json:"analysis"`
	Style    Style           `json:"style"`
	RoleHint string          `json:"role_hint"`
}

// Analyze forwards the resume and job text to the analyzer service.
func (c *Client) Analyze(ctx context.Context, resumeText, jobText string) ([]byte, error) {
	if c.cfg.AnalyzerURL == "" {
		return nil, fmt.Errorf("analyzer: %w", ErrNotConfigured)
	}
	return c.post(ctx, "analyzer", c.cfg.AnalyzerURL, AnalyzerPayload{
		ResumeText: resumeText,
		JobText:    jobText,
	})
}

// Suggest forwards an analysis to the suggestions service.
func (c *Client) Suggest(ctx context.Context, analysis json.RawMessage, style Style, roleHint string) ([]byte, error) {
	if c.cfg.SuggestionsURL == "" {
		return nil, fmt.Errorf("suggestions: %w", ErrNotConfigured)
	}
	return c.post(ctx, "suggestions", c.cfg.SuggestionsURL, suggestPayload{
		Analysis: analysis,
		Style:    style,
		RoleHint: roleHint,
	})
}

func (c *Client) post(ctx context.Context, name, url string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to marshal payload: %w", name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)

	if m := metrics.Get(); m != nil {
		m.UpstreamLatencySecs.Record(ctx, elapsed.Seconds(),
			metric.WithAttributes(
				attribute.String("upstream", name),
				attribute.Bool("error", err != nil),
			))
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			c.logger.WarnContext(ctx, "Upstream call timed out",
				slog.String("upstream", name),
				slog.Duration("elapsed", elapsed),
			)
			return nil, fmt.Errorf("%s: %w", name, ErrTimeout)
		}
		c.logger.ErrorContext(ctx, "Upstream call failed",
			slog.String("upstream", name),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("%s: %w", name, ErrUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", name, ErrUnavailable)
	}
	return raw, nil
}
