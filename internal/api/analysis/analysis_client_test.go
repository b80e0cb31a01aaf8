package analysis

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumatch/resumatch-backend/config"
)

func testClient(cfg config.UpstreamConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Second
	}
	return NewClient(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAnalyze_ForwardsPayload(t *testing.T) {
	var received AnalyzerPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte(`{"score": 0.9}`))
	}))
	defer server.Close()

	client := testClient(config.UpstreamConfig{AnalyzerURL: server.URL})

	raw, err := client.Analyze(context.Background(), "my resume", "the job")
	require.NoError(t, err)
	assert.JSONEq(t, `{"score": 0.9}`, string(raw))
	assert.Equal(t, "my resume", received.ResumeText)
	assert.Equal(t, "the job", received.JobText)
}

func TestAnalyze_NotConfigured(t *testing.T) {
	client := testClient(config.UpstreamConfig{})

	_, err := client.Analyze(context.Background(), "resume", "job")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestAnalyze_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	client := testClient(config.UpstreamConfig{
		AnalyzerURL: server.URL,
		Timeout:     50 * time.Millisecond,
	})

	_, err := client.Analyze(context.Background(), "resume", "job")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestAnalyze_ConnectionRefused(t *testing.T) {
	// Grab a port that nothing listens on.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := testClient(config.UpstreamConfig{AnalyzerURL: url})

	_, err := client.Analyze(context.Background(), "resume", "job")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSuggest_ForwardsAnalysisAndStyle(t *testing.T) {
	var received struct {
		Analysis map[string]interface{} `json:"analysis"`
		Style    Style                  `json:"style"`
		RoleHint string                 `json:"role_hint"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte(`["## Tips", "Quantify results"]`))
	}))
	defer server.Close()

	client := testClient(config.UpstreamConfig{SuggestionsURL: server.URL})

	raw, err := client.Suggest(context.Background(),
		json.RawMessage(`{"score": 0.5}`), DefaultStyle(), "backend engineer")
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.Equal(t, 0.5, received.Analysis["score"])
	assert.Equal(t, 7, received.Style.Bullets)
	assert.Equal(t, "backend engineer", received.RoleHint)
}

func TestSuggest_NotConfigured(t *testing.T) {
	client := testClient(config.UpstreamConfig{})

	_, err := client.Suggest(context.Background(), json.RawMessage(`{}`), DefaultStyle(), "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
