package usage

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMyUsage_ReturnsLedgerTotal(t *testing.T) {
	ledger := newFakeLedger()
	userID := uuid.New()
	ledger.totals[userID] = 7

	meter := testMeter(ledger, 20)
	h := NewHandler(ledger, meter, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := httptest.NewRecorder()
	h.MyUsage(rec, authedRequest(userID, http.MethodGet, "/api/me/usage"))

	require.Equal(t, http.StatusOK, rec.Code)

	var body UsageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, int64(7), body.Usage.TotalRequests)
	assert.Equal(t, int64(20), body.Usage.FreeLimit)
	assert.False(t, body.Usage.OverFreeLimit)
}

func TestMyUsage_BrandNewUserSeesZero(t *testing.T) {
	ledger := newFakeLedger()
	meter := testMeter(ledger, 20)
	h := NewHandler(ledger, meter, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := httptest.NewRecorder()
	h.MyUsage(rec, authedRequest(uuid.New(), http.MethodGet, "/api/me/usage"))

	require.Equal(t, http.StatusOK, rec.Code)

	var body UsageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Zero(t, body.Usage.TotalRequests)
	assert.False(t, body.Usage.OverFreeLimit)
}

func TestMyUsage_WithoutIdentity(t *testing.T) {
	ledger := newFakeLedger()
	h := NewHandler(ledger, testMeter(ledger, 20), slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := httptest.NewRecorder()
	h.MyUsage(rec, httptest.NewRequest(http.MethodGet, "/api/me/usage", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
