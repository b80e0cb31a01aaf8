package usage

import (
	"log/slog"
	"net/http"

	"github.com/resumatch/resumatch-backend/internal/api"
	"github.com/resumatch/resumatch-backend/internal/api/auth"
	"github.com/resumatch/resumatch-backend/internal/types"
)

type Handler struct {
	ledger Ledger
	meter  *Meter
	logger *slog.Logger
}

func NewHandler(ledger Ledger, meter *Meter, logger *slog.Logger) *Handler {
	return &Handler{
		ledger: ledger,
		meter:  meter,
		logger: logger,
	}
}

// UsageResponse wraps the caller's usage summary.
type UsageResponse struct {
	Success bool               `json:"success"`
	Usage   types.UsageSummary `json:"usage"`
}

// MyUsage godoc
// @Summary      Caller's API usage summary
// @Description  Returns total requests, the free-tier limit and whether the caller is over it.
// @Tags         usage
// @Produce      json
// @Success      200 {object} UsageResponse
// @Failure      401 {object} api.Response
// @Router       /api/me/usage [get]
func (h *Handler) MyUsage(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, api.CodeAuthRequired, "Authentication required")
		return
	}

	// This route sits outside the metered group, so the read never bumps
	// the caller's own counter.
	total, err := h.ledger.TotalForUser(r.Context(), claims.UserID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to fetch usage", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, api.CodeServerError, "Failed to fetch usage")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, UsageResponse{
		Success: true,
		Usage:   h.meter.Summarize(total),
	})
}
