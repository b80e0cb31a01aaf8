package analysis

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/resumatch/resumatch-backend/internal/api"
	"github.com/resumatch/resumatch-backend/internal/api/usage"
	"github.com/resumatch/resumatch-backend/internal/types"
)

type Handler struct {
	client *Client
	logger *slog.Logger
}

func NewHandler(client *Client, logger *slog.Logger) *Handler {
	return &Handler{
		client: client,
		logger: logger,
	}
}

// AnalyzeRequest accepts both current and legacy field names for pasted
// resume and job text.
type AnalyzeRequest struct {
	ResumeText string `json:"resume_text"`
	Resume     string `json:"resume"`
	JobText    string `json:"job_text"`
	Job        string `json:"job"`
}

func (r *AnalyzeRequest) resume() string {
	if r.ResumeText != "" {
		return r.ResumeText
	}
	return r.Resume
}

func (r *AnalyzeRequest) job() string {
	if r.JobText != "" {
		return r.JobText
	}
	return r.Job
}

// AnalyzeResponse carries the normalized analysis plus the caller's
// usage summary.
type AnalyzeResponse struct {
	Success  bool               `json:"success"`
	Usage    types.UsageSummary `json:"usage"`
	Analysis Result             `json:"analysis"`
}

// SuggestRequest either carries a previous analysis verbatim or the raw
// texts to run the analyzer first.
type SuggestRequest struct {
	Analysis   json.RawMessage `json:"analysis,omitempty"`
	ResumeText string          `json:"resume_text"`
	Resume     string          `json:"resume"`
	JobText    string          `json:"job_text"`
	Job        string          `json:"job"`
	Style      *Style          `json:"style,omitempty"`
	RoleHint   string          `json:"role_hint"`
}

// SuggestResponse carries the normalized suggestions.
type SuggestResponse struct {
	Success     bool   `json:"success"`
	Suggestions Result `json:"suggestions"`
}

// asJSON passes valid JSON through untouched and quotes anything else as
// a JSON string, so a plain-text analyzer reply still embeds cleanly in
// the suggestions payload.
func asJSON(raw []byte) json.RawMessage {
	if json.Valid(raw) {
		return raw
	}
	quoted, err := json.Marshal(string(raw))
	if err != nil {
		return json.RawMessage(`""`)
	}
	return quoted
}

func (h *Handler) upstreamError(w http.ResponseWriter, r *http.Request, name string, err error) {
	switch {
	case errors.Is(err, ErrNotConfigured):
		api.ErrorResponse(w, r, http.StatusInternalServerError, api.CodeUpstreamNotConfd, name+" URL not configured on server")
	case errors.Is(err, ErrTimeout):
		api.ErrorResponse(w, r, http.StatusGatewayTimeout, api.CodeUpstreamTimeout, name+" service timed out")
	default:
		api.ErrorResponse(w, r, http.StatusBadGateway, api.CodeUpstreamFailure, "Failed to call "+name+" service")
	}
}

// Analyze godoc
// @Summary      Analyze a resume against a job description
// @Description  Forwards pasted resume and job text to the analyzer service and returns the normalized analysis with the caller's usage summary.
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        body body AnalyzeRequest true "resume and job text"
// @Success      200 {object} AnalyzeResponse
// @Failure      400 {object} api.Response
// @Failure      502 {object} api.Response
// @Failure      504 {object} api.Response
// @Router       /api/analyze [post]
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, api.CodeValidation, err.Error())
		return
	}
	if req.resume() == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, api.CodeValidation, "No resume provided (pasted text required)")
		return
	}

	raw, err := h.client.Analyze(r.Context(), req.resume(), req.job())
	if err != nil {
		h.upstreamError(w, r, "analyzer", err)
		return
	}

	summary, _ := usage.SummaryFromContext(r.Context())
	api.WriteJSONResponse(w, r, http.StatusOK, AnalyzeResponse{
		Success:  true,
		Usage:    summary,
		Analysis: Normalize(raw),
	})
}

// Suggest godoc
// @Summary      Generate resume suggestions
// @Description  Accepts an analysis object, or resume and job text to analyze first, and returns normalized suggestions.
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        body body SuggestRequest true "analysis or raw texts"
// @Success      200 {object} SuggestResponse
// @Failure      400 {object} api.Response
// @Failure      502 {object} api.Response
// @Failure      504 {object} api.Response
// @Router       /api/suggestions/suggest [post]
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, api.CodeValidation, err.Error())
		return
	}

	analysis := req.Analysis
	if len(analysis) == 0 {
		resume := req.ResumeText
		if resume == "" {
			resume = req.Resume
		}
		job := req.JobText
		if job == "" {
			job = req.Job
		}
		if resume == "" {
			api.ErrorResponse(w, r, http.StatusBadRequest, api.CodeValidation, "No analysis or resume text provided")
			return
		}

		raw, err := h.client.Analyze(r.Context(), resume, job)
		if err != nil {
			h.upstreamError(w, r, "analyzer", err)
			return
		}
		analysis = asJSON(raw)
	}

	style := DefaultStyle()
	if req.Style != nil {
		style = *req.Style
	}

	raw, err := h.client.Suggest(r.Context(), analysis, style, req.RoleHint)
	if err != nil {
		h.upstreamError(w, r, "suggestions", err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, SuggestResponse{
		Success:     true,
		Suggestions: Normalize(raw),
	})
}
