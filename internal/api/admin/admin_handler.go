package admin

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/resumatch/resumatch-backend/internal/api"
	"github.com/resumatch/resumatch-backend/internal/api/auth"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// StatsResponse wraps either stats listing.
type StatsResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// RoleUpdateRequest is the body of PUT /api/admin/users/{id}/role.
type RoleUpdateRequest struct {
	Role string `json:"role" example:"admin"`
}

// EndpointStats godoc
// @Summary      Aggregated endpoint usage
// @Tags         admin
// @Produce      json
// @Success      200 {object} StatsResponse
// @Failure      403 {object} api.Response
// @Router       /api/admin/endpoint-stats [get]
func (h *Handler) EndpointStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.EndpointStats(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to fetch endpoint stats", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, api.CodeServerError, "Failed to fetch endpoint stats")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, StatsResponse{Success: true, Data: stats})
}

// UserStats godoc
// @Summary      Per-user usage totals
// @Tags         admin
// @Produce      json
// @Success      200 {object} StatsResponse
// @Failure      403 {object} api.Response
// @Router       /api/admin/user-stats [get]
func (h *Handler) UserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.UserStats(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to fetch user stats", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, api.CodeServerError, "Failed to fetch user stats")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, StatsResponse{Success: true, Data: stats})
}

// ListUsers godoc
// @Summary      Paginated user listing
// @Tags         admin
// @Produce      json
// @Param        page  query int false "page (default 1)"
// @Param        limit query int false "page size (default 10, max 100)"
// @Success      200 {object} types.UserPage
// @Failure      403 {object} api.Response
// @Router       /api/admin/users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	// Non-numeric values fall back to the defaults, matching the
	// tolerant behavior of the frontend's query building.
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	pageData, err := h.service.ListUsers(r.Context(), page, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list users", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, api.CodeServerError, "Failed to list users")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, pageData)
}

// UpdateUserRole godoc
// @Summary      Change a user's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id   path string true "user id"
// @Param        body body RoleUpdateRequest true "new role"
// @Success      200 {object} api.Response
// @Failure      400 {object} api.Response
// @Failure      404 {object} api.Response
// @Router       /api/admin/users/{id}/role [put]
func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, api.CodeValidation, "Invalid user id")
		return
	}

	var req RoleUpdateRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, api.CodeValidation, err.Error())
		return
	}

	err = h.service.UpdateUserRole(r.Context(), userID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, api.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, api.CodeValidation, "Role must be one of: admin, user")
		case errors.Is(err, api.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, api.CodeNotFound, "User not found")
		default:
			h.logger.ErrorContext(r.Context(), "Failed to update role", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, api.CodeServerError, "Failed to update role")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{Success: true, Message: "Role updated"})
}

// DeleteUser godoc
// @Summary      Delete a user
// @Description  Self-deletion is forbidden; usage counters cascade with the user.
// @Tags         admin
// @Produce      json
// @Param        id path string true "user id"
// @Success      200 {object} api.Response
// @Failure      400 {object} api.Response
// @Failure      404 {object} api.Response
// @Router       /api/admin/users/{id} [delete]
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, api.CodeValidation, "Invalid user id")
		return
	}

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, api.CodeAuthRequired, "Authentication required")
		return
	}

	err = h.service.DeleteUser(r.Context(), claims.UserID, userID)
	if err != nil {
		switch {
		case errors.Is(err, api.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, api.CodeValidation, "Cannot delete your own account")
		case errors.Is(err, api.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, api.CodeNotFound, "User not found")
		default:
			h.logger.ErrorContext(r.Context(), "Failed to delete user", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, api.CodeServerError, "Failed to delete user")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{Success: true, Message: "User deleted"})
}
