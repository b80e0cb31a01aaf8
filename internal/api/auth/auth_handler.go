package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/resumatch/resumatch-backend/app/observability/metrics"
	"github.com/resumatch/resumatch-backend/internal/api"
)

type Handler struct {
	service Service
	tokens  *TokenService
	cookies *CookieBaker
	logger  *slog.Logger
}

func NewHandler(service Service, tokens *TokenService, cookies *CookieBaker, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		tokens:  tokens,
		cookies: cookies,
		logger:  logger,
	}
}

// SubmitUser godoc
// @Summary      Create a user account
// @Description  Creates a user with the default role and issues a session cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body SignupRequest true "credentials"
// @Success      200 {object} AuthResponse
// @Failure      400 {object} api.Response
// @Failure      409 {object} api.Response
// @Router       /submitUser [post]
func (h *Handler) SubmitUser(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, api.CodeValidation, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, api.CodeValidation, "Missing username or password")
		return
	}

	user, token, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, api.ErrConflict) {
			api.ErrorResponse(w, r, http.StatusConflict, api.CodeConflict, "Username already taken")
			return
		}
		h.logger.ErrorContext(r.Context(), "Signup failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, api.CodeServerError, "Server error during signup")
		return
	}

	if m := metrics.Get(); m != nil {
		m.SignupsTotal.Add(r.Context(), 1)
	}

	h.cookies.Set(w, token)
	api.WriteJSONResponse(w, r, http.StatusOK, AuthResponse{Success: true, Username: user.Username})
}

// LoggingIn godoc
// @Summary      Log in
// @Description  Verifies credentials and issues a session cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body LoginRequest true "credentials"
// @Success      200 {object} AuthResponse
// @Failure      400 {object} api.Response
// @Failure      401 {object} api.Response
// @Router       /loggingin [post]
func (h *Handler) LoggingIn(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, api.CodeValidation, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, api.CodeValidation, "Missing credentials")
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Username, req.Password)

	if m := metrics.Get(); m != nil {
		m.LoginAttemptsTotal.Add(r.Context(), 1,
			metric.WithAttributes(attribute.Bool("success", err == nil)))
	}

	if err != nil {
		switch {
		case errors.Is(err, api.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusUnauthorized, api.CodeAuthRequired, "User not found")
		case errors.Is(err, api.ErrUnauthenticated):
			api.ErrorResponse(w, r, http.StatusUnauthorized, api.CodeAuthRequired, "Invalid credentials")
		default:
			h.logger.ErrorContext(r.Context(), "Login failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, api.CodeServerError, "Server error during login")
		}
		return
	}

	h.cookies.Set(w, token)
	api.WriteJSONResponse(w, r, http.StatusOK, AuthResponse{Success: true, Message: "Logged in", Username: user.Username})
}

// Signout godoc
// @Summary      Sign out
// @Description  Revokes the current token and clears the session cookie.
// @Tags         auth
// @Produce      json
// @Success      200 {object} AuthResponse
// @Router       /signout [post]
func (h *Handler) Signout(w http.ResponseWriter, r *http.Request) {
	if claims, ok := ClaimsFromContext(r.Context()); ok {
		h.tokens.Revoke(claims)
	}
	h.cookies.Clear(w)
	api.WriteJSONResponse(w, r, http.StatusOK, AuthResponse{Success: true, Message: "Signed out"})
}

// Me godoc
// @Summary      Current identity
// @Description  Returns the identity decoded from the valid session token.
// @Tags         auth
// @Produce      json
// @Success      200 {object} MeResponse
// @Failure      401 {object} api.Response
// @Failure      403 {object} api.Response
// @Router       /me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, api.CodeAuthRequired, "Authentication required")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, MeResponse{
		Success: true,
		User: Identity{
			Username: claims.Username,
			UserID:   claims.UserID,
			Role:     claims.Role,
		},
	})
}
