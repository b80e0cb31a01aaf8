package api

import "errors"

// Sentinel errors shared across services; handlers translate them to the
// wire-level taxonomy (400/401/403/404/409).
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrValidation      = errors.New("invalid input")
)

// Response is the generic success/error envelope used in swagger docs.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Stable error codes carried in every error body alongside the message.
const (
	CodeValidation       = "validation_error"
	CodeAuthRequired     = "authentication_required"
	CodeInvalidToken     = "invalid_token"
	CodeNotAuthorized    = "not_authorized"
	CodeNotFound         = "not_found"
	CodeConflict         = "conflict"
	CodeServerError      = "server_error"
	CodeUpstreamTimeout  = "upstream_timeout"
	CodeUpstreamFailure  = "upstream_failure"
	CodeUpstreamNotConfd = "upstream_misconfigured"
)
