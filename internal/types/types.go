package types

import (
	"time"

	"github.com/google/uuid"
)

// Role values form a closed set; anything else is rejected before it
// reaches storage.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// User is the core identity record. Password is the bcrypt hash and is
// never serialized.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UsageSummary is attached to the request context by the usage meter and
// echoed back on /api/me/usage and the analysis responses.
type UsageSummary struct {
	TotalRequests int64 `json:"totalRequests"`
	FreeLimit     int64 `json:"freeLimit"`
	OverFreeLimit bool  `json:"overFreeLimit"`
}

// EndpointStat aggregates request counts per (method, endpoint) across
// all users.
type EndpointStat struct {
	Method        string `json:"method"`
	Endpoint      string `json:"endpoint"`
	TotalRequests int64  `json:"totalRequests"`
}

// UserStat is one row of the per-user consumption report. Users with no
// recorded usage appear with TotalRequests == 0.
type UserStat struct {
	UserID        uuid.UUID `json:"userId"`
	Username      string    `json:"username"`
	Role          string    `json:"role"`
	TotalRequests int64     `json:"totalRequests"`
}

// Pagination describes one page of the admin user listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// UserPage is the paginated user listing response payload.
type UserPage struct {
	Users      []User     `json:"users"`
	Pagination Pagination `json:"pagination"`
}
