package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload embedded in the session token. Short claim names
// keep the cookie small.
type Claims struct {
	UserID   uuid.UUID `json:"uid"`
	Username string    `json:"usr"`
	Role     string    `json:"rol"`
	jwt.RegisteredClaims
}

// SignupRequest represents the expected JSON body for user signup.
type SignupRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"Str0ngP@ss!"`
}

// LoginRequest represents the expected JSON body for user login.
type LoginRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"Str0ngP@ss!"`
}

// AuthResponse is the body returned by signup, login and signout.
type AuthResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Identity is the decoded token payload returned by GET /me.
type Identity struct {
	Username string    `json:"username"`
	UserID   uuid.UUID `json:"user_id"`
	Role     string    `json:"user_type"`
}

// MeResponse wraps the identity for GET /me.
type MeResponse struct {
	Success bool     `json:"success"`
	User    Identity `json:"user"`
}
