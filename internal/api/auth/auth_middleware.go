package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/resumatch/resumatch-backend/internal/api"
	"github.com/resumatch/resumatch-backend/internal/types"
)

type contextKey string

const claimsKey contextKey = "authClaims"

// ClaimsFromContext returns the identity bound by Authenticate.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// ContextWithClaims is used by tests and the meter to seed an identity.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Authenticate validates the cookie-borne session token and binds the
// decoded claims to the request context.
//
// The status split is intentional and matches the existing frontend:
// missing cookie means 401 (no credential), a present but invalid or
// expired token means 403.
func Authenticate(logger *slog.Logger, tokens *TokenService, cookieName string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := logger.With(slog.String("middleware", "Authenticate"))

			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				api.ErrorResponse(w, r, http.StatusUnauthorized, api.CodeAuthRequired, "Authentication required")
				return
			}

			claims, err := tokens.Verify(cookie.Value)
			if err != nil {
				l.WarnContext(r.Context(), "Token verification failed")
				api.ErrorResponse(w, r, http.StatusForbidden, api.CodeInvalidToken, "Invalid or expired token")
				return
			}

			ctx := ContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin passes only identities carrying the admin role. Runs after
// Authenticate.
func RequireAdmin(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || claims.Role != types.RoleAdmin {
				logger.WarnContext(r.Context(), "Admin route denied",
					slog.Bool("authenticated", ok),
				)
				api.ErrorResponse(w, r, http.StatusForbidden, api.CodeNotAuthorized, "Not Authorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
