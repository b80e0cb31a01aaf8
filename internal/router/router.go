package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/resumatch/resumatch-backend/config"
	_ "github.com/resumatch/resumatch-backend/docs"
	"github.com/resumatch/resumatch-backend/internal/api/admin"
	"github.com/resumatch/resumatch-backend/internal/api/analysis"
	"github.com/resumatch/resumatch-backend/internal/api/auth"
	"github.com/resumatch/resumatch-backend/internal/api/usage"
)

// Config contains everything the router needs wired in from main.
type Config struct {
	AppConfig       *config.Config
	AuthHandler     *auth.Handler
	UsageHandler    *usage.Handler
	AdminHandler    *admin.Handler
	AnalysisHandler *analysis.Handler

	Authenticate func(http.Handler) http.Handler
	RequireAdmin func(http.Handler) http.Handler
	TrackUsage   func(http.Handler) http.Handler
}

// SetupRouter wires the full HTTP surface. Server-wide middleware
// (request ID, logging, recoverer) is applied in main before mounting.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AppConfig.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Credential endpoints are public but rate limited.
	r.Group(func(r chi.Router) {
		rl := cfg.AppConfig.RateLimit
		if rl.Requests > 0 && rl.Window > 0 {
			r.Use(httprate.LimitByIP(rl.Requests, rl.Window))
		}
		r.Post("/submitUser", cfg.AuthHandler.SubmitUser)
		r.Post("/loggingin", cfg.AuthHandler.LoggingIn)
	})

	// Session-cookie routes outside the metered /api surface.
	r.Group(func(r chi.Router) {
		r.Use(cfg.Authenticate)
		r.Post("/signout", cfg.AuthHandler.Signout)
		r.Get("/me", cfg.AuthHandler.Me)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cfg.Authenticate)

		// The usage summary read is deliberately not metered, so a
		// brand-new user sees totalRequests == 0.
		r.Get("/me/usage", cfg.UsageHandler.MyUsage)

		r.Group(func(r chi.Router) {
			r.Use(cfg.TrackUsage)

			r.Post("/analyze", cfg.AnalysisHandler.Analyze)
			r.Post("/suggestions/suggest", cfg.AnalysisHandler.Suggest)

			r.Route("/admin", func(r chi.Router) {
				r.Use(cfg.RequireAdmin)
				r.Get("/endpoint-stats", cfg.AdminHandler.EndpointStats)
				r.Get("/user-stats", cfg.AdminHandler.UserStats)
				r.Get("/users", cfg.AdminHandler.ListUsers)
				r.Put("/users/{id}/role", cfg.AdminHandler.UpdateUserRole)
				r.Delete("/users/{id}", cfg.AdminHandler.DeleteUser)
			})
		})
	})

	return r
}
