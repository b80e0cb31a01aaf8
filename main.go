package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	database "github.com/resumatch/resumatch-backend/app/db"
	appLogger "github.com/resumatch/resumatch-backend/app/logger"
	"github.com/resumatch/resumatch-backend/app/observability/metrics"
	"github.com/resumatch/resumatch-backend/app/tracer"
	"github.com/resumatch/resumatch-backend/config"
	"github.com/resumatch/resumatch-backend/internal/api/admin"
	"github.com/resumatch/resumatch-backend/internal/api/analysis"
	"github.com/resumatch/resumatch-backend/internal/api/auth"
	"github.com/resumatch/resumatch-backend/internal/api/usage"
	"github.com/resumatch/resumatch-backend/internal/router"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails.
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger(&cfg)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Run migrations before opening the main pool.
	if err := database.RunMigrations(cfg.ConnectionURL(), logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := database.Init(cfg.ConnectionURL(), logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	if _, err := metrics.InitAppMetrics(); err != nil {
		// Metrics are not worth refusing to boot over.
		logger.Warn("Failed to initialize metrics, continuing without", slog.Any("error", err))
	}

	shutdownTracer, err := tracer.InitTracerProvider("resumatch-backend")
	if err != nil {
		logger.Warn("Failed to initialize tracer provider", slog.Any("error", err))
	} else {
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				logger.Warn("Tracer shutdown failed", slog.Any("error", err))
			}
		}()
	}

	// --- Dependency Injection ---
	tokens, err := auth.NewTokenService(cfg.JWT, logger)
	if err != nil {
		logger.Error("Failed to initialize token service", slog.Any("error", err))
		os.Exit(1)
	}
	cookies := auth.NewCookieBaker(cfg.JWT.CookieName, cfg.JWT.TokenTTL, cfg.IsProduction())

	authRepo := auth.NewPostgresRepository(pool, logger)
	authService := auth.NewService(authRepo, tokens, logger)
	authHandler := auth.NewHandler(authService, tokens, cookies, logger)

	ledger := usage.NewPostgresLedger(pool, logger)
	meter := usage.NewMeter(ledger, cfg.Usage.FreeLimit, logger)
	usageHandler := usage.NewHandler(ledger, meter, logger)

	adminRepo := admin.NewPostgresRepository(pool, logger)
	adminService := admin.NewService(adminRepo, logger)
	adminHandler := admin.NewHandler(adminService, logger)

	analysisClient := analysis.NewClient(cfg.Upstream, logger)
	analysisHandler := analysis.NewHandler(analysisClient, logger)

	apiRouter := router.SetupRouter(&router.Config{
		AppConfig:       &cfg,
		AuthHandler:     authHandler,
		UsageHandler:    usageHandler,
		AdminHandler:    adminHandler,
		AnalysisHandler: analysisHandler,
		Authenticate:    auth.Authenticate(logger, tokens, cfg.JWT.CookieName),
		RequireAdmin:    auth.RequireAdmin(logger),
		TrackUsage:      meter.Track,
	})

	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(appLogger.StructuredLogger(logger))
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(middleware.Timeout(cfg.Server.Timeout))
	mux.Use(middleware.Compress(5, "application/json"))
	mux.Mount("/", apiRouter)

	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()

	logger.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	logger.Info("Application shut down complete.")
}

// setupLogger returns tinted logs in development and JSON in production.
func setupLogger(cfg *config.Config) *slog.Logger {
	var logger *slog.Logger
	if cfg.IsProduction() {
		jsonOpts := &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	} else {
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	}
	return logger
}
