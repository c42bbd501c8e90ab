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
	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/google"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	database "github.com/assinadoc/assinadoc-api/app/db"
	appLogger "github.com/assinadoc/assinadoc-api/app/logger"
	"github.com/assinadoc/assinadoc-api/app/tracer"
	"github.com/assinadoc/assinadoc-api/config"
	_ "github.com/assinadoc/assinadoc-api/docs"
	"github.com/assinadoc/assinadoc-api/internal/api/auth"
	"github.com/assinadoc/assinadoc-api/internal/api/contract"
	"github.com/assinadoc/assinadoc-api/internal/api/entitlement"
	"github.com/assinadoc/assinadoc-api/internal/api/plan"
	"github.com/assinadoc/assinadoc-api/internal/api/provision"
	"github.com/assinadoc/assinadoc-api/internal/api/user"
	"github.com/assinadoc/assinadoc-api/internal/router"
)

// @title                      AssinaDoc API
// @version                    1.0
// @description                Subscription, trial entitlement and contract workflow backend.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	// Use standard log until slog is configured, in case godotenv fails.
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := tracer.InitTracingAndMetrics("assinadoc-api"); err != nil {
		logger.Error("Failed to initialize tracing and metrics", slog.Any("error", err))
		os.Exit(1)
	}

	// --- Database Setup ---
	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}

	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	// --- OAuth Providers ---
	if clientID := os.Getenv("GOOGLE_CLIENT_ID"); clientID != "" {
		goth.UseProviders(google.New(
			clientID,
			os.Getenv("GOOGLE_CLIENT_SECRET"),
			os.Getenv("GOOGLE_CALLBACK_URL"),
			"email", "profile",
		))
	}

	// --- Dependency Injection ---
	planRepo := plan.NewPostgresPlanRepo(pool, logger)
	planService := plan.NewPlanService(planRepo, logger)
	planHandler := plan.NewHandlerImpl(planService, logger)

	provisionRepo := provision.NewPostgresProvisionRepo(pool)
	provisioner := provision.NewService(provisionRepo, planService, &cfg, logger)

	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	authService := auth.NewAuthService(authRepo, provisioner, &cfg, logger)
	authHandler := auth.NewAuthHandler(authService, logger)

	entitlementRepo := entitlement.NewPostgresEntitlementRepo(pool)
	entitlementService := entitlement.NewEntitlementService(entitlementRepo, &cfg, logger)

	contractRepo := contract.NewPostgresContractRepo(pool)
	contractService := contract.NewContractService(contractRepo, logger)
	contractHandler := contract.NewHandlerImpl(contractService, logger)

	userRepo := user.NewPostgresUserRepo(pool)
	userService := user.NewUserService(userRepo, logger)
	userHandler := user.NewHandlerImpl(userService, logger)

	// --- Router Setup ---
	apiRouter := router.SetupRouter(&router.Config{
		AuthHandler:            authHandler,
		PlanHandler:            planHandler,
		ContractHandler:        contractHandler,
		UserHandler:            userHandler,
		AuthenticateMiddleware: auth.Authenticate(logger, cfg.JWT),
		EntitlementMiddleware:  entitlement.RequireEntitlement(logger, entitlementService),
		AdminMiddleware:        auth.RequireRole(logger, "admin"),
	})

	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(appLogger.StructuredLogger(logger))
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(middleware.Timeout(60 * time.Second))
	mux.Use(middleware.Compress(5, "application/json"))
	mux.Mount("/", apiRouter)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.HTTPPort),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Handlers.Prometheus.Port),
		Handler: metricsMux,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting metrics server", slog.String("address", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutdown signal received, starting graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
		}
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server graceful shutdown failed", slog.Any("error", err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" {
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		return slog.New(tint.NewHandler(os.Stdout, tintOpts))
	}

	jsonOpts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
}
