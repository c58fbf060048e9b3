package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/jjm-manufacturing/core1-backend/internal/api"
	"github.com/jjm-manufacturing/core1-backend/internal/api/handlers"
	"github.com/jjm-manufacturing/core1-backend/internal/config"
	"github.com/jjm-manufacturing/core1-backend/internal/database"
	"github.com/jjm-manufacturing/core1-backend/internal/logging"
	"github.com/jjm-manufacturing/core1-backend/internal/metrics"
	"github.com/jjm-manufacturing/core1-backend/internal/middleware"
	"github.com/jjm-manufacturing/core1-backend/internal/services"
	"github.com/jjm-manufacturing/core1-backend/internal/telemetry"
)

const serviceName = "core1-backend"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "core1-backend: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Amounts are plain JSON numbers for the dashboard.
	decimal.MarshalJSONWithoutQuotes = true

	logger := logging.New(cfg.LogLevel, cfg.Environment)
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Init(ctx, cfg.Telemetry, cfg.Environment)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Failed to flush traces")
		}
	}()

	if cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled {
		shutdownLogs, err := attachOTLPLogs(ctx, cfg, logger)
		if err != nil {
			logger.WithError(err).Warn("OTLP log export disabled")
		} else {
			defer shutdownLogs()
		}
	}

	db, err := database.NewPostgresConnection(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	pool := database.NewTracedDBWithProvider(db.Pool, tp.TracerProvider())
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return err
		}
	}

	accounts := database.NewAccountRepository(pool)
	if err := seedAdmin(ctx, accounts, cfg.Security, logger); err != nil {
		return err
	}

	redisClient, err := database.NewRedisConnection(ctx, cfg.Redis, logger)
	if err != nil {
		logger.WithError(err).Warn("Redis unavailable, token revocation falls back to memory")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	recorder := metrics.New()
	auth := middleware.NewAuthMiddleware(cfg.Security.JWTSecret, cfg.Security.JWTExpiryDuration(), newRevocationStore(redisClient, logger))

	narrator := buildNarrator(cfg.LLM, recorder, logger)
	analyzer := services.NewForecastAnalyzer(narrator, cfg.Forecast.Currency, logger, services.WithAnalysisMetrics(recorder))
	notifier := newNotifier(cfg.Telegram, logger)
	tracer := telemetry.NewBusinessTracerWithProvider(tp.TracerProvider())

	var redisHealth handlers.HealthChecker
	if redisClient != nil {
		redisHealth = redisClient
	}

	h := api.Handlers{
		Health:    handlers.NewHealthHandler(db, redisHealth, telemetry.ServiceVersion, logger),
		Auth:      handlers.NewAuthHandler(accounts, auth, cfg.Server.CookieSecure, logger),
		Account:   handlers.NewAccountHandler(accounts, auth, cfg.Security.BcryptCost, cfg.Server.CookieSecure, logger),
		Product:   handlers.NewProductHandler(database.NewProductRepository(pool), logger),
		Material:  handlers.NewMaterialHandler(database.NewMaterialRepository(pool), logger),
		WorkOrder: handlers.NewWorkOrderHandler(database.NewWorkOrderRepository(pool), logger),
		Schedule:  handlers.NewScheduleHandler(database.NewScheduleRepository(pool), notifier, recorder, tracer, logger),
		Forecast:  handlers.NewForecastHandler(database.NewForecastRepository(pool), analyzer, cfg.Forecast.WindowSize, tracer, logger),
	}

	router := api.NewEngine(logger, api.EngineOptions{
		ServiceName:    cfg.Telemetry.ServiceName,
		TracerProvider: tp.TracerProvider(),
		Metrics:        recorder,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	api.SetupRoutes(router, h, auth, recorder.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       durationOr(cfg.Server.ReadTimeout, 15*time.Second),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      durationOr(cfg.Server.WriteTimeout, 60*time.Second),
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.LogStartup(logger, serviceName, telemetry.ServiceVersion, cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		logging.LogShutdown(logger, serviceName, "signal received")
	}

	// Give outstanding requests a deadline for completion
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}

func attachOTLPLogs(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (func(), error) {
	provider, err := logging.NewOTLPProvider(ctx, logging.OTLPConfig{
		Endpoint:       cfg.Telemetry.OTLPEndpoint,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: telemetry.ServiceVersion,
		Environment:    cfg.Environment,
	})
	if err != nil {
		return nil, err
	}

	logger.AddHook(logging.NewOTLPHook(provider.Logger(serviceName), logger.GetLevel()))
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = provider.Shutdown(shutdownCtx)
	}, nil
}
