package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BradenHooton/dbconn/internal/background"
	"github.com/BradenHooton/dbconn/internal/config"
	"github.com/BradenHooton/dbconn/internal/database"
	"github.com/BradenHooton/dbconn/internal/handlers"
	middlewareCustom "github.com/BradenHooton/dbconn/internal/middleware"
	"github.com/BradenHooton/dbconn/internal/routes"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	manager := database.NewManager(
		cfg.Database.URL,
		database.PoolConnector(&cfg.Database),
		logger,
		database.WithRetryPolicy(database.RetryPolicyFromConfig(cfg.Database.Retry)),
	)
	defer manager.Close()

	// Start degraded rather than exit; /health and the monitor keep retrying.
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	if _, err := manager.EnsureConnected(ctx); err != nil {
		logger.Error("initial database connection failed", slog.Any("error", err))
	}
	cancel()

	healthHandler := handlers.NewHealthHandler(manager, cfg.Database.URL, cfg.Server.HealthTimeout)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, healthHandler, middlewareCustom.RateLimitConfig{
		RequestsPerMinute: cfg.Server.HealthRequestsPerMinute,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	monitorCtx, monitorCancel := context.WithCancel(context.Background())
	defer monitorCancel()

	var monitor *background.ConnectionMonitor
	if cfg.Database.MonitorInterval > 0 {
		monitor = background.NewConnectionMonitor(manager, logger, cfg.Database.MonitorInterval)
		go monitor.Start(monitorCtx)
	}

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	monitorCancel()
	if monitor != nil {
		monitor.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
