package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/careerdesk/careerdesk/api/internal/api/handlers"
	"github.com/careerdesk/careerdesk/api/internal/api/middleware"
	"github.com/careerdesk/careerdesk/api/internal/api/router"
	"github.com/careerdesk/careerdesk/api/internal/config"
	"github.com/careerdesk/careerdesk/api/internal/core/services"
	"github.com/careerdesk/careerdesk/api/internal/db/postgres"
	deliveryhttp "github.com/careerdesk/careerdesk/api/internal/delivery/http"
	"github.com/careerdesk/careerdesk/api/internal/infrastructure/crypto"
	"github.com/careerdesk/careerdesk/api/internal/report"
	"github.com/careerdesk/careerdesk/api/internal/telemetry"
	"github.com/careerdesk/careerdesk/api/internal/workers"
)

// defaultAdminPassword is only used when ADMIN_PASSWORD_HASH is unset in development.
const defaultAdminPassword = "5102"

func main() {
	// --- 1. Core Telemetry & Configuration ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("🚀 Booting CareerDesk API...")
	cfg := config.Load()

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	metrics := telemetry.NewMetrics(registry)

	// --- 2. Outbound Infrastructure ---
	dbPool, err := postgres.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("FATAL: DB failed", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// --- 3. Hardened Dependency Injection ---
	atRest, err := crypto.NewAtRestService(cfg.MasterKeyHex)
	if err != nil {
		logger.Error("FATAL: master key rejected", "error", err)
		os.Exit(1)
	}

	adminHash := cfg.AdminPasswordHash
	if adminHash == "" {
		adminHash, err = services.HashAdminPassword(defaultAdminPassword)
		if err != nil {
			logger.Error("FATAL: could not hash default admin password", "error", err)
			os.Exit(1)
		}
		logger.Warn("⚠️ Using the default development admin password")
	}

	viewer, err := report.NewBuilder(report.WithLocale(cfg.ReportLocale))
	if err != nil {
		logger.Error("FATAL: report viewer", "error", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := postgres.NewUserRepo(dbPool, atRest)
	conversationRepo := postgres.NewConversationRepo(dbPool, atRest)
	auditRepo := postgres.NewAuditRepo(dbPool)

	// Services
	userService := services.NewUserService(userRepo)
	conversationService := services.NewConversationService(conversationRepo, userRepo, logger)
	reportService, err := services.NewReportService(services.ReportServiceDeps{
		Cipher:         crypto.NewPasswordCipher(nil),
		Builder:        viewer,
		Users:          userRepo,
		Conversations:  conversationRepo,
		Audit:          auditRepo,
		FingerprintKey: []byte(cfg.FingerprintKey),
		Metrics:        metrics,
		Logger:         logger,
	})
	if err != nil {
		logger.Error("FATAL: report service", "error", err)
		os.Exit(1)
	}
	tokenService := services.NewTokenService(cfg.JWTSecret)
	authService := services.NewAuthService(cfg.AdminUsername, adminHash, tokenService, logger)

	authMiddleware := middleware.NewAuthMiddleware(authService, logger, cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer authMiddleware.Close()

	// --- 4. Background Workers ---
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	retention := workers.NewExportRetention(auditRepo, logger, 6*time.Hour, cfg.ExportRetention)
	go retention.Start(workerCtx)

	// --- 5. HTTP Gateway ---
	mux := router.NewRouter(router.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		MaxBodyBytes:   cfg.ReportMaxBytes,
		AuthHandler:    handlers.NewAuthHandler(authService, cfg.IsProduction()),
		ReportHandler:  handlers.NewReportHandler(reportService),
		UserHandler:    handlers.NewUserHandler(userService, conversationService),
		AdminHandler:   handlers.NewAdminHandler(userService, reportService),
		HealthHandler:  deliveryhttp.NewHealthHandler(dbPool),
		AuthMiddleware: authMiddleware,
		PINVerifier:    userService,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Logger:         logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	// --- 6. Graceful Exit ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("🌐 CareerDesk API active", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("CRITICAL: Server crashed", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	logger.Info("🛑 Shutting down...")
	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("ERROR: Forced shutdown", "error", err)
	}
	logger.Info("✅ CareerDesk API shutdown complete")
}
