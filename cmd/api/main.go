package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sentinelauth/sentinel/internal/background"
	"github.com/sentinelauth/sentinel/internal/config"
	"github.com/sentinelauth/sentinel/internal/database"
	"github.com/sentinelauth/sentinel/internal/handlers"
	"github.com/sentinelauth/sentinel/internal/metrics"
	middlewareCustom "github.com/sentinelauth/sentinel/internal/middleware"
	"github.com/sentinelauth/sentinel/internal/repositories"
	"github.com/sentinelauth/sentinel/internal/routes"
	"github.com/sentinelauth/sentinel/internal/sentinel"
	"github.com/sentinelauth/sentinel/internal/session"
	pkglogger "github.com/sentinelauth/sentinel/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	attemptRepo := repositories.NewAttemptRepository(db)

	// Session fingerprint binding store: redis when configured, otherwise
	// in-process
	var sessionStore interface {
		sentinel.SessionBinding
		handlers.SessionClearer
	}
	if cfg.Session.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisStore, err := session.NewRedisStore(ctx, cfg.Session.RedisURL, cfg.Session.TTL)
		cancel()
		if err != nil {
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer redisStore.Close()
		sessionStore = redisStore
		logger.Info("session bindings backed by redis")
	} else {
		memStore := session.NewMemoryStore(cfg.Session.TTL)
		defer memStore.Close()
		sessionStore = memStore
		logger.Info("session bindings held in memory")
	}

	// IP reputation fails open when unconfigured
	var reputationClient sentinel.ReputationClient
	if cfg.Sentinel.IPReputationAPIKey != "" {
		reputationClient = sentinel.NewIPQualityScoreClient(cfg.Sentinel.IPReputationAPIKey, cfg.Sentinel.ReputationTimeout)
		logger.Info("ip reputation lookups enabled")
	}
	reputationChecker := sentinel.NewReputationChecker(reputationClient, logger)

	aggregator := sentinel.NewScoreAggregator(
		attemptRepo,
		sessionStore,
		reputationChecker,
		sentinel.Config{
			MaxAttempts:    cfg.Sentinel.MaxLoginAttempts,
			Window:         cfg.Sentinel.RateLimitWindow,
			ScoreThreshold: cfg.Sentinel.BotScoreThreshold,
		},
		logger,
	)

	auditLogger := pkglogger.NewAuditLogger(logger)
	cookieConfig := session.CookieConfig{
		Secure: cfg.Session.CookieSecure,
		TTL:    cfg.Session.TTL,
	}

	loginHandler, err := handlers.NewLoginHandler(
		aggregator,
		attemptRepo,
		cookieConfig,
		cfg.Sentinel.DemoUsername,
		cfg.Sentinel.DemoPassword,
		logger,
		auditLogger,
	)
	if err != nil {
		logger.Error("failed to initialize login handler", slog.Any("error", err))
		os.Exit(1)
	}

	adminHandler := handlers.NewAdminHandler(aggregator, attemptRepo, sessionStore, cookieConfig, logger)

	cleanupManager := background.NewCleanupManager(attemptRepo, logger, cfg.Sentinel.CleanupInterval, cfg.Sentinel.RetentionDays)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(metrics.Middleware)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, loginHandler, adminHandler, cfg.Server.Env)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.HealthCheck(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
