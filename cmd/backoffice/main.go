package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vportela/empresas-backoffice-go/internal/config"
	"github.com/vportela/empresas-backoffice-go/internal/handler"
	"github.com/vportela/empresas-backoffice-go/internal/infra/observability"
	"github.com/vportela/empresas-backoffice-go/internal/infra/resilience"
	"github.com/vportela/empresas-backoffice-go/internal/infra/supabase"
	"github.com/vportela/empresas-backoffice-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	// The service-role key and JWT secret are deliberately absent here.
	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("supabase_url", cfg.SupabaseURL),
		zap.String("logo_bucket", cfg.LogoBucket),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Strings("allowed_origins", cfg.AllowedOrigins),
	)

	if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
		logger.Fatal("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "empresas-backoffice")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Supabase client ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	cb := resilience.NewCircuitBreaker("supabase")
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	supabaseClient := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cb,
		bulkhead,
		logger,
	)
	logoStore := supabase.NewStorage(supabaseClient, cfg.LogoBucket)

	// --- Services ---
	directorySvc := service.NewDirectory(supabaseClient, supabaseClient, supabaseClient, metrics, logger)
	invitesSvc := service.NewInvites(supabaseClient, supabaseClient, cfg.InviteRedirectURL, metrics, logger)
	companiesSvc := service.NewCompanies(supabaseClient, supabaseClient, logoStore, metrics, logger)
	accountsSvc := service.NewAccounts(supabaseClient, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(
		directorySvc,
		invitesSvc,
		companiesSvc,
		accountsSvc,
		metrics,
		cfg.SupabaseJWTSecret,
		cfg.AllowedOrigins,
		logger,
	)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
