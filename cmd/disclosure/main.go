package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/powens/iowa-disclosure-api/internal/config"
	"github.com/powens/iowa-disclosure-api/internal/domain"
	"github.com/powens/iowa-disclosure-api/internal/handler"
	"github.com/powens/iowa-disclosure-api/internal/infra/cache"
	"github.com/powens/iowa-disclosure-api/internal/infra/observability"
	"github.com/powens/iowa-disclosure-api/internal/infra/resilience"
	"github.com/powens/iowa-disclosure-api/internal/infra/socrata"
	"github.com/powens/iowa-disclosure-api/internal/service"

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

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("portal_url", cfg.PortalURL),
		zap.String("committee_dataset", cfg.CommitteeDataset),
		zap.String("contributions_dataset", cfg.ContributionsDataset),
		zap.String("expenditures_dataset", cfg.ExpendituresDataset),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("transactions_ttl", cfg.TransactionsTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
	)
	if cfg.SocrataToken == "" {
		logger.Warn("no app token configured, portal requests will be throttled")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "iowa-disclosure-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Caches ---
	// The committee registry rarely changes; it is cached until restart.
	indexCache := cache.New[domain.CommitteeIndex](0)
	activityCache := cache.New[map[string]bool](cfg.TransactionsTTL)
	txCache := cache.New[service.CommitteeData](cfg.TransactionsTTL)
	metaCache := cache.New[[]domain.DatasetMetadata](cfg.MetadataTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("socrata")

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	portal := socrata.NewClient(httpClient, cfg.PortalURL, cfg.SocrataToken, cb, resilienceCfg, logger)

	// --- Services ---
	searchSvc := service.NewSearch(
		portal,
		cfg.CommitteeDataset,
		cfg.ContributionsDataset,
		indexCache,
		activityCache,
		metrics,
		logger,
	)
	ledgerSvc := service.NewLedger(
		portal,
		searchSvc,
		cfg.CommitteeDataset,
		cfg.ContributionsDataset,
		cfg.ExpendituresDataset,
		txCache,
		metaCache,
		metrics,
		logger,
	)

	// --- Router ---
	router := handler.NewRouter(searchSvc, ledgerSvc, metrics, cfg.AllowedOrigins, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // first pull of a large committee can be slow
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
