package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/sundram7865/shopify-insights/internal/application"
	"github.com/sundram7865/shopify-insights/internal/config"
	apiinfra "github.com/sundram7865/shopify-insights/internal/infrastructure/api"
	"github.com/sundram7865/shopify-insights/internal/infrastructure/metrics"
	"github.com/sundram7865/shopify-insights/internal/infrastructure/queue"
	"github.com/sundram7865/shopify-insights/internal/infrastructure/repository"
	shopifyinfra "github.com/sundram7865/shopify-insights/internal/infrastructure/shopify"
	"github.com/sundram7865/shopify-insights/internal/logging"
	"github.com/sundram7865/shopify-insights/internal/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New("info", "json")
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format).With().Str("service", "api").Logger()

	if err := cfg.RequireWebhookSecret(); err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Relational store
	db, err := repository.OpenPostgres(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer repository.Close(db)

	// Ingestion queue
	q, err := queue.OpenDurable(ctx, cfg.Queue, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("dsn", cfg.Queue.DSN).Msg("Queue not reachable")
	}
	defer q.Close()

	// Optional webhook audit log
	var webhookLog ports.WebhookLog
	if cfg.Mongo.MongoEnabled() {
		client, mdb, err := repository.OpenMongo(ctx, cfg.Mongo)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		defer client.Disconnect(context.Background())
		webhookLog = repository.NewMongoWebhookLog(mdb)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router, err := newRouter(cfg, db, q, webhookLog, reg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build router")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("Receiver listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("HTTP server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down receiver")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		return
	}
	logger.Info().Msg("Receiver stopped")
}

// newRouter wires the receiver's handlers onto the shared store, queue and registry
func newRouter(
	cfg *config.Config,
	db *gorm.DB,
	q ports.Queue,
	webhookLog ports.WebhookLog,
	reg *prometheus.Registry,
	logger zerolog.Logger,
) (http.Handler, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	tenants := repository.NewTenantRepository(db)
	ingestService := application.NewIngestService(tenants, q, webhookLog, logger)
	webhookHandler := apiinfra.NewWebhookHandler(
		ingestService,
		shopifyinfra.NewWebhookVerifier(cfg.Shopify.APISecret),
		metrics.New(reg),
		cfg.Server.MaxBodyBytes,
		logger,
	)

	return apiinfra.NewRouter(apiinfra.RouterConfig{
		Webhook:  webhookHandler,
		Gatherer: reg,
		HealthChecks: map[string]apiinfra.HealthCheck{
			"database": sqlDB.PingContext,
			"queue":    q.Ping,
		},
		SwaggerFile: cfg.Server.SwaggerFile,
		Logger:      logger,
	}), nil
}
