package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sundram7865/shopify-insights/internal/application"
	"github.com/sundram7865/shopify-insights/internal/application/reconcilers"
	"github.com/sundram7865/shopify-insights/internal/config"
	"github.com/sundram7865/shopify-insights/internal/infrastructure/metrics"
	"github.com/sundram7865/shopify-insights/internal/infrastructure/queue"
	"github.com/sundram7865/shopify-insights/internal/infrastructure/repository"
	"github.com/sundram7865/shopify-insights/internal/logging"
	"github.com/sundram7865/shopify-insights/internal/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New("info", "json")
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format).With().
		Str("service", "worker").
		Int("partition", cfg.Queue.Partition).
		Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.OpenPostgres(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer repository.Close(db)

	q, err := queue.OpenDurable(ctx, cfg.Queue, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("dsn", cfg.Queue.DSN).Msg("Queue not reachable")
	}
	defer q.Close()

	failedJobs, closeDeadLetters, err := repository.OpenDeadLetterStore(ctx, cfg, db)
	if err != nil {
		logger.Fatal().Err(err).Str("store", cfg.DeadLetter.Store).Msg("Failed to open dead-letter store")
	}
	defer closeDeadLetters()

	dispatcher := newDispatcher(repository.NewStore(db), logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	metricsSrv := &http.Server{
		Addr:              cfg.Worker.MetricsAddr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", metricsSrv.Addr).Msg("Metrics listening")
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	worker := application.NewWorker(q, q, dispatcher, failedJobs, m, cfg.Worker.MaxAttempts, logger)
	if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error().Err(err).Msg("Worker stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
}

// newDispatcher registers a reconciler for every job type the worker accepts
func newDispatcher(store ports.Store, logger zerolog.Logger) *application.ReconcileDispatcher {
	dispatcher := application.NewReconcileDispatcher(logger)
	dispatcher.RegisterReconciler(reconcilers.NewProductReconciler(store, logger))
	dispatcher.RegisterReconciler(reconcilers.NewCustomerReconciler(store, logger))
	dispatcher.RegisterReconciler(reconcilers.NewOrderReconciler(store, logger))
	dispatcher.RegisterReconciler(reconcilers.NewCheckoutReconciler(store, logger))
	return dispatcher
}
