package application

import (
	"context"
	"time"

	"github.com/sundram7865/shopify-insights/internal/domain"
	"github.com/sundram7865/shopify-insights/internal/infrastructure/metrics"
	"github.com/sundram7865/shopify-insights/internal/ports"

	"github.com/rs/zerolog"
)

// Worker consumes the ingestion queue sequentially and reconciles each job.
// A failed job is republished with a higher attempt count until maxAttempts,
// then moved to the failed-jobs store. The original delivery is always rejected.
type Worker struct {
	consumer    ports.JobConsumer
	publisher   ports.JobPublisher
	dispatcher  *ReconcileDispatcher
	failedJobs  ports.FailedJobRepository
	metrics     *metrics.Metrics
	maxAttempts int

	// retryTimeout bounds a republish so a full transport cannot stall the only consumer
	retryTimeout time.Duration
	logger       zerolog.Logger
}

const defaultRetryTimeout = 10 * time.Second

// NewWorker creates a reconciliation worker
func NewWorker(
	consumer ports.JobConsumer,
	publisher ports.JobPublisher,
	dispatcher *ReconcileDispatcher,
	failedJobs ports.FailedJobRepository,
	m *metrics.Metrics,
	maxAttempts int,
	logger zerolog.Logger,
) *Worker {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Worker{
		consumer:     consumer,
		publisher:    publisher,
		dispatcher:   dispatcher,
		failedJobs:   failedJobs,
		metrics:      m,
		maxAttempts:  maxAttempts,
		retryTimeout: defaultRetryTimeout,
		logger:       logger,
	}
}

// Run blocks until ctx is cancelled or the transport fails
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Int("maxAttempts", w.maxAttempts).Msg("Worker started")
	err := w.consumer.Consume(ctx, w.Handle)
	w.logger.Info().Msg("Worker stopped")
	return err
}

// Handle processes one delivery and settles it
func (w *Worker) Handle(ctx context.Context, d ports.Delivery) {
	job, err := domain.DecodeJob(d.Body())
	if err != nil {
		w.logger.Error().Err(err).Msg("Dropping undecodable job")
		w.metrics.JobsProcessed.WithLabelValues("", metrics.OutcomeMalformed).Inc()
		w.deadLetter(ctx, d, &domain.FailedJob{
			Body:      d.Body(),
			Attempts:  1,
			LastError: err.Error(),
		})
		return
	}

	log := w.logger.With().
		Str("type", string(job.Type)).
		Str("tenantId", job.TenantID).
		Int("attempt", job.Attempt).
		Int("items", len(job.Payload)).
		Logger()

	if !w.dispatcher.Handles(job.Type) {
		log.Warn().Msg("Unknown job type, acknowledging")
		w.metrics.JobsProcessed.WithLabelValues(string(job.Type), metrics.OutcomeUnknown).Inc()
		w.settle(ctx, d.Ack, log)
		return
	}

	start := time.Now()
	n, err := w.dispatcher.Dispatch(ctx, job.Type, job.TenantID, job.Payload)
	w.metrics.ObserveReconcile(string(job.Type), start)

	if err == nil {
		w.metrics.ItemsReconciled.WithLabelValues(string(job.Type)).Add(float64(n))
		w.metrics.JobsProcessed.WithLabelValues(string(job.Type), metrics.OutcomeAcked).Inc()
		w.settle(ctx, d.Ack, log)
		log.Info().Int("reconciled", n).Msg("Job processed")
		return
	}

	if ctx.Err() != nil {
		// shutting down; the transport redelivers unsettled messages
		log.Warn().Err(err).Msg("Job interrupted by shutdown")
		return
	}

	w.fail(ctx, d, job, err, log)
}

func (w *Worker) fail(ctx context.Context, d ports.Delivery, job *domain.Job, cause error, log zerolog.Logger) {
	attempt := job.Attempt + 1

	if attempt < w.maxAttempts {
		retry := *job
		retry.Attempt = attempt
		pubCtx, cancel := context.WithTimeout(ctx, w.retryTimeout)
		err := w.publisher.Publish(pubCtx, &retry)
		cancel()
		if err == nil {
			log.Warn().Err(cause).Int("nextAttempt", attempt).Msg("Job failed, republished for retry")
			w.metrics.JobsProcessed.WithLabelValues(string(job.Type), metrics.OutcomeRetried).Inc()
			w.settle(ctx, d.Reject, log)
			return
		}
		log.Error().Err(err).Msg("Failed to republish job, dead-lettering")
	}

	failed := *job
	failed.Attempt = attempt
	body, err := failed.Encode()
	if err != nil {
		body = d.Body()
	}

	log.Error().Err(cause).Int("attempts", attempt).Msg("Job failed, moving to dead letters")
	w.metrics.JobsProcessed.WithLabelValues(string(job.Type), metrics.OutcomeDeadLetter).Inc()
	w.deadLetter(ctx, d, &domain.FailedJob{
		Type:      job.Type,
		TenantID:  job.TenantID,
		Body:      body,
		Attempts:  attempt,
		LastError: cause.Error(),
	})
}

// deadLetter stores the job then rejects the delivery. If the store write fails the
// delivery is left unsettled so the transport can hand it out again.
func (w *Worker) deadLetter(ctx context.Context, d ports.Delivery, job *domain.FailedJob) {
	if err := w.failedJobs.Save(context.WithoutCancel(ctx), job); err != nil {
		w.logger.Error().Err(err).Str("tenantId", job.TenantID).Msg("Failed to store dead letter, leaving message unsettled")
		return
	}
	w.settle(ctx, d.Reject, w.logger)
}

func (w *Worker) settle(ctx context.Context, fn func(context.Context) error, log zerolog.Logger) {
	if err := fn(context.WithoutCancel(ctx)); err != nil {
		log.Error().Err(err).Msg("Failed to settle message")
	}
}
