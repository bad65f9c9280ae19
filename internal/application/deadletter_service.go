package application

import (
	"context"
	"fmt"

	"github.com/sundram7865/shopify-insights/internal/domain"
	"github.com/sundram7865/shopify-insights/internal/ports"

	"github.com/rs/zerolog"
)

// DeadLetterService lists and redrives jobs that exhausted their attempts
type DeadLetterService struct {
	failedJobs ports.FailedJobRepository
	publisher  ports.JobPublisher
	logger     zerolog.Logger
}

// NewDeadLetterService creates a new dead-letter service
func NewDeadLetterService(failedJobs ports.FailedJobRepository, publisher ports.JobPublisher, logger zerolog.Logger) *DeadLetterService {
	return &DeadLetterService{
		failedJobs: failedJobs,
		publisher:  publisher,
		logger:     logger,
	}
}

// List returns up to limit failed jobs, newest first
func (s *DeadLetterService) List(ctx context.Context, limit int) ([]*domain.FailedJob, error) {
	return s.failedJobs.List(ctx, limit)
}

// Redrive republishes a failed job with a fresh attempt count and removes it from the store
func (s *DeadLetterService) Redrive(ctx context.Context, id string) (*domain.Job, error) {
	failed, err := s.failedJobs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if failed == nil {
		return nil, domain.ErrFailedJobNotFound
	}

	job, err := domain.DecodeJob(failed.Body)
	if err != nil {
		return nil, fmt.Errorf("cannot redrive %s: %w", id, err)
	}
	job.Attempt = 0

	if err := s.publisher.Publish(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to republish %s: %w", id, err)
	}
	if err := s.failedJobs.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("republished %s but failed to delete it: %w", id, err)
	}

	s.logger.Info().
		Str("failedJobId", id).
		Str("type", string(job.Type)).
		Str("tenantId", job.TenantID).
		Msg("Redrove failed job")
	return job, nil
}
