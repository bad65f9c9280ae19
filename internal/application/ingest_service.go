package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sundram7865/shopify-insights/internal/domain"
	"github.com/sundram7865/shopify-insights/internal/ports"

	"github.com/rs/zerolog"
)

// IngestService turns verified webhooks into queue jobs
type IngestService struct {
	tenants    ports.TenantRepository
	publisher  ports.JobPublisher
	webhookLog ports.WebhookLog
	logger     zerolog.Logger
}

// NewIngestService creates a new ingest service. webhookLog may be nil.
func NewIngestService(
	tenants ports.TenantRepository,
	publisher ports.JobPublisher,
	webhookLog ports.WebhookLog,
	logger zerolog.Logger,
) *IngestService {
	return &IngestService{
		tenants:    tenants,
		publisher:  publisher,
		webhookLog: webhookLog,
		logger:     logger,
	}
}

// Ingest enqueues exactly one job for a verified webhook body.
// Returns domain.ErrTenantNotFound for unknown tenants; nothing is enqueued in that case.
func (s *IngestService) Ingest(ctx context.Context, tenantID, topic string, body []byte) (*domain.Job, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tenant: %w", err)
	}
	if tenant == nil {
		return nil, domain.ErrTenantNotFound
	}

	job := domain.NewWebhookJob(tenant.ID, topic, body)
	if err := s.publisher.Publish(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	s.logger.Info().
		Str("tenantId", tenant.ID).
		Str("topic", topic).
		Str("type", string(job.Type)).
		Int("bytes", len(body)).
		Msg("Webhook enqueued")

	if s.webhookLog != nil {
		event := &domain.WebhookEvent{
			TenantID:   tenant.ID,
			Topic:      topic,
			JobType:    job.Type,
			Size:       len(body),
			ReceivedAt: time.Now().UTC(),
		}
		if err := s.webhookLog.LogWebhook(ctx, event); err != nil {
			s.logger.Warn().Err(err).Str("tenantId", tenant.ID).Msg("Failed to log webhook")
		}
	}

	return job, nil
}
