package ports

import (
	"context"
	"errors"

	"github.com/sundram7865/shopify-insights/internal/domain"
)

// ErrQueueNotReady is returned when the transport has no live connection
var ErrQueueNotReady = errors.New("queue not ready")

// JobPublisher appends jobs to the ingestion queue
type JobPublisher interface {
	Publish(ctx context.Context, job *domain.Job) error
}

// Delivery is one message handed to a consumer. Exactly one of Ack or Reject must be called.
type Delivery interface {
	Body() []byte
	// Ack removes the message permanently
	Ack(ctx context.Context) error
	// Reject removes the message without redelivery
	Reject(ctx context.Context) error
}

// JobConsumer delivers messages one at a time until ctx is cancelled
type JobConsumer interface {
	Consume(ctx context.Context, handle func(ctx context.Context, d Delivery)) error
}

// Queue is a transport that can both publish and consume
type Queue interface {
	JobPublisher
	JobConsumer
	Ping(ctx context.Context) error
	Close() error
}
