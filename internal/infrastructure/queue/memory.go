package queue

import (
	"context"
	"sync"

	"github.com/sundram7865/shopify-insights/internal/domain"
	"github.com/sundram7865/shopify-insights/internal/ports"

	"github.com/rs/zerolog"
)

// MemoryQueue is an in-process transport for tests and single-process development.
// Messages do not survive a restart.
type MemoryQueue struct {
	messages  chan []byte
	done      chan struct{}
	closeOnce sync.Once
	logger    zerolog.Logger

	statsMu  sync.Mutex
	acked    [][]byte
	rejected [][]byte
}

// NewMemoryQueue creates an in-memory queue holding up to buffer messages
func NewMemoryQueue(buffer int, logger zerolog.Logger) *MemoryQueue {
	if buffer <= 0 {
		buffer = 1
	}
	return &MemoryQueue{
		messages: make(chan []byte, buffer),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Publish enqueues a job, blocking while the buffer is full until ctx ends or the queue closes
func (q *MemoryQueue) Publish(ctx context.Context, job *domain.Job) error {
	body, err := job.Encode()
	if err != nil {
		return err
	}

	select {
	case <-q.done:
		return ports.ErrQueueNotReady
	default:
	}

	select {
	case q.messages <- body:
		q.logger.Debug().
			Str("type", string(job.Type)).
			Str("tenantId", job.TenantID).
			Msg("Published job to memory queue")
		return nil
	case <-q.done:
		return ports.ErrQueueNotReady
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume hands messages to handle one at a time until ctx is cancelled
func (q *MemoryQueue) Consume(ctx context.Context, handle func(ctx context.Context, d ports.Delivery)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-q.done:
			return ports.ErrQueueNotReady
		default:
		}

		select {
		case <-ctx.Done():
			return nil
		case <-q.done:
			return ports.ErrQueueNotReady
		case body := <-q.messages:
			handle(ctx, &memoryDelivery{queue: q, body: body})
		}
	}
}

// Ping reports whether the queue still accepts messages
func (q *MemoryQueue) Ping(ctx context.Context) error {
	select {
	case <-q.done:
		return ports.ErrQueueNotReady
	default:
		return nil
	}
}

// Close stops the queue and wakes blocked publishers. Pending messages are dropped.
func (q *MemoryQueue) Close() error {
	q.closeOnce.Do(func() { close(q.done) })
	return nil
}

// Len returns the number of messages waiting
func (q *MemoryQueue) Len() int {
	return len(q.messages)
}

// Acked returns the bodies of acknowledged messages
func (q *MemoryQueue) Acked() [][]byte {
	q.statsMu.Lock()
	defer q.statsMu.Unlock()
	return append([][]byte(nil), q.acked...)
}

// Rejected returns the bodies of rejected messages
func (q *MemoryQueue) Rejected() [][]byte {
	q.statsMu.Lock()
	defer q.statsMu.Unlock()
	return append([][]byte(nil), q.rejected...)
}

type memoryDelivery struct {
	queue *MemoryQueue
	body  []byte
	once  sync.Once
}

func (d *memoryDelivery) Body() []byte { return d.body }

func (d *memoryDelivery) Ack(ctx context.Context) error {
	d.once.Do(func() {
		d.queue.statsMu.Lock()
		d.queue.acked = append(d.queue.acked, d.body)
		d.queue.statsMu.Unlock()
	})
	return nil
}

func (d *memoryDelivery) Reject(ctx context.Context) error {
	d.once.Do(func() {
		d.queue.statsMu.Lock()
		d.queue.rejected = append(d.queue.rejected, d.body)
		d.queue.statsMu.Unlock()
	})
	return nil
}
