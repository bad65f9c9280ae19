package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sundram7865/shopify-insights/internal/domain"
	"github.com/sundram7865/shopify-insights/internal/ports"
)

func TestMemoryQueue_PublishConsume(t *testing.T) {
	q := NewMemoryQueue(4, zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, q.Publish(ctx, domain.NewWebhookJob("t1", "orders/create", []byte(`{"id":1}`))))
	require.NoError(t, q.Publish(ctx, domain.NewWebhookJob("t1", "products/update", []byte(`{"id":2}`))))
	assert.Equal(t, 2, q.Len())

	var seen []domain.JobType
	err := q.Consume(ctx, func(ctx context.Context, d ports.Delivery) {
		job, err := domain.DecodeJob(d.Body())
		require.NoError(t, err)
		seen = append(seen, job.Type)
		if job.Type == domain.JobOrders {
			require.NoError(t, d.Ack(ctx))
		} else {
			require.NoError(t, d.Reject(ctx))
		}
		if len(seen) == 2 {
			cancel()
		}
	})
	require.NoError(t, err)

	assert.Equal(t, []domain.JobType{domain.JobOrders, domain.JobProducts}, seen)
	assert.Len(t, q.Acked(), 1)
	assert.Len(t, q.Rejected(), 1)
}

func TestMemoryQueue_SettlesOnce(t *testing.T) {
	q := NewMemoryQueue(1, zerolog.Nop())
	d := &memoryDelivery{queue: q, body: []byte(`{}`)}

	require.NoError(t, d.Ack(context.Background()))
	require.NoError(t, d.Reject(context.Background()))

	assert.Len(t, q.Acked(), 1)
	assert.Empty(t, q.Rejected())
}

func TestMemoryQueue_Closed(t *testing.T) {
	q := NewMemoryQueue(1, zerolog.Nop())
	require.NoError(t, q.Close())

	err := q.Publish(context.Background(), domain.NewWebhookJob("t1", "orders/create", []byte(`{}`)))
	assert.ErrorIs(t, err, ports.ErrQueueNotReady)
	assert.ErrorIs(t, q.Ping(context.Background()), ports.ErrQueueNotReady)

	err = q.Consume(context.Background(), func(context.Context, ports.Delivery) {})
	assert.ErrorIs(t, err, ports.ErrQueueNotReady)
}

func TestMemoryQueue_PublishRespectsContext(t *testing.T) {
	q := NewMemoryQueue(1, zerolog.Nop())
	require.NoError(t, q.Publish(context.Background(), domain.NewWebhookJob("t1", "orders/create", []byte(`{}`))))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Publish(ctx, domain.NewWebhookJob("t1", "orders/create", []byte(`{}`)))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryQueue_BodyIsWireFormat(t *testing.T) {
	q := NewMemoryQueue(1, zerolog.Nop())
	require.NoError(t, q.Publish(context.Background(), domain.NewWebhookJob("t1", "checkouts/create", []byte(`{"id":7}`))))

	body := <-q.messages
	var wire map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &wire))
	assert.JSONEq(t, `"CHECKOUTS"`, string(wire["type"]))
	assert.JSONEq(t, `"t1"`, string(wire["tenantId"]))
	assert.JSONEq(t, `[{"id":7}]`, string(wire["payload"]))
	assert.NotContains(t, wire, "attempt")
}

func TestMemoryQueue_CloseWakesBlockedPublisher(t *testing.T) {
	q := NewMemoryQueue(1, zerolog.Nop())
	require.NoError(t, q.Publish(context.Background(), domain.NewWebhookJob("t1", "orders/create", []byte(`{}`))))

	published := make(chan error, 1)
	go func() {
		published <- q.Publish(context.Background(), domain.NewWebhookJob("t1", "orders/create", []byte(`{}`)))
	}()

	closed := make(chan struct{})
	go func() {
		_ = q.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close blocked behind a publisher waiting on a full buffer")
	}

	select {
	case err := <-published:
		assert.ErrorIs(t, err, ports.ErrQueueNotReady)
	case <-time.After(time.Second):
		t.Fatal("blocked publisher was not released by Close")
	}
}
