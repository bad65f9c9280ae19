package queue

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/sundram7865/shopify-insights/internal/config"
	"github.com/sundram7865/shopify-insights/internal/domain"
	"github.com/sundram7865/shopify-insights/internal/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStream = "test-ingestion"

func newTestRedisQueue(t *testing.T, opts RedisOptions) *RedisStreamQueue {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	opts.Name = testStream
	opts.Group = "reconcilers"
	if opts.Consumer == "" {
		opts.Consumer = "c1"
	}
	if opts.BlockTimeout == 0 {
		opts.BlockTimeout = 100 * time.Millisecond
	}
	q := NewRedisStreamQueue(client, opts, zerolog.Nop())
	require.NoError(t, q.Ping(context.Background()))
	return q
}

func publishOrder(t *testing.T, q ports.JobPublisher, id string) {
	t.Helper()
	require.NoError(t, q.Publish(context.Background(), domain.NewWebhookJob("t1", "orders/create", []byte(`{"id":`+id+`}`))))
}

func orderID(t *testing.T, d ports.Delivery) string {
	t.Helper()
	job, err := domain.DecodeJob(d.Body())
	require.NoError(t, err)
	require.Len(t, job.Payload, 1)

	var item struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(job.Payload[0], &item))
	return strconv.Itoa(item.ID)
}

func TestRedisStreamQueue_AckRemovesEntry(t *testing.T) {
	q := newTestRedisQueue(t, RedisOptions{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	publishOrder(t, q, "1")

	var got []string
	require.NoError(t, q.Consume(ctx, func(ctx context.Context, d ports.Delivery) {
		got = append(got, orderID(t, d))
		require.NoError(t, d.Ack(ctx))
		cancel()
	}))
	assert.Equal(t, []string{"1"}, got)

	n, err := q.client.XLen(context.Background(), testStream).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisStreamQueue_PendingPassThenNewEntries(t *testing.T) {
	q := newTestRedisQueue(t, RedisOptions{ClaimIdle: time.Minute})
	publishOrder(t, q, "1")
	publishOrder(t, q, "2")

	// first run receives both entries and dies without settling them
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	seen := 0
	require.NoError(t, q.Consume(ctx, func(ctx context.Context, d ports.Delivery) {
		seen++
		if seen == 2 {
			cancel()
		}
	}))
	cancel()
	require.Equal(t, 2, seen)

	publishOrder(t, q, "3")

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var got []string
	require.NoError(t, q.Consume(ctx, func(ctx context.Context, d ports.Delivery) {
		got = append(got, orderID(t, d))
		require.NoError(t, d.Ack(ctx))
		if len(got) == 3 {
			cancel()
		}
	}))

	assert.Equal(t, []string{"1", "2", "3"}, got)
	n, err := q.client.XLen(context.Background(), testStream).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisStreamQueue_PendingPassDeliversEachEntryOnce(t *testing.T) {
	q := newTestRedisQueue(t, RedisOptions{ClaimIdle: time.Minute})
	publishOrder(t, q, "1")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	require.NoError(t, q.Consume(ctx, func(ctx context.Context, d ports.Delivery) {
		cancel()
	}))
	cancel()

	// the restarted run leaves the entry unsettled again and must move on to new entries
	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	published := make(chan error, 1)
	go func() {
		time.Sleep(200 * time.Millisecond)
		published <- q.Publish(context.Background(), domain.NewWebhookJob("t1", "orders/create", []byte(`{"id":2}`)))
	}()

	var got []string
	require.NoError(t, q.Consume(ctx, func(ctx context.Context, d ports.Delivery) {
		id := orderID(t, d)
		got = append(got, id)
		if id == "2" {
			require.NoError(t, d.Ack(ctx))
			cancel()
		}
	}))

	require.NoError(t, <-published)
	assert.Equal(t, []string{"1", "2"}, got)
}

func TestRedisStreamQueue_ReclaimsIdleEntry(t *testing.T) {
	q := newTestRedisQueue(t, RedisOptions{
		ClaimIdle:    50 * time.Millisecond,
		BlockTimeout: 20 * time.Millisecond,
	})
	publishOrder(t, q, "1")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	deliveries := 0
	require.NoError(t, q.Consume(ctx, func(ctx context.Context, d ports.Delivery) {
		deliveries++
		if deliveries == 1 {
			// handler gave up without settling
			return
		}
		require.NoError(t, d.Ack(ctx))
		cancel()
	}))

	assert.Equal(t, 2, deliveries)
	n, err := q.client.XLen(context.Background(), testStream).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisStreamQueue_ReclaimsEntryOfDeadConsumer(t *testing.T) {
	q := newTestRedisQueue(t, RedisOptions{Consumer: "dead", ClaimIdle: time.Minute})
	publishOrder(t, q, "1")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	require.NoError(t, q.Consume(ctx, func(ctx context.Context, d ports.Delivery) {
		cancel()
	}))
	cancel()

	other := NewRedisStreamQueue(q.client, RedisOptions{
		Name:         testStream,
		Group:        "reconcilers",
		Consumer:     "alive",
		ClaimIdle:    30 * time.Millisecond,
		BlockTimeout: 10 * time.Millisecond,
	}, zerolog.Nop())

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var got []string
	require.NoError(t, other.Consume(ctx, func(ctx context.Context, d ports.Delivery) {
		got = append(got, orderID(t, d))
		require.NoError(t, d.Reject(ctx))
		cancel()
	}))
	assert.Equal(t, []string{"1"}, got)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	q, err := Open(ctx, config.QueueConfig{DSN: "memory://"}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryQueue{}, q)

	_, err = Open(ctx, config.QueueConfig{DSN: "amqp://localhost"}, zerolog.Nop())
	assert.Error(t, err)

	timeout, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, err = Open(timeout, config.QueueConfig{DSN: "redis://127.0.0.1:1/0", Name: "x", Group: "g", Consumer: "c"}, zerolog.Nop())
	assert.ErrorIs(t, err, ports.ErrQueueNotReady)
}

func TestOpenDurable(t *testing.T) {
	ctx := context.Background()

	_, err := OpenDurable(ctx, config.QueueConfig{DSN: "memory://"}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrNotDurable)

	srv := miniredis.RunT(t)
	q, err := OpenDurable(ctx, config.QueueConfig{DSN: "redis://" + srv.Addr() + "/0", Name: "x", Group: "g", Consumer: "c"}, zerolog.Nop())
	require.NoError(t, err)
	defer q.Close()
	assert.IsType(t, &RedisStreamQueue{}, q)
}
