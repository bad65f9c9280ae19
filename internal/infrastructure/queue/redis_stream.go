package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sundram7865/shopify-insights/internal/domain"
	"github.com/sundram7865/shopify-insights/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	bodyField  = "body"
	claimBatch = 10
)

// RedisOptions configures a Redis Streams transport
type RedisOptions struct {
	Name       string
	Group      string
	Consumer   string
	Partitions int
	// Partition is the stream this process consumes
	Partition    int
	BlockTimeout time.Duration
	// ClaimIdle is how long an entry may stay unsettled before it is handed out again
	ClaimIdle time.Duration
}

// RedisStreamQueue is a durable transport on Redis Streams with a consumer group.
// Entries stay pending until acked or rejected, so a crashed consumer sees them again on
// restart and an entry nobody settles is claimed again after ClaimIdle.
type RedisStreamQueue struct {
	client *redis.Client
	opts   RedisOptions
	logger zerolog.Logger
}

// NewRedisStreamQueue creates a Redis Streams queue
func NewRedisStreamQueue(client *redis.Client, opts RedisOptions, logger zerolog.Logger) *RedisStreamQueue {
	if opts.Partitions < 1 {
		opts.Partitions = 1
	}
	if opts.BlockTimeout <= 0 {
		opts.BlockTimeout = 5 * time.Second
	}
	if opts.ClaimIdle <= 0 {
		opts.ClaimIdle = 30 * time.Second
	}
	return &RedisStreamQueue{client: client, opts: opts, logger: logger}
}

// Publish appends a job to the stream of its tenant's partition
func (q *RedisStreamQueue) Publish(ctx context.Context, job *domain.Job) error {
	body, err := job.Encode()
	if err != nil {
		return err
	}

	stream := StreamName(q.opts.Name, q.opts.Partitions, PartitionFor(job.TenantID, q.opts.Partitions))
	id, err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{bodyField: body},
	}).Result()
	if err != nil {
		return fmt.Errorf("%w: failed to publish to %s: %v", ports.ErrQueueNotReady, stream, err)
	}

	q.logger.Debug().
		Str("stream", stream).
		Str("messageId", id).
		Str("type", string(job.Type)).
		Str("tenantId", job.TenantID).
		Msg("Published job")
	return nil
}

// Consume reads the configured partition one entry at a time.
// Entries left pending by an earlier run of this consumer are delivered once first,
// then new entries are read. Entries that stay unsettled for ClaimIdle, from this
// consumer or a dead one, are claimed and delivered again.
func (q *RedisStreamQueue) Consume(ctx context.Context, handle func(ctx context.Context, d ports.Delivery)) error {
	stream := StreamName(q.opts.Name, q.opts.Partitions, q.opts.Partition)
	if err := q.ensureGroup(ctx, stream); err != nil {
		return err
	}

	q.logger.Info().
		Str("stream", stream).
		Str("group", q.opts.Group).
		Str("consumer", q.opts.Consumer).
		Dur("claimIdle", q.opts.ClaimIdle).
		Msg("Consuming stream")

	// cursor walks this consumer's pending list, then ">" reads new entries
	cursor := "0"
	nextClaim := time.Now().Add(q.opts.ClaimIdle)
	for {
		if ctx.Err() != nil {
			return nil
		}

		if cursor == ">" && !time.Now().Before(nextClaim) {
			if err := q.reclaim(ctx, stream, handle); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				q.logger.Error().Err(err).Str("stream", stream).Msg("Failed to claim idle entries")
			}
			nextClaim = time.Now().Add(q.opts.ClaimIdle)
			continue
		}

		block := q.opts.BlockTimeout
		if wait := time.Until(nextClaim); cursor == ">" && wait < block {
			block = wait
		}
		if block < time.Millisecond {
			block = time.Millisecond
		}

		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.opts.Group,
			Consumer: q.opts.Consumer,
			Streams:  []string{stream, cursor},
			Count:    1,
			Block:    block,
		}).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return nil
			}
			q.logger.Error().Err(err).Str("stream", stream).Msg("Failed to read stream, retrying")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		last := ""
		for _, s := range streams {
			for _, msg := range s.Messages {
				if ctx.Err() != nil {
					return nil
				}
				last = msg.ID
				handle(ctx, q.delivery(stream, msg))
			}
		}

		if cursor != ">" {
			if last == "" {
				q.logger.Debug().Str("stream", stream).Msg("Pending entries drained")
				cursor = ">"
			} else {
				cursor = last
			}
		}
	}
}

// reclaim hands out entries that stayed pending for at least ClaimIdle.
// Claiming resets their idle time, so an entry is retried at most once per ClaimIdle.
func (q *RedisStreamQueue) reclaim(ctx context.Context, stream string, handle func(ctx context.Context, d ports.Delivery)) error {
	start := "0-0"
	for {
		msgs, next, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   stream,
			Group:    q.opts.Group,
			Consumer: q.opts.Consumer,
			MinIdle:  q.opts.ClaimIdle,
			Start:    start,
			Count:    claimBatch,
		}).Result()
		if err != nil {
			return fmt.Errorf("failed to claim idle entries: %w", err)
		}

		for _, msg := range msgs {
			if ctx.Err() != nil {
				return nil
			}
			q.logger.Warn().Str("stream", stream).Str("messageId", msg.ID).Msg("Redelivering idle entry")
			handle(ctx, q.delivery(stream, msg))
		}

		if next == "0-0" || next == "" {
			return nil
		}
		start = next
	}
}

func (q *RedisStreamQueue) delivery(stream string, msg redis.XMessage) *redisDelivery {
	return &redisDelivery{
		client: q.client,
		stream: stream,
		group:  q.opts.Group,
		id:     msg.ID,
		body:   messageBody(msg),
	}
}

// Ping checks the Redis connection
func (q *RedisStreamQueue) Ping(ctx context.Context) error {
	if err := q.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ports.ErrQueueNotReady, err)
	}
	return nil
}

// Close closes the Redis client
func (q *RedisStreamQueue) Close() error {
	return q.client.Close()
}

func (q *RedisStreamQueue) ensureGroup(ctx context.Context, stream string) error {
	err := q.client.XGroupCreateMkStream(ctx, stream, q.opts.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("%w: failed to create consumer group: %v", ports.ErrQueueNotReady, err)
	}
	return nil
}

func messageBody(msg redis.XMessage) []byte {
	switch v := msg.Values[bodyField].(type) {
	case string:
		return []byte(v)
	case []byte:
		return v
	}
	return nil
}

type redisDelivery struct {
	client *redis.Client
	stream string
	group  string
	id     string
	body   []byte
}

func (d *redisDelivery) Body() []byte { return d.body }

func (d *redisDelivery) Ack(ctx context.Context) error {
	return d.remove(ctx)
}

// Reject drops the entry. Streams have no requeue, so this matches Ack on the wire.
func (d *redisDelivery) Reject(ctx context.Context) error {
	return d.remove(ctx)
}

func (d *redisDelivery) remove(ctx context.Context) error {
	_, err := d.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.XAck(ctx, d.stream, d.group, d.id)
		pipe.XDel(ctx, d.stream, d.id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove message %s: %w", d.id, err)
	}
	return nil
}
