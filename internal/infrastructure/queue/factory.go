package queue

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/sundram7865/shopify-insights/internal/config"
	"github.com/sundram7865/shopify-insights/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const memoryBuffer = 1024

// ErrNotDurable is returned when a separate-process deployment asks for the in-memory transport
var ErrNotDurable = errors.New("queue transport is not durable")

// OpenDurable is Open for the api, worker and ingestctl processes. They run in separate
// processes, so an in-memory queue would accept jobs nobody consumes.
func OpenDurable(ctx context.Context, cfg config.QueueConfig, logger zerolog.Logger) (ports.Queue, error) {
	u, err := url.Parse(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("invalid QUEUE_DSN: %w", err)
	}
	if u.Scheme == "memory" {
		return nil, fmt.Errorf("%w: %s", ErrNotDurable, cfg.DSN)
	}
	return Open(ctx, cfg, logger)
}

// Open builds the transport named by cfg.DSN and verifies it is reachable.
// Supported schemes: redis, rediss, memory.
func Open(ctx context.Context, cfg config.QueueConfig, logger zerolog.Logger) (ports.Queue, error) {
	u, err := url.Parse(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("invalid QUEUE_DSN: %w", err)
	}

	switch u.Scheme {
	case "memory":
		return NewMemoryQueue(memoryBuffer, logger), nil
	case "redis", "rediss":
		opts, err := redis.ParseURL(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("invalid QUEUE_DSN: %w", err)
		}
		q := NewRedisStreamQueue(redis.NewClient(opts), RedisOptions{
			Name:         cfg.Name,
			Group:        cfg.Group,
			Consumer:     cfg.Consumer,
			ClaimIdle:    cfg.ClaimIdle,
			Partitions:   cfg.Partitions,
			Partition:    cfg.Partition,
			BlockTimeout: cfg.BlockTimeout,
		}, logger)
		if err := q.Ping(ctx); err != nil {
			_ = q.Close()
			return nil, err
		}
		return q, nil
	default:
		return nil, fmt.Errorf("unsupported queue scheme %q", u.Scheme)
	}
}
