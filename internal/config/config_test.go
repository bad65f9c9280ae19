package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SHOPIFY_API_SECRET", "shh")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "shopify-ingestion", cfg.Queue.Name)
	assert.Equal(t, 1, cfg.Queue.Partitions)
	assert.Equal(t, 3, cfg.Worker.MaxAttempts)
	assert.Equal(t, "2024-01", cfg.Shopify.APIVersion)
	assert.Equal(t, 250, cfg.Shopify.PageSize)
	assert.Equal(t, 5*time.Second, cfg.Queue.BlockTimeout)
	assert.Equal(t, 30*time.Second, cfg.Queue.ClaimIdle)
	assert.Equal(t, "postgres", cfg.DeadLetter.Store)
	assert.False(t, cfg.Mongo.MongoEnabled())
	assert.NoError(t, cfg.RequireWebhookSecret())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("QUEUE_DSN", "memory://")
	t.Setenv("QUEUE_PARTITIONS", "4")
	t.Setenv("QUEUE_PARTITION", "3")
	t.Setenv("WORKER_MAX_ATTEMPTS", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Address())
	assert.Equal(t, "memory://", cfg.Queue.DSN)
	assert.Equal(t, 4, cfg.Queue.Partitions)
	assert.Equal(t, 3, cfg.Queue.Partition)
	assert.Equal(t, 1, cfg.Worker.MaxAttempts)
}

func TestLoad_QueueConsumer(t *testing.T) {
	host, err := os.Hostname()
	require.NoError(t, err)

	t.Setenv("QUEUE_CONSUMER", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, host, cfg.Queue.Consumer)

	t.Setenv("QUEUE_CONSUMER", "worker-b")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "worker-b", cfg.Queue.Consumer)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"partition out of range", map[string]string{"QUEUE_PARTITIONS": "2", "QUEUE_PARTITION": "2"}},
		{"zero attempts", map[string]string{"WORKER_MAX_ATTEMPTS": "0"}},
		{"mongo dead letters without uri", map[string]string{"DEADLETTER_STORE": "mongo", "MONGODB_URI": ""}},
		{"unknown dead letter store", map[string]string{"DEADLETTER_STORE": "s3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestRequireWebhookSecret(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.RequireWebhookSecret())
}
