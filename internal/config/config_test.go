package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "STORAGE", "KAFKA_BROKERS", "REDIS_URL", "PRODUCT_CACHE_TTL",
		"CHECKOUT_RESERVE_STOCK", "SEED", "SEED_FILE", "LOG_LEVEL", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, time.Minute, cfg.ProductCacheTTL)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.ReserveStock)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE", "Memory")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("PRODUCT_CACHE_TTL", "30s")
	t.Setenv("CHECKOUT_RESERVE_STOCK", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 30*time.Second, cfg.ProductCacheTTL)
	assert.True(t, cfg.ReserveStock)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadRejectsMalformed(t *testing.T) {
	tests := map[string]string{
		"STORAGE":                "sqlite",
		"PRODUCT_CACHE_TTL":      "soon",
		"CHECKOUT_RESERVE_STOCK": "maybe",
		"LOG_LEVEL":              "loud",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := Load()
			assert.ErrorContains(t, err, key)
		})
	}
}
