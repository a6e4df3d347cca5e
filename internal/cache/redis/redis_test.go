package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *ProductCache) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, New(client, time.Minute)
}

func TestProductCache_GetSet(t *testing.T) {
	_, c := setupTestRedis(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "p-1")
	require.NoError(t, err)
	assert.False(t, ok)

	p := entity.Product{ID: "p-1", ShopID: "s-1", ShopName: "Shop", Name: "Mug", Price: decimal.RequireFromString("12.50"), Stock: 3, Status: entity.StatusActive}
	require.NoError(t, c.Set(ctx, p))

	got, ok, err := c.Get(ctx, "p-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Mug", got.Name)
	assert.Equal(t, "12.50", got.Price.StringFixed(2))
	assert.Equal(t, "Shop", got.ShopName)
}

func TestProductCache_Delete(t *testing.T) {
	_, c := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entity.Product{ID: "p-1", Name: "A"}))
	require.NoError(t, c.Set(ctx, entity.Product{ID: "p-2", Name: "B"}))
	require.NoError(t, c.Delete(ctx, "p-1", "p-2"))
	require.NoError(t, c.Delete(ctx))

	for _, id := range []string{"p-1", "p-2"} {
		_, ok, err := c.Get(ctx, id)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestProductCache_Expiry(t *testing.T) {
	mr, c := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entity.Product{ID: "p-1", Name: "A"}))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "p-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProductCache_CorruptEntry(t *testing.T) {
	mr, c := setupTestRedis(t)
	require.NoError(t, mr.Set(keyPrefix+"p-1", "not json"))

	_, _, err := c.Get(context.Background(), "p-1")
	assert.Error(t, err)
}
