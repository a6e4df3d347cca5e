package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "marketplace:product:"

// ProductCache stores JSON product views in Redis with a fixed TTL.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps an existing client.
func New(client *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{client: client, ttl: ttl}
}

// Dial connects to the server at redisURL and checks it answers.
func Dial(ctx context.Context, redisURL string, ttl time.Duration) (*ProductCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return New(client, ttl), nil
}

func (c *ProductCache) Get(ctx context.Context, id string) (entity.Product, bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return entity.Product{}, false, nil
	}
	if err != nil {
		return entity.Product{}, false, fmt.Errorf("failed to read cached product: %w", err)
	}

	var p entity.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return entity.Product{}, false, fmt.Errorf("failed to decode cached product: %w", err)
	}
	return p, true, nil
}

func (c *ProductCache) Set(ctx context.Context, p entity.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode product: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+p.ID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache product: %w", err)
	}
	return nil
}

func (c *ProductCache) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyPrefix + id
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to evict products: %w", err)
	}
	return nil
}

// Close releases the client.
func (c *ProductCache) Close() error {
	return c.client.Close()
}
