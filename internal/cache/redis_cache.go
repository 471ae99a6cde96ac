package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in Redis, shared by every process pointing
// at the same server.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCacheWithURL creates a cache from a redis:// URL. Keys are
// namespaced with prefix.
func NewRedisCacheWithURL(url, prefix string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	return NewRedisCache(redis.NewClient(opts), prefix), nil
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("Redis cache get failed", "key", key, "error", err)
		}
		return "", false
	}

	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	err := c.client.Set(ctx, c.prefix+key, value, ttl).Err()
	if err != nil {
		slog.Warn("Redis cache set failed", "key", key, "error", err)
	}
}

// Ping checks connectivity with the server.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
