package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/acquirex/reconcile/pkg/enrich"
)

// RedisCache implements cache.LookupCache over Redis so multiple runs
// share one enrichment cache.
type RedisCache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisCache creates a RedisCache from client options.
func NewRedisCache(opt *redis.Options, prefix string, logger *slog.Logger) *RedisCache {
	return &RedisCache{client: redis.NewClient(opt), prefix: prefix, logger: logger}
}

func (c *RedisCache) key(key string) string {
	return c.prefix + key
}

// Get returns the cached result, or nil on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (*enrich.Result, error) {
	val, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		c.logger.Error("redis get failed", "key", key, "error", err)
		return nil, err
	}
	var result enrich.Result
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		c.logger.Error("redis unmarshal failed", "key", key, "error", err)
		return nil, err
	}
	return &result, nil
}

// Set stores a result with the given TTL.
func (c *RedisCache) Set(ctx context.Context, key string, r *enrich.Result, ttl time.Duration) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), raw, ttl).Err()
}

// Delete removes one entry.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}
