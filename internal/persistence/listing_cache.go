package persistence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ListingCache caches serialized public event listings in Redis. Every
// method degrades to a miss or no-op when Redis is unavailable, so the
// serving path never depends on cache health.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewListingCache builds a cache over an existing Redis wrapper.
func NewListingCache(r *Redis, ttl time.Duration, logger *zap.Logger) *ListingCache {
	var client *redis.Client
	if r != nil {
		client = r.Client
	}
	return &ListingCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached payload for a listing key, or false on miss.
func (c *ListingCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("listing cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return val, true
}

// Set stores a listing payload under the configured TTL.
func (c *ListingCache) Set(ctx context.Context, key string, payload []byte) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Debug("listing cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops the given listing keys after a mutation.
func (c *ListingCache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Debug("listing cache invalidate failed", zap.Error(err))
	}
}
