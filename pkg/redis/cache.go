package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores raw lookup responses in Redis so several robotwatch instances
// share one cache. It satisfies accesswatch.Cache.
type Cache struct {
	db     redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewCache wraps client. Keys are namespaced with cfg.KeyPrefix and expire
// after cfg.CacheTTL.
func NewCache(client redis.UniversalClient, cfg Config) *Cache {
	return &Cache{
		db:     client,
		prefix: cfg.KeyPrefix,
		ttl:    cfg.CacheTTL,
	}
}

// Get returns the cached value. A missing key is not an error.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, nil
	}
	val, err := c.db.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Join(ErrCacheOperation, err)
	}
	return val, true, nil
}

// Set stores val under key. Empty keys and values are ignored.
func (c *Cache) Set(ctx context.Context, key string, val []byte) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	if err := c.db.Set(ctx, c.prefix+key, val, c.ttl).Err(); err != nil {
		return errors.Join(ErrCacheOperation, err)
	}
	return nil
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := c.db.Del(ctx, c.prefix+key).Err(); err != nil {
		return errors.Join(ErrCacheOperation, err)
	}
	return nil
}

// Conn returns the underlying client.
func (c *Cache) Conn() redis.UniversalClient {
	return c.db
}
