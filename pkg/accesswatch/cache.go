package accesswatch

import (
	"context"

	"github.com/dmitrymomot/robotwatch/pkg/cache"
)

// Cache stores raw response bodies by lookup key. Implementations must be
// safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
}

// MemoryCache is an in-process LRU Cache.
type MemoryCache struct {
	lru *cache.LRU[string, []byte]
}

// NewMemoryCache creates an LRU cache holding up to size responses.
func NewMemoryCache(size int) (*MemoryCache, error) {
	lru, err := cache.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{lru: lru}, nil
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.lru.Get(key)
	return v, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, val []byte) error {
	c.lru.Put(key, val)
	return nil
}

// Stats exposes the underlying LRU counters.
func (c *MemoryCache) Stats() cache.Stats {
	return c.lru.Stats()
}

// Len returns the number of cached responses.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}
