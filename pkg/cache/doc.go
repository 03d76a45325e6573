// Package cache provides a generic, thread-safe LRU (Least Recently Used) cache.
//
// The cache holds a fixed number of entries and evicts the least recently used
// one when a new key would exceed the capacity. All operations are O(1) and
// guarded by a single mutex, which keeps it cheap enough for per-request use
// in front of slow lookups such as remote API calls.
//
// # Usage
//
//	c, err := cache.New[string, []byte](10_000)
//	if err != nil {
//		// ErrInvalidCapacity
//	}
//
//	c.Put("ip-192.0.2.1", body)
//	if body, ok := c.Get("ip-192.0.2.1"); ok {
//		// cache hit
//	}
//
//	st := c.Stats() // hits, misses, evictions
//
// An eviction callback can release resources held by dropped values:
//
//	c.OnEvict(func(key string, value []byte) {
//		log.Debug("evicted", "key", key)
//	})
package cache
