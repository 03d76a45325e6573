package cache_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/robotwatch/pkg/cache"
)

func newLRU(t *testing.T, capacity int) *cache.LRU[string, int] {
	t.Helper()
	c, err := cache.New[string, int](capacity)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		c, err := cache.New[string, int](capacity)
		assert.Nil(t, c)
		assert.ErrorIs(t, err, cache.ErrInvalidCapacity)
	}
}

func TestLRU_Basic(t *testing.T) {
	t.Run("put and get", func(t *testing.T) {
		c := newLRU(t, 3)
		c.Put("a", 1)
		c.Put("b", 2)

		v, ok := c.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 1, v)

		_, ok = c.Get("missing")
		assert.False(t, ok)
		assert.Equal(t, 2, c.Len())
	})

	t.Run("update existing", func(t *testing.T) {
		c := newLRU(t, 3)
		c.Put("a", 1)
		c.Put("a", 2)

		v, ok := c.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 2, v)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("remove", func(t *testing.T) {
		c := newLRU(t, 3)
		c.Put("a", 1)
		assert.True(t, c.Remove("a"))
		assert.False(t, c.Remove("a"))
		assert.Equal(t, 0, c.Len())
	})
}

func TestLRU_Eviction(t *testing.T) {
	t.Run("evicts least recently used", func(t *testing.T) {
		c := newLRU(t, 3)
		c.Put("a", 1)
		c.Put("b", 2)
		c.Put("c", 3)

		// Touch "a" so "b" becomes the oldest.
		_, _ = c.Get("a")
		c.Put("d", 4)

		_, ok := c.Get("b")
		assert.False(t, ok, "b should have been evicted")
		for _, k := range []string{"a", "c", "d"} {
			_, ok := c.Get(k)
			assert.True(t, ok, "%s should be cached", k)
		}
		assert.Equal(t, uint64(1), c.Stats().Evictions)
	})

	t.Run("callback on eviction, remove and clear", func(t *testing.T) {
		c := newLRU(t, 2)
		var evicted []string
		c.OnEvict(func(key string, _ int) { evicted = append(evicted, key) })

		c.Put("a", 1)
		c.Put("b", 2)
		c.Put("c", 3)
		c.Remove("b")
		c.Clear()

		assert.Equal(t, []string{"a", "b", "c"}, evicted)
		assert.Equal(t, 0, c.Len())
	})
}

func TestLRU_Stats(t *testing.T) {
	c := newLRU(t, 2)
	c.Put("a", 1)
	_, _ = c.Get("a")
	_, _ = c.Get("a")
	_, _ = c.Get("z")

	assert.Equal(t, cache.Stats{Hits: 2, Misses: 1}, c.Stats())
}

func TestLRU_Concurrent(t *testing.T) {
	c := newLRU(t, 64)
	var wg sync.WaitGroup
	for g := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 500 {
				key := fmt.Sprintf("k-%d", (g*i)%128)
				c.Put(key, i)
				_, _ = c.Get(key)
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 64)
}
