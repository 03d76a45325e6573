package accesswatch_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/robotwatch/pkg/accesswatch"
)

func TestRecord_Project(t *testing.T) {
	rec := accesswatch.Record{
		"value":        "192.0.2.1",
		"hostname":     "",
		"country_code": "FR",
		"flags":        []any{},
		"asn":          64500,
		"network":      nil,
	}

	assert.Equal(t, accesswatch.Record{"value": "192.0.2.1", "country_code": "FR"}, rec.Project(accesswatch.AddressKeys))
	assert.Equal(t, accesswatch.Record{"value": "192.0.2.1", "country_code": "FR", "asn": 64500}, rec.Project(nil))
	assert.Nil(t, accesswatch.Record{"hostname": ""}.Project(nil))
	assert.Nil(t, accesswatch.Record(nil).Project(accesswatch.RobotKeys))
}

func TestMemoryCache(t *testing.T) {
	_, err := accesswatch.NewMemoryCache(0)
	require.Error(t, err)

	c, err := accesswatch.NewMemoryCache(2)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1")))
	require.NoError(t, c.Set(ctx, "b", []byte("2")))
	require.NoError(t, c.Set(ctx, "c", []byte("3")))

	_, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok, "oldest entry evicted")

	v, ok, err := c.Get(ctx, "c")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("3"), v)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}
