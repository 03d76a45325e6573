package robots_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/robotwatch/pkg/robots"
)

func TestPatternTable(t *testing.T) {
	t.Run("sorted by priority, stable on ties", func(t *testing.T) {
		table, err := robots.NewPatternTable([]robots.Pattern{
			{Source: "spider", Priority: 20},
			{Source: "bot", Priority: 10},
			{Source: "crawl", Priority: 20},
			{Source: "curl", Priority: 5},
		})
		require.NoError(t, err)

		var sources []string
		for _, p := range table.Patterns() {
			sources = append(sources, p.Source)
		}
		assert.Equal(t, []string{"curl", "bot", "spider", "crawl"}, sources)
		assert.Equal(t, 4, table.Len())
	})

	t.Run("case-insensitive match", func(t *testing.T) {
		table, err := robots.NewPatternTable([]robots.Pattern{{Source: "googlebot"}})
		require.NoError(t, err)
		assert.True(t, table.Match("Mozilla/5.0 (compatible; Googlebot/2.1)"))
		assert.True(t, table.Match("GOOGLEBOT"))
		assert.False(t, table.Match("Mozilla/5.0 (Windows NT 10.0)"))
	})

	t.Run("first match follows priority", func(t *testing.T) {
		table, err := robots.NewPatternTable([]robots.Pattern{
			{Source: "bot", Priority: 50},
			{Source: "^curl/", Priority: 1},
		})
		require.NoError(t, err)

		p, ok := table.FirstMatch("curl/8.0 bot")
		require.True(t, ok)
		assert.Equal(t, "^curl/", p.Source)

		p, ok = table.FirstMatch("superbot")
		require.True(t, ok)
		assert.Equal(t, "bot", p.Source)

		_, ok = table.FirstMatch("Mozilla/5.0")
		assert.False(t, ok)
	})

	t.Run("empty table matches nothing", func(t *testing.T) {
		table, err := robots.NewPatternTable(nil)
		require.NoError(t, err)
		assert.False(t, table.Match("bot"))
	})

	t.Run("invalid pattern fails the table", func(t *testing.T) {
		_, err := robots.NewPatternTable([]robots.Pattern{{Source: "ok"}, {Source: "(unclosed"}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, robots.ErrInvalidPattern))
		assert.Contains(t, err.Error(), "(unclosed")
	})
}

func TestHashUserAgent(t *testing.T) {
	h := robots.HashUserAgent("ExampleBot/1.0")
	assert.Len(t, h, 32)
	assert.Equal(t, h, robots.HashUserAgent("ExampleBot/1.0"))
	assert.NotEqual(t, h, robots.HashUserAgent("examplebot/1.0"), "hashing is case-sensitive")
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", robots.HashUserAgent(""))
}
