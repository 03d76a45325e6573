package robots_test

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/robotwatch/pkg/robots"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const sampleJSON = `{
  "robots": [
    {"id": 1, "name": "ExampleBot", "url": "example-bot", "reputation": "ok",
     "ips": [["203.0.113.5"], "203.0.113.6"],
     "cidrs": [["198.51.100.0", 256], ["2001:db8::", "18446744073709551616"]],
     "uas": ["UA-HASH-ONE"]},
    {"id": 2, "name": "Other", "reputation": "bad",
     "ips": [["not-an-ip"]],
     "cidrs": [["198.51.100.0"], ["bogus", 10], ["198.51.100.0", -1]]}
  ],
  "patterns": [
    {"pattern": "bot", "priority": 10},
    {"pattern": "crawler", "priority": 5}
  ]
}`

const sampleYAML = `
robots:
  - id: 1
    name: ExampleBot
    url: example-bot
    reputation: ok
    ips:
      - ["203.0.113.5"]
      - 203.0.113.6
    cidrs:
      - ["198.51.100.0", 256]
      - ["2001:db8::", "18446744073709551616"]
    uas: [UA-HASH-ONE]
  - id: 2
    name: Other
    reputation: bad
    ips:
      - [not-an-ip]
    cidrs:
      - ["198.51.100.0"]
      - [bogus, 10]
      - ["198.51.100.0", -1]
patterns:
  - pattern: bot
    priority: 10
  - pattern: crawler
    priority: 5
`

func TestLoad(t *testing.T) {
	want := robots.Stats{Robots: 2, IPs: 2, Ranges: 2, UserAgents: 1, Patterns: 2, Dropped: 4}

	t.Run("json", func(t *testing.T) {
		db, err := robots.Load(writeFile(t, "robots.json", sampleJSON))
		require.NoError(t, err)
		assert.Equal(t, want, db.Stats())
	})

	t.Run("yaml", func(t *testing.T) {
		db, err := robots.Load(writeFile(t, "robots.yml", sampleYAML))
		require.NoError(t, err)
		assert.Equal(t, want, db.Stats())
	})

	t.Run("records keep file order and normalized hashes", func(t *testing.T) {
		db, err := robots.Load(writeFile(t, "robots.json", sampleJSON))
		require.NoError(t, err)

		list := db.Robots()
		require.Len(t, list, 2)
		assert.Equal(t, 1, list[0].ID)
		assert.Equal(t, "example-bot", list[0].Slug)
		assert.Equal(t, robots.ReputationOK, list[0].Reputation)
		assert.Equal(t, []string{"ua-hash-one"}, list[0].UserAgents)
		assert.Len(t, list[0].IPs, 2)
		assert.Len(t, list[0].Ranges, 2)
		assert.Equal(t, 2, list[1].ID)
		assert.Empty(t, list[1].IPs)
		assert.Empty(t, list[1].Ranges)
	})

	t.Run("invalid entries are logged", func(t *testing.T) {
		var buf bytes.Buffer
		log := slog.New(slog.NewTextHandler(&buf, nil))

		_, err := robots.Parse(strings.NewReader(sampleJSON), robots.FormatJSON, robots.WithLogger(log))
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "dropping invalid robot ip")
		assert.Contains(t, buf.String(), "dropping invalid robot cidr")
		assert.Contains(t, buf.String(), "robot_id=2")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := robots.Load(filepath.Join(t.TempDir(), "missing.json"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, robots.ErrDatabaseLoad))
	})

	t.Run("invalid pattern is fatal", func(t *testing.T) {
		_, err := robots.Load(writeFile(t, "robots.json", `{"robots":[],"patterns":[{"pattern":"([","priority":1}]}`))
		require.Error(t, err)
		assert.True(t, errors.Is(err, robots.ErrInvalidPattern))
	})
}

func TestParse_StructuralErrors(t *testing.T) {
	tests := []struct {
		name   string
		format robots.Format
		doc    string
		target error
	}{
		{"not json", robots.FormatJSON, `{robots`, robots.ErrDatabaseLoad},
		{"top level list", robots.FormatJSON, `[]`, robots.ErrDatabaseLoad},
		{"missing robots", robots.FormatJSON, `{"patterns":[]}`, robots.ErrDatabaseLoad},
		{"robots not a list", robots.FormatJSON, `{"robots":{}}`, robots.ErrDatabaseLoad},
		{"missing id", robots.FormatJSON, `{"robots":[{"name":"x","reputation":"ok"}]}`, robots.ErrDatabaseLoad},
		{"unknown reputation", robots.FormatJSON, `{"robots":[{"id":1,"reputation":"great"}]}`, robots.ErrDatabaseLoad},
		{"duplicate id", robots.FormatJSON, `{"robots":[{"id":1,"reputation":"ok"},{"id":1,"reputation":"bad"}]}`, robots.ErrDatabaseLoad},
		{"empty yaml", robots.FormatYAML, ``, robots.ErrDatabaseLoad},
		{"unknown format", robots.Format("toml"), `robots = []`, robots.ErrUnknownFormat},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, err := robots.Parse(strings.NewReader(tc.doc), tc.format)
			require.Error(t, err)
			assert.Nil(t, db)
			assert.True(t, errors.Is(err, tc.target), "got %v", err)
		})
	}
}

func TestParse_EmptyDatabase(t *testing.T) {
	db, err := robots.Parse(strings.NewReader(`{"robots":[]}`), robots.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, robots.Stats{}, db.Stats())
}

func TestFormatFromName(t *testing.T) {
	assert.Equal(t, robots.FormatYAML, robots.FormatFromName("db.yaml"))
	assert.Equal(t, robots.FormatYAML, robots.FormatFromName("DB.YML"))
	assert.Equal(t, robots.FormatJSON, robots.FormatFromName("db.json"))
	assert.Equal(t, robots.FormatJSON, robots.FormatFromName("robots"))
}

func TestNew_CopiesRecords(t *testing.T) {
	ips := []robots.Address{mustAddr(t, "192.0.2.1")}
	db, err := robots.New([]robots.Robot{{ID: 7, Reputation: robots.ReputationNice, IPs: ips}}, nil)
	require.NoError(t, err)

	ips[0] = mustAddr(t, "192.0.2.99")
	assert.Equal(t, mustAddr(t, "192.0.2.1"), db.Robots()[0].IPs[0])
}

func TestRobotURL(t *testing.T) {
	withSlug := robots.Robot{ID: 3, Slug: "example", Reputation: robots.ReputationOK}
	withoutSlug := robots.Robot{ID: 3, Reputation: robots.ReputationBad}

	assert.Equal(t, "https://access.watch/robots/ok/example", withSlug.URL(robots.DefaultRobotURLBase))
	assert.Equal(t, "https://robots.local/bad/3", withoutSlug.URL("https://robots.local/"))
}

func TestReputation(t *testing.T) {
	r, err := robots.ParseReputation(" Suspicious ")
	require.NoError(t, err)
	assert.Equal(t, robots.ReputationSuspicious, r)
	assert.Equal(t, 2, r.Severity())

	_, err = robots.ParseReputation("")
	assert.Error(t, err)
	assert.Equal(t, -1, robots.Reputation("meh").Severity())
}
