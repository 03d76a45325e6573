package robots

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
)

// DefaultRobotURLBase is the prefix of synthesized robot URLs.
const DefaultRobotURLBase = "https://access.watch/robots"

// Option configures database construction.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	urlBase string
}

// WithLogger sets the logger used for load warnings. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRobotURLBase overrides DefaultRobotURLBase. Empty values are ignored.
func WithRobotURLBase(base string) Option {
	return func(o *options) {
		if base != "" {
			o.urlBase = base
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:  slog.New(slog.DiscardHandler),
		urlBase: DefaultRobotURLBase,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Stats summarizes a loaded database.
type Stats struct {
	Robots     int `json:"robots"`
	IPs        int `json:"ips"`
	Ranges     int `json:"ranges"`
	UserAgents int `json:"user_agents"`
	Patterns   int `json:"patterns"`
	Dropped    int `json:"dropped"`
}

// Database is an immutable snapshot of the robots reference data and its
// lookup indices. It is safe for concurrent use.
type Database struct {
	robots   []Robot
	patterns *PatternTable

	ips         map[Address][]int
	ranges      []Range
	rangeRobots [][]int
	tree        *intervalTree
	userAgents  map[string][]int

	urlBase string
	stats   Stats
}

// Load reads a database file. The format follows the file extension.
func Load(path string, opts ...Option) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrDatabaseLoad, err)
	}
	defer f.Close()
	return Parse(f, FormatFromName(path), opts...)
}

// Parse decodes a database document from r and builds the indices.
// Invalid IP and range entries are dropped with a warning.
func Parse(r io.Reader, format Format, opts ...Option) (*Database, error) {
	o := newOptions(opts)

	doc, err := decodeDocument(r, format)
	if err != nil {
		return nil, errors.Join(ErrDatabaseLoad, err)
	}

	entries := *doc.Robots
	list := make([]Robot, 0, len(entries))
	dropped := 0
	for i, e := range entries {
		if e.ID == nil {
			return nil, errors.Join(ErrDatabaseLoad, fmt.Errorf("robot #%d: missing id", i))
		}
		rep, err := ParseReputation(e.Reputation)
		if err != nil {
			return nil, errors.Join(ErrDatabaseLoad, fmt.Errorf("robot %d: %w", *e.ID, err))
		}
		rb := Robot{
			ID:         *e.ID,
			Name:       e.Name,
			Slug:       e.Slug,
			Reputation: rep,
			UserAgents: e.UserAgents,
		}

		for _, ip := range e.IPs {
			addr, err := ParseAddress(ip.value)
			if ip.bad || err != nil {
				dropped++
				o.logger.Warn("dropping invalid robot ip",
					slog.Int("robot_id", rb.ID),
					slog.String("entry", ip.value),
				)
				continue
			}
			rb.IPs = append(rb.IPs, addr)
		}

		for _, c := range e.CIDRs {
			rng, err := parseCIDR(c)
			if err != nil {
				dropped++
				o.logger.Warn("dropping invalid robot cidr",
					slog.Int("robot_id", rb.ID),
					slog.String("entry", c.String()),
					slog.Any("error", err),
				)
				continue
			}
			rb.Ranges = append(rb.Ranges, rng)
		}

		list = append(list, rb)
	}

	db, err := build(list, doc.Patterns, o)
	if err != nil {
		return nil, err
	}
	db.stats.Dropped = dropped
	o.logger.Info("robots database loaded",
		slog.Int("robots", db.stats.Robots),
		slog.Int("ips", db.stats.IPs),
		slog.Int("ranges", db.stats.Ranges),
		slog.Int("user_agents", db.stats.UserAgents),
		slog.Int("patterns", db.stats.Patterns),
		slog.Int("dropped", dropped),
	)
	return db, nil
}

func parseCIDR(c cidrEntry) (Range, error) {
	if c.bad {
		return Range{}, fmt.Errorf("%w: malformed range entry", ErrInvalidAddress)
	}
	first, err := ParseAddress(c.first)
	if err != nil {
		return Range{}, err
	}
	length, full, err := parseLength(c.length)
	if err != nil {
		return Range{}, err
	}
	if full {
		return rangeToTop(first), nil
	}
	return NewRange(first, length), nil
}

// New builds a database from already parsed records. The records are copied.
func New(list []Robot, patterns []Pattern, opts ...Option) (*Database, error) {
	return build(list, patterns, newOptions(opts))
}

func build(list []Robot, patterns []Pattern, o *options) (*Database, error) {
	table, err := NewPatternTable(patterns)
	if err != nil {
		return nil, err
	}

	owned := make([]Robot, len(list))
	seen := make(map[int]struct{}, len(list))
	for i, r := range list {
		if !r.Reputation.Valid() {
			return nil, errors.Join(ErrDatabaseLoad, fmt.Errorf("robot %d: unknown reputation %q", r.ID, r.Reputation))
		}
		if _, dup := seen[r.ID]; dup {
			return nil, errors.Join(ErrDatabaseLoad, fmt.Errorf("duplicate robot id %d", r.ID))
		}
		seen[r.ID] = struct{}{}

		r.IPs = slices.Clone(r.IPs)
		r.Ranges = slices.Clone(r.Ranges)
		uas := make([]string, 0, len(r.UserAgents))
		for _, h := range r.UserAgents {
			if h = normalizeHash(h); h != "" {
				uas = append(uas, h)
			}
		}
		r.UserAgents = uas
		owned[i] = r
	}

	db := &Database{
		robots:     owned,
		patterns:   table,
		ips:        groupBy(owned, func(r *Robot) []Address { return r.IPs }),
		userAgents: groupBy(owned, func(r *Robot) []string { return r.UserAgents }),
		urlBase:    o.urlBase,
	}

	byRange := groupBy(owned, func(r *Robot) []Range { return r.Ranges })
	db.ranges = make([]Range, 0, len(byRange))
	for r := range byRange {
		db.ranges = append(db.ranges, r)
	}
	slices.SortFunc(db.ranges, func(a, b Range) int {
		if c := a.First.Compare(b.First); c != 0 {
			return c
		}
		return a.compareEnd(b)
	})
	db.rangeRobots = make([][]int, len(db.ranges))
	for i, r := range db.ranges {
		db.rangeRobots[i] = byRange[r]
	}
	db.tree = newIntervalTree(db.ranges)

	db.stats = Stats{
		Robots:     len(owned),
		IPs:        len(db.ips),
		Ranges:     db.tree.size(),
		UserAgents: len(db.userAgents),
		Patterns:   table.Len(),
	}
	return db, nil
}

// Stats returns counts of the indexed entries.
func (db *Database) Stats() Stats {
	return db.stats
}

// Robots returns a copy of the records in file order.
func (db *Database) Robots() []Robot {
	return slices.Clone(db.robots)
}

// Patterns returns the heuristic table.
func (db *Database) Patterns() *PatternTable {
	return db.patterns
}

// RobotURL builds the public URL of r with the database URL base.
func (db *Database) RobotURL(r *Robot) string {
	return r.URL(db.urlBase)
}
