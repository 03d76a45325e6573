package filter

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/robotwatch/pkg/accesswatch"
	"github.com/dmitrymomot/robotwatch/pkg/logger"
	"github.com/dmitrymomot/robotwatch/pkg/robots"
)

// Config names the event fields the filter reads and writes. Empty
// destinations are not written.
type Config struct {
	IPSource        string `env:"FILTER_IP_SOURCE"`
	UserAgentSource string `env:"FILTER_USER_AGENT_SOURCE"`

	AddressDestination    string `env:"FILTER_ADDRESS_DESTINATION"`
	UserAgentDestination  string `env:"FILTER_USER_AGENT_DESTINATION"`
	RobotDestination      string `env:"FILTER_ROBOT_DESTINATION"`
	ReputationDestination string `env:"FILTER_REPUTATION_DESTINATION"`
	IdentityDestination   string `env:"FILTER_IDENTITY_DESTINATION"`
}

// Filter enriches events with robot intelligence.
type Filter struct {
	cfg    Config
	src    Source
	logger *slog.Logger
}

// Option configures a Filter.
type Option func(*Filter)

func WithLogger(l *slog.Logger) Option {
	return func(f *Filter) {
		if l != nil {
			f.logger = l
		}
	}
}

// New validates cfg and returns a Filter reading from src.
func New(cfg Config, src Source, opts ...Option) (*Filter, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if cfg.IPSource == "" && cfg.UserAgentSource == "" {
		return nil, ErrNoSourceField
	}
	f := &Filter{cfg: cfg, src: src, logger: logger.Discard()}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Apply looks up the event and writes the projected answer to the configured
// destinations. Which lookup runs depends on the configured source fields:
// both give an identity lookup, only the IP an address lookup, only the
// User-Agent a user-agent lookup. A missing field value counts as empty.
//
// Failures are logged and returned. Whatever partial answer the source gave
// is still written, and the event is never dropped.
func (f *Filter) Apply(ctx context.Context, ev Event) error {
	ip := stringField(ev, f.cfg.IPSource)
	ua := stringField(ev, f.cfg.UserAgentSource)

	switch {
	case f.cfg.IPSource != "" && f.cfg.UserAgentSource != "":
		id, err := f.src.Identity(ctx, ip, ua)
		f.augment(ev, f.cfg.AddressDestination, id.Address, accesswatch.AddressKeys)
		f.augment(ev, f.cfg.RobotDestination, id.Robot, accesswatch.RobotKeys)
		f.augment(ev, f.cfg.ReputationDestination, id.Reputation, nil)
		f.augment(ev, f.cfg.UserAgentDestination, id.UserAgent, nil)
		if id.Type != "" {
			f.augment(ev, f.cfg.IdentityDestination, accesswatch.Record{"type": id.Type}, nil)
		}
		return f.fail(ctx, err, ip, ua)

	case f.cfg.IPSource != "":
		if ip == "" {
			return nil
		}
		rec, err := f.src.Address(ctx, ip)
		f.augment(ev, f.cfg.AddressDestination, rec, accesswatch.AddressKeys)
		return f.fail(ctx, err, ip, "")

	default:
		rec, err := f.src.UserAgent(ctx, ua)
		f.augment(ev, f.cfg.UserAgentDestination, rec, nil)
		return f.fail(ctx, err, "", ua)
	}
}

func (f *Filter) augment(ev Event, dest string, rec accesswatch.Record, keys []string) {
	if dest == "" {
		return
	}
	if p := rec.Project(keys); p != nil {
		ev.Set(dest, map[string]any(p))
	}
}

func (f *Filter) fail(ctx context.Context, err error, ip, ua string) error {
	if err == nil {
		return nil
	}
	attrs := []any{logger.Error(err), logger.Address(ip)}
	if ua != "" {
		attrs = append(attrs, logger.UserAgentHash(robots.HashUserAgent(ua)))
	}
	f.logger.ErrorContext(ctx, "error augmenting event", attrs...)
	return err
}
