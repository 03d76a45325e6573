package filter

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/robotwatch/pkg/accesswatch"
	"github.com/dmitrymomot/robotwatch/pkg/logger"
	"github.com/dmitrymomot/robotwatch/pkg/metrics"
	"github.com/dmitrymomot/robotwatch/pkg/robots"
)

// Source answers the three lookups. *accesswatch.Client is the remote
// implementation; LocalSource answers from the in-memory database.
type Source interface {
	Identity(ctx context.Context, ip, userAgent string) (accesswatch.Identity, error)
	Address(ctx context.Context, ip string) (accesswatch.Record, error)
	UserAgent(ctx context.Context, userAgent string) (accesswatch.Record, error)
}

var _ Source = (*accesswatch.Client)(nil)

// CountryResolver maps an address to an ISO country code. *geo.Reader
// satisfies it.
type CountryResolver interface {
	CountryCode(ip string) (string, error)
}

// LocalSource answers lookups from a robots.Store with the same record shapes
// as the remote API.
type LocalSource struct {
	store   *robots.Store
	geo     CountryResolver
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// LocalOption configures a LocalSource.
type LocalOption func(*LocalSource)

// WithGeo enables address.country_code.
func WithGeo(g CountryResolver) LocalOption {
	return func(s *LocalSource) { s.geo = g }
}

func WithMetrics(m *metrics.Metrics) LocalOption {
	return func(s *LocalSource) { s.metrics = m }
}

func WithSourceLogger(l *slog.Logger) LocalOption {
	return func(s *LocalSource) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewLocalSource(store *robots.Store, opts ...LocalOption) *LocalSource {
	s := &LocalSource{store: store, logger: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Identity runs detection for the pair. A malformed ip still yields the
// User-Agent part of the answer together with the error.
func (s *LocalSource) Identity(ctx context.Context, ip, userAgent string) (accesswatch.Identity, error) {
	res, err := s.store.Detect(ip, userAgent)
	s.metrics.ObserveDetection("local", res, err)
	if errors.Is(err, robots.ErrNoDatabase) {
		return accesswatch.Identity{}, err
	}

	id := accesswatch.Identity{
		Robot:      robotRecord(res),
		Reputation: reputationRecord(res),
	}
	if res.IsRobot {
		id.Type = robots.IdentityRobot
	}
	if userAgent != "" {
		id.UserAgent = userAgentRecord(userAgent, res)
	}
	if ip != "" && err == nil {
		id.Address = s.addressRecord(ctx, ip)
	}
	return id, err
}

func (s *LocalSource) Address(ctx context.Context, ip string) (accesswatch.Record, error) {
	addr, err := robots.ParseAddress(ip)
	if err != nil {
		return nil, err
	}
	return s.addressRecord(ctx, addr.String()), nil
}

func (s *LocalSource) UserAgent(_ context.Context, userAgent string) (accesswatch.Record, error) {
	res, err := s.store.Detect("", userAgent)
	s.metrics.ObserveDetection("local", res, err)
	if err != nil {
		return nil, err
	}
	return userAgentRecord(userAgent, res), nil
}

func (s *LocalSource) addressRecord(ctx context.Context, ip string) accesswatch.Record {
	rec := accesswatch.Record{"value": ip}
	if s.geo == nil {
		return rec
	}
	code, err := s.geo.CountryCode(ip)
	if err != nil {
		s.logger.DebugContext(ctx, "geoip lookup failed", logger.Address(ip), logger.Error(err))
		return rec
	}
	if code != "" {
		rec["country_code"] = code
	}
	return rec
}

func userAgentRecord(ua string, res robots.Result) accesswatch.Record {
	rec := accesswatch.Record{"value": ua}
	if res.IsRobot {
		rec["type"] = robots.IdentityRobot
	}
	return rec
}

func robotRecord(res robots.Result) accesswatch.Record {
	if res.Robot == nil {
		return nil
	}
	rec := accesswatch.Record{"id": res.Robot.ID, "url": res.URL}
	if res.Robot.Name != "" {
		rec["name"] = res.Robot.Name
	}
	return rec
}

func reputationRecord(res robots.Result) accesswatch.Record {
	if res.Reputation == "" {
		return nil
	}
	return accesswatch.Record{"status": string(res.Reputation)}
}
