package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/robotwatch/pkg/accesswatch"
	"github.com/dmitrymomot/robotwatch/pkg/file"
	"github.com/dmitrymomot/robotwatch/pkg/filter"
	"github.com/dmitrymomot/robotwatch/pkg/geo"
	"github.com/dmitrymomot/robotwatch/pkg/httpserver"
	"github.com/dmitrymomot/robotwatch/pkg/logger"
	"github.com/dmitrymomot/robotwatch/pkg/metrics"
	"github.com/dmitrymomot/robotwatch/pkg/redis"
	"github.com/dmitrymomot/robotwatch/pkg/requestid"
	"github.com/dmitrymomot/robotwatch/pkg/robots"
)

// app holds the wired components shared by the commands.
type app struct {
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	source  filter.Source
	store   *robots.Store     // local source only
	load    robots.LoaderFunc // local source only
	checks  map[string]httpserver.Check
	closers []io.Closer
}

func newLogger(cfg Config, out io.Writer) *slog.Logger {
	opts := []logger.Option{
		logger.WithOutput(out),
		logger.WithEnvironment(cfg.Env, "robotwatch"),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	}
	if cfg.LogFormat != "" {
		opts = append(opts, logger.WithFormat(logger.Format(cfg.LogFormat)))
	}
	return logger.New(opts...)
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("close failed", logger.Error(err))
		}
	}
}

// setupSource builds the lookup source selected by cfg.Source. A local
// source is loaded once before returning.
func (a *app) setupSource(ctx context.Context) error {
	a.checks = map[string]httpserver.Check{}
	switch a.cfg.Source {
	case sourceLocal:
		return a.setupLocal(ctx)
	case sourceRemote:
		return a.setupRemote(ctx)
	default:
		return fmt.Errorf("%w: %q", errUnknownSource, a.cfg.Source)
	}
}

func (a *app) setupLocal(ctx context.Context) error {
	log := a.logger.With(logger.Component("robots"))

	src, err := file.NewSource(ctx, a.cfg.Database, a.cfg.S3,
		file.WithHTTPClient(&http.Client{Transport: &requestid.Transport{}}))
	if err != nil {
		return err
	}
	a.load = a.metrics.InstrumentLoader(file.Loader(src, log, robots.WithRobotURLBase(a.cfg.RobotURLBase)))
	a.store = robots.NewStore(nil,
		robots.WithStoreLogger(log),
		robots.WithSwapHook(a.metrics.ObserveDatabase),
	)
	if err := a.store.Reload(ctx, a.load); err != nil {
		return err
	}
	a.checks["robots"] = func(context.Context) error {
		if a.store.Database() == nil {
			return robots.ErrNoDatabase
		}
		return nil
	}

	opts := []filter.LocalOption{
		filter.WithMetrics(a.metrics),
		filter.WithSourceLogger(log),
	}
	if a.cfg.GeoIPCountry != "" {
		g, err := geo.Open(a.cfg.GeoIPCountry, a.cfg.GeoIPASN)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, g)
		opts = append(opts, filter.WithGeo(g))
	}
	a.source = filter.NewLocalSource(a.store, opts...)
	return nil
}

func (a *app) setupRemote(ctx context.Context) error {
	log := a.logger.With(logger.Component("accesswatch"))

	var cache accesswatch.Cache
	switch a.cfg.Cache {
	case cacheNone, "":
	case cacheMemory:
		// A non-positive size turns the memory cache off.
		if a.cfg.CacheSize <= 0 {
			break
		}
		mc, err := accesswatch.NewMemoryCache(a.cfg.CacheSize)
		if err != nil {
			return err
		}
		cache = mc
	case cacheRedis:
		client, err := redis.Connect(ctx, a.cfg.Redis)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, client)
		a.checks["redis"] = redis.Healthcheck(client)
		cache = redis.NewCache(client, a.cfg.Redis)
	default:
		return fmt.Errorf("%w: %q", errUnknownCache, a.cfg.Cache)
	}

	opts := []accesswatch.Option{
		accesswatch.WithHTTPClient(&http.Client{
			Timeout:   a.cfg.RemoteTimeout,
			Transport: &requestid.Transport{},
		}),
		accesswatch.WithLogger(log),
	}
	if a.cfg.RemoteBaseURL != "" {
		opts = append(opts, accesswatch.WithBaseURL(a.cfg.RemoteBaseURL))
	}
	if cache != nil {
		opts = append(opts, accesswatch.WithCache(a.metrics.InstrumentCache(cache)))
	}

	client, err := accesswatch.NewClient(a.cfg.RemoteAPIKey, opts...)
	if err != nil {
		return err
	}
	a.source = client
	return nil
}
