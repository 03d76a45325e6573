// Command robotwatch detects robots in web traffic.
//
//	robotwatch check    validate the robots database and print its stats
//	robotwatch filter   enrich NDJSON events read from stdin
//	robotwatch serve    serve the lookup API
//
// Configuration comes from ROBOTWATCH_* environment variables and an
// optional .env file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/robotwatch/pkg/api"
	"github.com/dmitrymomot/robotwatch/pkg/clientip"
	"github.com/dmitrymomot/robotwatch/pkg/filter"
	"github.com/dmitrymomot/robotwatch/pkg/httpserver"
	"github.com/dmitrymomot/robotwatch/pkg/logger"
	"github.com/dmitrymomot/robotwatch/pkg/metrics"
	"github.com/dmitrymomot/robotwatch/pkg/ratelimiter"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "robotwatch:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("robotwatch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	source := fs.String("source", "", "lookup source: local or remote (overrides ROBOTWATCH_SOURCE)")
	database := fs.String("db", "", "robots database path or s3://bucket/key (overrides ROBOTWATCH_DATABASE)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: robotwatch [flags] check|filter|serve")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if *source != "" {
		cfg.Source = *source
	}
	if *database != "" {
		cfg.Database = *database
	}

	a := &app{cfg: cfg, logger: newLogger(cfg, stderr), metrics: metrics.New()}
	defer a.Close()

	switch cmd := fs.Arg(0); cmd {
	case "check":
		return a.check(ctx, stdout)
	case "filter":
		return a.filter(ctx, stdin, stdout)
	case "serve":
		return a.serve(ctx)
	default:
		fs.Usage()
		return fmt.Errorf("%w: %q", errUnknownCommand, cmd)
	}
}

func (a *app) check(ctx context.Context, stdout io.Writer) error {
	a.cfg.Source = sourceLocal
	if err := a.setupSource(ctx); err != nil {
		return err
	}
	st := a.store.Database().Stats()
	_, err := fmt.Fprintf(stdout,
		"robots: %d\nips: %d\nranges: %d\nuser_agents: %d\npatterns: %d\ndropped: %d\n",
		st.Robots, st.IPs, st.Ranges, st.UserAgents, st.Patterns, st.Dropped)
	return err
}

func (a *app) filter(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	if err := a.setupSource(ctx); err != nil {
		return err
	}
	f, err := filter.New(a.cfg.Filter, a.source, filter.WithLogger(a.logger.With(logger.Component("filter"))))
	if err != nil {
		return err
	}
	stats, err := f.Run(ctx, stdin, stdout)
	a.logger.InfoContext(ctx, "filter finished",
		logger.Count(stats.Events),
		slog.Int("invalid", stats.Invalid),
		slog.Int("failed", stats.Failed),
	)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *app) serve(ctx context.Context) error {
	if err := a.setupSource(ctx); err != nil {
		return err
	}
	if a.store != nil {
		go a.store.Watch(ctx, a.cfg.ReloadInterval, a.load)
	}

	opts := []api.Option{
		api.WithLogger(a.logger.With(logger.Component("api"))),
		api.WithMetrics(a.metrics),
		api.WithAPIKeys(a.cfg.APIKeys...),
	}
	if len(a.cfg.ClientIPHeaders) > 0 {
		opts = append(opts, api.WithClientIP(clientip.New(a.cfg.ClientIPHeaders...)))
	}
	if a.cfg.RateLimit.Enabled() {
		store := ratelimiter.NewMemoryStore(ratelimiter.WithStaleAfter(a.cfg.RateLimit.StaleAfter))
		a.closers = append(a.closers, store)
		limiter, err := ratelimiter.NewBucket(store, a.cfg.RateLimit)
		if err != nil {
			return err
		}
		opts = append(opts, api.WithRateLimit(limiter))
	}
	for name, check := range a.checks {
		opts = append(opts, api.WithHealthCheck(name, check))
	}

	srv := httpserver.NewFromConfig(a.cfg.HTTP, httpserver.WithLogger(a.logger.With(logger.Component("http"))))
	return srv.Run(ctx, api.NewRouter(a.source, opts...))
}
