package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/robotwatch/pkg/clientip"
	"github.com/dmitrymomot/robotwatch/pkg/filter"
	"github.com/dmitrymomot/robotwatch/pkg/httpserver"
	"github.com/dmitrymomot/robotwatch/pkg/logger"
	"github.com/dmitrymomot/robotwatch/pkg/metrics"
	"github.com/dmitrymomot/robotwatch/pkg/ratelimiter"
	"github.com/dmitrymomot/robotwatch/pkg/requestid"
)

const maxBodySize = 64 << 10

type options struct {
	logger        *slog.Logger
	metrics       *metrics.Metrics
	apiKeys       []string
	checks        map[string]httpserver.Check
	healthTimeout time.Duration
	resolver      *clientip.Resolver
	limiter       ratelimiter.RateLimiter
}

// Option configures the router.
type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records request metrics and serves them on /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithAPIKeys requires one of keys in the Api-Key header on lookup routes.
// Empty keys are ignored; with none the API is open.
func WithAPIKeys(keys ...string) Option {
	return func(o *options) {
		for _, k := range keys {
			if k != "" {
				o.apiKeys = append(o.apiKeys, k)
			}
		}
	}
}

// WithHealthCheck adds a readiness check served on /health.
func WithHealthCheck(name string, check httpserver.Check) Option {
	return func(o *options) {
		if o.checks == nil {
			o.checks = map[string]httpserver.Check{}
		}
		o.checks[name] = check
	}
}

// WithClientIP sets how the caller address is resolved for identity
// requests without an explicit address and for rate limiting. The default
// trusts clientip.DefaultHeaders.
func WithClientIP(r *clientip.Resolver) Option {
	return func(o *options) {
		if r != nil {
			o.resolver = r
		}
	}
}

// WithRateLimit throttles lookup routes per client address.
func WithRateLimit(l ratelimiter.RateLimiter) Option {
	return func(o *options) { o.limiter = l }
}

// NewRouter returns the HTTP API answering lookups from src. Routes mirror
// the remote Access Watch API so accesswatch.Client can target it:
//
//	GET  /1.1/address/{ip}
//	POST /1.1/user-agent   {"value": "<ua>"}
//	POST /1.1/identity     {"address": "<ip>", "user_agent": "<ua>"}
//	GET  /health
//	GET  /metrics
func NewRouter(src filter.Source, opts ...Option) chi.Router {
	o := &options{
		logger:        logger.Discard(),
		healthTimeout: 2 * time.Second,
		resolver:      clientip.New(clientip.DefaultHeaders...),
	}
	for _, opt := range opts {
		opt(o)
	}

	h := &handlers{src: src, logger: o.logger}

	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		clientip.Middleware(o.resolver),
		o.metrics.Middleware,
		requestLogger(o.logger),
		middleware.Recoverer,
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", httpserver.HealthCheckHandler(o.logger, o.healthTimeout, o.checks))
	if o.metrics != nil {
		r.Handle("/metrics", o.metrics.Handler())
	}

	r.Route("/1.1", func(r chi.Router) {
		r.Use(requireAPIKey(o.apiKeys))
		if o.limiter != nil {
			r.Use(ratelimiter.Middleware(o.limiter, clientKey, denyRateLimited))
		}
		r.Get("/address/{ip}", h.address)
		r.Post("/user-agent", h.userAgent)
		r.Post("/identity", h.identity)
	})
	return r
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.DebugContext(r.Context(), "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				logger.Duration(time.Since(start)),
			)
		})
	}
}
