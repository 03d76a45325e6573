package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/robotwatch/pkg/accesswatch"
	"github.com/dmitrymomot/robotwatch/pkg/robots"
)

// Detection outcomes used as the "result" label.
const (
	ResultMatched   = "matched"
	ResultHeuristic = "heuristic"
	ResultNone      = "none"
	ResultError     = "error"
)

// Metrics holds the Prometheus collectors of one robotwatch process. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Detections    *prometheus.CounterVec
	Reputations   *prometheus.CounterVec
	Reloads       *prometheus.CounterVec
	ReloadLatency prometheus.Histogram
	DatabaseSize  *prometheus.GaugeVec
	DatabaseAge   prometheus.Gauge
	CacheLookups  *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
}

// New creates the collectors on a private registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Detections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "robotwatch_detections_total",
				Help: "Detections by lookup source and outcome",
			},
			[]string{"source", "result"},
		),
		Reputations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "robotwatch_matched_reputation_total",
				Help: "Matched robot records by reputation",
			},
			[]string{"reputation"},
		),
		Reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "robotwatch_database_reloads_total",
				Help: "Database reload attempts by outcome",
			},
			[]string{"result"},
		),
		ReloadLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "robotwatch_database_reload_seconds",
				Help:    "Time spent fetching and indexing the robots database",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		DatabaseSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "robotwatch_database_entries",
				Help: "Entries in the active database snapshot by kind",
			},
			[]string{"kind"},
		),
		DatabaseAge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "robotwatch_database_loaded_timestamp_seconds",
				Help: "Unix time the active snapshot was installed",
			},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "robotwatch_cache_lookups_total",
				Help: "Remote lookup cache reads by outcome",
			},
			[]string{"result"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "robotwatch_http_requests_total",
				Help: "HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "robotwatch_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"route", "method"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Detections,
		m.Reputations,
		m.Reloads,
		m.ReloadLatency,
		m.DatabaseSize,
		m.DatabaseAge,
		m.CacheLookups,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// Registry exposes the private registry, e.g. for tests or extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveDetection counts one detection from source ("local" or "remote").
// A failed detection counts as an error even when it carries a partial answer.
func (m *Metrics) ObserveDetection(source string, res robots.Result, err error) {
	if m == nil {
		return
	}
	result := ResultNone
	switch {
	case err != nil:
		result = ResultError
	case res.Matched():
		result = ResultMatched
		m.Reputations.WithLabelValues(string(res.Reputation)).Inc()
	case res.IsRobot:
		result = ResultHeuristic
	}
	m.Detections.WithLabelValues(source, result).Inc()
}

// ObserveDatabase records the size of a newly installed snapshot. It fits
// robots.WithSwapHook.
func (m *Metrics) ObserveDatabase(db *robots.Database) {
	if m == nil || db == nil {
		return
	}
	st := db.Stats()
	m.DatabaseSize.WithLabelValues("robots").Set(float64(st.Robots))
	m.DatabaseSize.WithLabelValues("ips").Set(float64(st.IPs))
	m.DatabaseSize.WithLabelValues("ranges").Set(float64(st.Ranges))
	m.DatabaseSize.WithLabelValues("user_agents").Set(float64(st.UserAgents))
	m.DatabaseSize.WithLabelValues("patterns").Set(float64(st.Patterns))
	m.DatabaseSize.WithLabelValues("dropped").Set(float64(st.Dropped))
	m.DatabaseAge.SetToCurrentTime()
}

// InstrumentLoader wraps load to count reload outcomes and latency.
func (m *Metrics) InstrumentLoader(load robots.LoaderFunc) robots.LoaderFunc {
	if m == nil {
		return load
	}
	return func(ctx context.Context) (*robots.Database, error) {
		start := time.Now()
		db, err := load(ctx)
		m.ReloadLatency.Observe(time.Since(start).Seconds())
		switch {
		case errors.Is(err, robots.ErrNotModified):
			m.Reloads.WithLabelValues("not_modified").Inc()
		case err != nil:
			m.Reloads.WithLabelValues("error").Inc()
		default:
			m.Reloads.WithLabelValues("ok").Inc()
		}
		return db, err
	}
}

// InstrumentCache counts hits and misses of c.
func (m *Metrics) InstrumentCache(c accesswatch.Cache) accesswatch.Cache {
	if m == nil || c == nil {
		return c
	}
	return &instrumentedCache{next: c, lookups: m.CacheLookups}
}

type instrumentedCache struct {
	next    accesswatch.Cache
	lookups *prometheus.CounterVec
}

func (c *instrumentedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok, err := c.next.Get(ctx, key)
	switch {
	case err != nil:
		c.lookups.WithLabelValues("error").Inc()
	case ok:
		c.lookups.WithLabelValues("hit").Inc()
	default:
		c.lookups.WithLabelValues("miss").Inc()
	}
	return v, ok, err
}

func (c *instrumentedCache) Set(ctx context.Context, key string, val []byte) error {
	return c.next.Set(ctx, key, val)
}

// Middleware records request counts and latency labelled by the chi route
// pattern, so path parameters do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
