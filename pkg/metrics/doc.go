// Package metrics exposes Prometheus metrics for detections, database
// reloads, the remote lookup cache and the HTTP API.
//
// Collectors live on a private registry served by Handler. Helpers plug into
// the other packages without them importing Prometheus:
//
//	m := metrics.New()
//	store := robots.NewStore(nil, robots.WithSwapHook(m.ObserveDatabase))
//	load := m.InstrumentLoader(file.Loader(src, log))
//	cache := m.InstrumentCache(redis.NewCache(client, cfg))
//	r.Use(m.Middleware)
//	r.Handle("/metrics", m.Handler())
//
// A nil *Metrics is a valid no-op.
package metrics
