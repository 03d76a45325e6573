// Package api serves robot lookups over HTTP with the same routes and JSON
// shapes as the Access Watch API, so existing clients (including
// accesswatch.Client with WithBaseURL) can point at a self-hosted instance.
//
//	src := filter.NewLocalSource(store, filter.WithGeo(geoReader))
//	router := api.NewRouter(src,
//		api.WithLogger(log),
//		api.WithMetrics(m),
//		api.WithAPIKeys(cfg.APIKeys...),
//		api.WithHealthCheck("redis", redis.Healthcheck(client)),
//	)
//	err := httpserver.NewFromConfig(cfg.HTTP).Run(ctx, router)
//
// Errors use the {"code": <status>, "message": "..."} envelope.
package api
