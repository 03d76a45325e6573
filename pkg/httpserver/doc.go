// Package httpserver runs the HTTP API with graceful shutdown, configurable
// timeouts and a JSON health-check handler.
//
// Run binds the listener, closes Ready, then blocks until the context is
// cancelled or SIGINT/SIGTERM arrives and drains in-flight requests within the
// shutdown timeout. Construction goes through New or NewFromConfig with Option
// helpers such as WithAddr, WithReadTimeout and WithLogger.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// HealthCheckHandler answers liveness when given no checks and readiness
// otherwise:
//
//	r.Get("/health", httpserver.HealthCheckHandler(log, 2*time.Second, map[string]httpserver.Check{
//		"redis": redis.Healthcheck(client),
//	}))
package httpserver
