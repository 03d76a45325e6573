// Package requestid attaches correlation identifiers to HTTP requests.
//
// Middleware reuses a well-formed incoming "X-Request-ID" header or generates
// a UUIDv7, stores it in the request context and echoes it back in the
// response. LoggerExtractor plugs the id into pkg/logger so every record
// written with the request context carries it, and Transport forwards it on
// outgoing remote lookups.
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware)
//
//	httpClient := &http.Client{Transport: &requestid.Transport{}}
package requestid
