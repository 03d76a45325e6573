// Package accesswatch is a client for the Access Watch robot intelligence
// API and for robotwatch servers exposing the same routes.
//
// Three lookups are supported:
//
//	rec, err := client.Address(ctx, "203.0.113.5")            // GET  /1.1/address/{ip}
//	rec, err := client.UserAgent(ctx, ua)                      // POST /1.1/user-agent
//	id, err := client.Identity(ctx, "203.0.113.5", ua)         // POST /1.1/identity
//
// Responses are cached by key ("ip-<ip>", "ua-<md5>", "identity-<md5>-<md5>")
// when a Cache is configured. NewMemoryCache gives a process-local LRU; the
// redis package provides a shared one. Concurrent misses for the same key are
// collapsed into one request.
//
// Non-200 answers are returned as *APIError joined with ErrRequestFailed:
//
//	var apiErr *accesswatch.APIError
//	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
//		// bad key
//	}
package accesswatch
