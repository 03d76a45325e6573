// Package ratelimiter provides token bucket rate limiting with an in-memory
// store and HTTP middleware. The lookup API uses it to throttle callers per
// client address.
//
//	cfg := ratelimiter.Config{Capacity: 100, RefillRate: 10, RefillInterval: time.Second}
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	limiter, err := ratelimiter.NewBucket(store, cfg)
//	if err != nil {
//		return err
//	}
//
//	mw := ratelimiter.Middleware(limiter, func(r *http.Request) string {
//		return clientip.FromContext(r.Context())
//	}, nil)
//
// Responses carry X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset headers; rejected ones also carry Retry-After.
package ratelimiter
