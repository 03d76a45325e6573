package ratelimiter

// WithClock exposes the store clock to tests.
var WithClock = withClock
