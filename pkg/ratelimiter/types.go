package ratelimiter

import "time"

// Result contains the result of a rate limit check.
type Result struct {
	Limit     int       // Maximum tokens (bucket capacity)
	Remaining int       // Tokens remaining
	ResetAt   time.Time // Time when tokens will be refilled
}

// Allowed returns whether the request is allowed based on remaining tokens.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long to wait before the next request.
// Returns 0 if the request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Config defines the per-client token bucket. A zero Capacity disables
// limiting.
type Config struct {
	Capacity       int           `env:"RATELIMIT_CAPACITY" envDefault:"0"`         // burst size per client
	RefillRate     int           `env:"RATELIMIT_REFILL_RATE" envDefault:"10"`     // tokens added per interval
	RefillInterval time.Duration `env:"RATELIMIT_REFILL_INTERVAL" envDefault:"1s"` // how often tokens are added
	StaleAfter     time.Duration `env:"RATELIMIT_STALE_AFTER" envDefault:"1h"`     // idle buckets are dropped after this
}

// Enabled reports whether cfg asks for limiting at all.
func (c Config) Enabled() bool {
	return c.Capacity > 0
}
