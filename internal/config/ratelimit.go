package config

import "time"

// RateLimitConfig sizes the token bucket each client IP gets per route.
// Buckets live in Redis when a client is configured and in process
// otherwise; both use the same numbers.
type RateLimitConfig struct {
    Enabled bool
    Burst   int           // bucket size, also the X-RateLimit-Limit header
    Refill  int           // tokens added every Every
    Every   time.Duration // refill period
    IdleTTL time.Duration // idle buckets expire after this long
    Prefix  string        // Redis key namespace
}

// LoadRateLimitConfig reads the RATE_LIMIT_* variables.  Out of range
// values are raised to the smallest usable setting rather than rejected.
func LoadRateLimitConfig() RateLimitConfig {
    rl := RateLimitConfig{
        Enabled: envBool("RATE_LIMIT_ENABLED", true),
        Burst:   envInt("RATE_LIMIT_BURST", 60),
        Refill:  envInt("RATE_LIMIT_REFILL", 1),
        Every:   envDur("RATE_LIMIT_EVERY", time.Second),
        IdleTTL: envDur("RATE_LIMIT_IDLE_TTL", 10*time.Minute),
        Prefix:  getenv("RATE_LIMIT_PREFIX", "storefront:rl"),
    }
    rl.normalize()
    return rl
}

func (rl *RateLimitConfig) normalize() {
    rl.Burst = max(rl.Burst, 1)
    rl.Refill = max(rl.Refill, 1)
    if rl.Every <= 0 {
        rl.Every = time.Second
    }
    // a bucket must outlive a few refills or it resets to full too early
    rl.IdleTTL = max(rl.IdleTTL, 5*rl.Every)
}
