package resilience

import (
	"sync"
	"time"
)

// RateLimiterConfig sizes the token bucket guarding the answer endpoint.
type RateLimiterConfig struct {
	// Rate is the sustained number of requests allowed per second.
	// Default: 10 — one uncached embed-search-generate run every 100ms
	// is already generous for a single instance.
	Rate float64

	// Burst is how far a quiet service may run ahead of the sustained
	// rate before requests are rejected. Default: 20
	Burst int
}

// RateLimiter is a token bucket. The HTTP layer rejects over-budget
// requests immediately with 429 rather than queueing them, so there is
// no waiting primitive; callers poll Allow.
type RateLimiter struct {
	rate  float64
	burst float64

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter creates a RateLimiter, applying defaults.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Rate <= 0 {
		config.Rate = 10
	}
	if config.Burst <= 0 {
		config.Burst = 20
	}

	return &RateLimiter{
		rate:       config.Rate,
		burst:      float64(config.Burst),
		tokens:     float64(config.Burst),
		lastRefill: time.Now(),
	}
}

// Allow reports whether one more request fits the budget, consuming a
// token when it does.
func (rl *RateLimiter) Allow() bool {
	return rl.AllowN(1)
}

// AllowN consumes n tokens if that many are available.
func (rl *RateLimiter) AllowN(n int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillLocked()

	if rl.tokens >= float64(n) {
		rl.tokens -= float64(n)
		return true
	}
	return false
}

func (rl *RateLimiter) refillLocked() {
	now := time.Now()
	rl.tokens += now.Sub(rl.lastRefill).Seconds() * rl.rate
	rl.lastRefill = now

	if rl.tokens > rl.burst {
		rl.tokens = rl.burst
	}
}

// Tokens returns the currently available budget.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refillLocked()
	return rl.tokens
}

// Reset refills the bucket to burst capacity.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.tokens = rl.burst
	rl.lastRefill = time.Now()
}
