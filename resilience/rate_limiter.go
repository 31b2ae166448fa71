package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/unbreakablehf/xnio/errors"
)

// RateLimiterConfig configures a rate limiter.
type RateLimiterConfig struct {
	// Name identifies this rate limiter in errors and logs.
	Name string
	// Rate is the number of events allowed per second.
	Rate float64 `validate:"gte=0"`
	// Burst is the maximum burst size.
	Burst int `validate:"gte=0"`
}

// DefaultRateLimiterConfig returns sensible defaults.
func DefaultRateLimiterConfig(name string) RateLimiterConfig {
	return RateLimiterConfig{
		Name:  name,
		Rate:  100,
		Burst: 100,
	}
}

// RateLimiter is a token bucket. Servers use it to pace accepts.
type RateLimiter struct {
	config RateLimiterConfig

	mu     sync.Mutex
	tokens float64
	last   time.Time
}

// NewRateLimiter creates a new rate limiter with a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Rate <= 0 {
		config.Rate = 100
	}
	if config.Burst <= 0 {
		config.Burst = max(1, int(config.Rate))
	}
	return &RateLimiter{
		config: config,
		tokens: float64(config.Burst),
		last:   time.Now(),
	}
}

// Allow takes a token if one is available.
func (rl *RateLimiter) Allow() bool {
	return rl.reserve(false) == 0
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	wait := rl.reserve(true)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Execute runs fn if a token is available and fails otherwise.
func (rl *RateLimiter) Execute(fn func() error) error {
	if !rl.Allow() {
		return errors.TaskRejected(rl.config.Name, "rate limit exceeded")
	}
	return fn()
}

// reserve refills the bucket and takes one token. When the bucket is empty
// it either reports a positive wait without taking (commit false) or takes
// the token on credit and returns how long until it is paid back.
func (rl *RateLimiter) reserve(commit bool) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.tokens = min(float64(rl.config.Burst), rl.tokens+now.Sub(rl.last).Seconds()*rl.config.Rate)
	rl.last = now

	if rl.tokens >= 1 {
		rl.tokens--
		return 0
	}
	wait := time.Duration((1 - rl.tokens) / rl.config.Rate * float64(time.Second))
	if commit {
		rl.tokens--
	}
	return max(wait, time.Nanosecond)
}

// Tokens returns the tokens currently available.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return min(float64(rl.config.Burst), rl.tokens+time.Since(rl.last).Seconds()*rl.config.Rate)
}

// Rate returns the refill rate per second.
func (rl *RateLimiter) Rate() float64 { return rl.config.Rate }

// Burst returns the bucket size.
func (rl *RateLimiter) Burst() int { return rl.config.Burst }
