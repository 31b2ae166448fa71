package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/unbreakablehf/xnio/errors"
)

func TestRateLimiter_Burst(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Name: "accept", Rate: 1, Burst: 3})

	for i := range 3 {
		if !rl.Allow() {
			t.Fatalf("expected token %d to be allowed", i)
		}
	}
	if rl.Allow() {
		t.Error("expected bucket to be empty")
	}
	if err := rl.Execute(func() error { return nil }); !errors.IsCode(err, errors.ErrCodeTaskRejected) {
		t.Errorf("expected TASK_REJECTED, got %v", err)
	}
}

func TestRateLimiter_Wait(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 100, Burst: 1})
	rl.Allow()

	start := time.Now()
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Errorf("expected to wait for a refill, waited %v", elapsed)
	}
}

func TestRateLimiter_WaitCancelled(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.1, Burst: 1})
	rl.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); err != context.DeadlineExceeded {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

func TestRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{})
	if rl.Rate() != 100 || rl.Burst() != 100 {
		t.Errorf("unexpected defaults: rate=%v burst=%d", rl.Rate(), rl.Burst())
	}
	if tokens := rl.Tokens(); tokens != 100 {
		t.Errorf("expected full bucket, got %v", tokens)
	}
	if cfg := DefaultRateLimiterConfig("accept"); cfg.Name != "accept" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}
