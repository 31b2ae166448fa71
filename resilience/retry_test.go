package resilience

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/unbreakablehf/xnio/errors"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialBackoff: time.Millisecond, BackoffFactor: 2.0}
}

func TestRetry(t *testing.T) {
	refused := stderrors.New("connection refused")

	tests := []struct {
		name      string
		cfg       RetryConfig
		failFirst int
		err       error
		wantCalls int
		wantErr   error
	}{
		{"first attempt", fastRetry(3), 0, refused, 1, nil},
		{"succeeds after retry", fastRetry(3), 2, refused, 3, nil},
		{"exhausts attempts", fastRetry(3), 5, refused, 3, refused},
		{"zero attempts means one", fastRetry(0), 5, refused, 1, refused},
		{"non-retryable app error", fastRetry(3), 5, errors.ProviderClosed("nio"), 1, errors.ErrProviderClosed},
		{"retryable app error", fastRetry(3), 5, errors.ConnectionFailed("127.0.0.1:1", refused), 3, refused},
		{"cancellation is final", fastRetry(3), 5, context.Canceled, 1, context.Canceled},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			result, err := Retry(context.Background(), tc.cfg, func() (string, error) {
				calls++
				if calls <= tc.failFirst {
					return "", tc.err
				}
				return "connected", nil
			})
			if calls != tc.wantCalls {
				t.Errorf("expected %d calls, got %d", tc.wantCalls, calls)
			}
			if tc.wantErr == nil {
				if err != nil || result != "connected" {
					t.Errorf("expected success, got %q, %v", result, err)
				}
				return
			}
			if !stderrors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestRetry_RespectsContext(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 10, InitialBackoff: 100 * time.Millisecond, BackoffFactor: 2.0}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	calls := 0
	_, err := Retry(ctx, cfg, func() (string, error) {
		calls++
		return "", stderrors.New("error")
	})
	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
	if calls >= 10 {
		t.Errorf("expected fewer than 10 calls, got %d", calls)
	}
}

func TestRetry_OnRetryCallback(t *testing.T) {
	var retries []int
	cfg := fastRetry(3)
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
		retries = append(retries, attempt)
	}

	_ = RetryFunc(context.Background(), cfg, func() error { return stderrors.New("error") })

	if len(retries) != 2 || retries[0] != 1 || retries[1] != 2 {
		t.Errorf("expected OnRetry for attempts [1 2], got %v", retries)
	}
}

func TestRetry_CustomRetryIf(t *testing.T) {
	permanent := stderrors.New("permanent")
	cfg := fastRetry(3)
	cfg.RetryIf = func(err error) bool { return !stderrors.Is(err, permanent) }

	calls := 0
	err := RetryFunc(context.Background(), cfg, func() error {
		calls++
		return permanent
	})
	if calls != 1 || !stderrors.Is(err, permanent) {
		t.Errorf("expected one call returning permanent, got %d calls, %v", calls, err)
	}
}

func TestBackoff(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     1 * time.Second,
		BackoffFactor:  2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1 * time.Second},
		{6, 1 * time.Second},
	}
	for _, tt := range tests {
		if got := Backoff(tt.attempt, cfg); got != tt.expected {
			t.Errorf("attempt %d: expected %v, got %v", tt.attempt, tt.expected, got)
		}
	}

	cfg.Jitter = 0.5
	for range 20 {
		got := Backoff(2, cfg)
		if got < 100*time.Millisecond || got > 300*time.Millisecond {
			t.Fatalf("jittered backoff out of range: %v", got)
		}
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	if cfg.MaxAttempts != 3 || cfg.RetryIf == nil {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
