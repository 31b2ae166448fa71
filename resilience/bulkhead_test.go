package resilience

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/unbreakablehf/xnio/errors"
)

func TestBulkhead_AcquireRelease(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "conns", MaxConcurrent: 2})

	r1, err := b.Acquire(context.Background())
	if err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	r2, err := b.Acquire(context.Background())
	if err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	if b.InUse() != 2 || b.Available() != 0 {
		t.Errorf("expected 2 in use, got in=%d avail=%d", b.InUse(), b.Available())
	}

	if _, err := b.Acquire(context.Background()); !errors.IsCode(err, errors.ErrCodeTaskRejected) {
		t.Errorf("expected TASK_REJECTED when full, got %v", err)
	}

	r1()
	r2()
	if b.InUse() != 0 {
		t.Errorf("expected all slots released, got %d in use", b.InUse())
	}
}

func TestBulkhead_WaitTimeout(t *testing.T) {
	rejected := 0
	b := NewBulkhead(BulkheadConfig{
		Name:          "conns",
		MaxConcurrent: 1,
		MaxWait:       10 * time.Millisecond,
		OnReject:      func(string) { rejected++ },
	})
	release, _ := b.Acquire(context.Background())
	defer release()

	if _, err := b.Acquire(context.Background()); !errors.IsCode(err, errors.ErrCodeTimeout) {
		t.Errorf("expected TIMEOUT, got %v", err)
	}
	if rejected != 1 {
		t.Errorf("expected OnReject once, got %d", rejected)
	}
}

func TestBulkhead_WaitForSlot(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Second})
	release, _ := b.Acquire(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		release()
	}()

	if err := b.Execute(context.Background(), func() error { return nil }); err != nil {
		t.Errorf("expected to get the freed slot, got %v", err)
	}
}

func TestBulkhead_ConcurrencyCap(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 3, MaxWait: time.Second})

	var mu sync.Mutex
	current, peak := 0, 0
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Execute(context.Background(), func() error {
				mu.Lock()
				current++
				peak = max(peak, current)
				mu.Unlock()
				time.Sleep(5 * time.Millisecond)
				mu.Lock()
				current--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if peak > 3 {
		t.Errorf("expected at most 3 concurrent, saw %d", peak)
	}
}

func TestBulkhead_Defaults(t *testing.T) {
	if got := NewBulkhead(BulkheadConfig{}).MaxConcurrent(); got != 10 {
		t.Errorf("expected default of 10, got %d", got)
	}
	if cfg := DefaultBulkheadConfig("x"); cfg.Name != "x" || cfg.MaxConcurrent != 10 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
