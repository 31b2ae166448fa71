package future

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/unbreakablehf/xnio/errors"
)

func TestFutureSetResult(t *testing.T) {
	f := New[int]()
	if f.Status() != StatusWaiting {
		t.Fatalf("expected waiting, got %s", f.Status())
	}
	if !f.SetResult(42) {
		t.Fatal("expected first SetResult to win")
	}
	v, err := f.Get()
	if err != nil || v != 42 {
		t.Errorf("expected 42, got %d (err=%v)", v, err)
	}
}

func TestFutureTerminalStatesAreSticky(t *testing.T) {
	tests := []struct {
		name   string
		first  func(f *Future[int])
		status Status
	}{
		{"done", func(f *Future[int]) { f.SetResult(1) }, StatusDone},
		{"failed", func(f *Future[int]) { f.SetFailed(stderrors.New("x")) }, StatusFailed},
		{"cancelled", func(f *Future[int]) { f.Cancel() }, StatusCancelled},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := New[int]()
			tc.first(f)
			if f.SetResult(2) {
				t.Error("SetResult after terminal state should be ignored")
			}
			if f.SetFailed(stderrors.New("late")) {
				t.Error("SetFailed after terminal state should be ignored")
			}
			f.Cancel()
			if f.Status() != tc.status {
				t.Errorf("expected %s, got %s", tc.status, f.Status())
			}
		})
	}
}

func TestFutureCancelledNeverSucceeds(t *testing.T) {
	f := New[string]()
	f.Cancel()
	f.SetResult("late")

	_, err := f.Get()
	if !stderrors.Is(err, errors.ErrCancelled) {
		t.Errorf("expected CANCELLED, got %v", err)
	}
}

func TestFutureCancelRefused(t *testing.T) {
	f := New[int]()
	f.OnCancel(func() bool { return false })
	f.Cancel()
	if f.Status() != StatusWaiting {
		t.Fatalf("expected refused cancel to leave future waiting, got %s", f.Status())
	}
	f.SetResult(7)
	if v, _ := f.Get(); v != 7 {
		t.Errorf("expected 7, got %d", v)
	}
}

func TestFutureCancelHookRuns(t *testing.T) {
	f := New[int]()
	aborted := false
	f.OnCancel(func() bool { aborted = true; return true })
	f.Cancel()
	if !aborted {
		t.Error("expected cancel hook to run")
	}
	if f.Status() != StatusCancelled {
		t.Errorf("expected cancelled, got %s", f.Status())
	}
}

func TestFutureFailed(t *testing.T) {
	cause := stderrors.New("refused")
	f := Failed[int](cause)
	_, err := f.Get()
	if err != cause {
		t.Errorf("expected original error, got %v", err)
	}
}

func TestFutureAwaitContext(t *testing.T) {
	f := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if f.Status() != StatusWaiting {
		t.Error("an expired wait must not change the future")
	}
}

func TestFutureNotifiers(t *testing.T) {
	f := New[int]()
	var mu sync.Mutex
	calls := 0
	f.AddNotifier(func(got *Future[int]) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	f.SetResult(1)
	f.SetResult(2)

	late := false
	f.AddNotifier(func(*Future[int]) { late = true })

	if calls != 1 {
		t.Errorf("expected notifier to run once, got %d", calls)
	}
	if !late {
		t.Error("expected notifier added after completion to run immediately")
	}
}

func TestFutureConcurrentWaiters(t *testing.T) {
	f := New[int]()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := f.Get(); err != nil || v != 5 {
				t.Errorf("waiter got %d, %v", v, err)
			}
		}()
	}
	f.SetResult(5)
	wg.Wait()
}

func TestCompleted(t *testing.T) {
	f := Completed("ok")
	select {
	case <-f.Done():
	default:
		t.Fatal("expected Done to be closed")
	}
	if f.Status().String() != "done" {
		t.Errorf("unexpected status %s", f.Status())
	}
}
