package future

import (
	"context"
	"sync"

	"github.com/unbreakablehf/xnio/errors"
)

// Status is the state of a Future.
type Status int

const (
	// StatusWaiting means the operation has not completed yet.
	StatusWaiting Status = iota
	// StatusDone means the operation completed with a value.
	StatusDone
	// StatusFailed means the operation completed with an error.
	StatusFailed
	// StatusCancelled means the operation was cancelled.
	StatusCancelled
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Future is the eventual outcome of an asynchronous operation. Terminal
// states are sticky: the first of SetResult, SetFailed or a granted Cancel
// wins and every later transition is ignored.
type Future[T any] struct {
	mu        sync.Mutex
	status    Status
	value     T
	err       error
	done      chan struct{}
	notifiers []func(*Future[T])
	onCancel  func() bool
}

// New returns a waiting Future.
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Completed returns a Future that is already done with v.
func Completed[T any](v T) *Future[T] {
	f := New[T]()
	f.SetResult(v)
	return f
}

// Failed returns a Future that has already failed with err.
func Failed[T any](err error) *Future[T] {
	f := New[T]()
	f.SetFailed(err)
	return f
}

// Status returns the current state without blocking.
func (f *Future[T]) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Done is closed once the Future reaches a terminal state.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the Future completes or ctx is done. A cancelled
// Future yields an error matching errors.ErrCancelled.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.result()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Get is Await without a deadline.
func (f *Future[T]) Get() (T, error) {
	return f.Await(context.Background())
}

func (f *Future[T]) result() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.status {
	case StatusDone:
		return f.value, nil
	case StatusCancelled:
		var zero T
		return zero, errors.Cancelled("future")
	default:
		var zero T
		return zero, f.err
	}
}

// AddNotifier registers fn to run once the Future is terminal. If it already
// is, fn runs immediately on the calling goroutine.
func (f *Future[T]) AddNotifier(fn func(*Future[T])) {
	f.mu.Lock()
	if f.status == StatusWaiting {
		f.notifiers = append(f.notifiers, fn)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	fn(f)
}

// OnCancel installs the hook Cancel consults. The hook should abort the
// in-flight operation if it can and report whether the cancellation is
// granted. Without a hook every cancellation is granted.
func (f *Future[T]) OnCancel(fn func() bool) {
	f.mu.Lock()
	f.onCancel = fn
	f.mu.Unlock()
}

// Cancel requests cancellation. It is a request, not a promise: the hook may
// refuse it, and a Future that already completed is unaffected. It returns
// the receiver for chaining.
func (f *Future[T]) Cancel() *Future[T] {
	f.mu.Lock()
	if f.status != StatusWaiting {
		f.mu.Unlock()
		return f
	}
	hook := f.onCancel
	f.mu.Unlock()

	if hook != nil && !hook() {
		return f
	}
	f.complete(StatusCancelled, *new(T), nil)
	return f
}

// SetResult completes the Future with v. It reports false if the Future was
// already terminal.
func (f *Future[T]) SetResult(v T) bool {
	return f.complete(StatusDone, v, nil)
}

// SetFailed completes the Future with err. It reports false if the Future was
// already terminal.
func (f *Future[T]) SetFailed(err error) bool {
	return f.complete(StatusFailed, *new(T), err)
}

func (f *Future[T]) complete(status Status, v T, err error) bool {
	f.mu.Lock()
	if f.status != StatusWaiting {
		f.mu.Unlock()
		return false
	}
	f.status = status
	f.value = v
	f.err = err
	notifiers := f.notifiers
	f.notifiers = nil
	f.onCancel = nil
	close(f.done)
	f.mu.Unlock()

	for _, fn := range notifiers {
		fn(f)
	}
	return true
}
