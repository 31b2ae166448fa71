package component

import (
	"context"
	"fmt"
	"sync"

	"github.com/unbreakablehf/xnio/errors"
	"github.com/unbreakablehf/xnio/logger"
)

// Lazy holds a value that is built on first use and released by Close.
// A failed build is retried on the next Get. Once closed, Get fails with
// PROVIDER_CLOSED and the value is never built again.
//
// Lazy implements Component: Start builds eagerly, Stop closes.
type Lazy[T any] struct {
	name        string
	mu          sync.Mutex
	value       T
	built       bool
	closed      bool
	lastError   error
	build       func(ctx context.Context) (T, error)
	healthCheck func(ctx context.Context, v T) error
	closer      func(v T) error
}

// NewLazy creates a lazy component named name.
func NewLazy[T any](name string, build func(context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{name: name, build: build}
}

// Name returns the component name.
func (l *Lazy[T]) Name() string {
	return l.name
}

// Get returns the value, building it first if needed.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var zero T
	if l.closed {
		return zero, errors.ProviderClosed(l.name)
	}
	if l.built {
		return l.value, nil
	}
	if l.build == nil {
		return zero, fmt.Errorf("no builder for component: %s", l.name)
	}

	logger.Debug("Initializing lazy component", map[string]interface{}{
		logger.FieldComponent: l.name,
	})
	v, err := l.build(ctx)
	if err != nil {
		l.lastError = err
		return zero, fmt.Errorf("failed to initialize %s: %w", l.name, err)
	}
	l.value, l.built, l.lastError = v, true, nil

	logger.Debug("Lazy component initialized", map[string]interface{}{
		logger.FieldComponent: l.name,
	})
	return v, nil
}

// IsInitialized reports whether the value has been built and not closed.
func (l *Lazy[T]) IsInitialized() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.built && !l.closed
}

// HealthCheck verifies the value is built and optionally runs a custom check.
func (l *Lazy[T]) HealthCheck(ctx context.Context) error {
	l.mu.Lock()
	v, built, closed := l.value, l.built, l.closed
	l.mu.Unlock()
	switch {
	case closed:
		return errors.ProviderClosed(l.name)
	case !built:
		return fmt.Errorf("component %s not initialized", l.name)
	case l.healthCheck != nil:
		return l.healthCheck(ctx, v)
	}
	return nil
}

// Close releases the value if it was built. Later calls do nothing. The
// closer runs without the lock held, so it may reenter Get, which fails
// with PROVIDER_CLOSED.
func (l *Lazy[T]) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	v, built := l.value, l.built
	var zero T
	l.value, l.built = zero, false
	l.mu.Unlock()

	if !built || l.closer == nil {
		return nil
	}
	return l.closer(v)
}

// WithHealthCheck sets a custom health check function.
func (l *Lazy[T]) WithHealthCheck(fn func(context.Context, T) error) *Lazy[T] {
	l.healthCheck = fn
	return l
}

// WithCloser sets the function that releases the built value.
func (l *Lazy[T]) WithCloser(fn func(T) error) *Lazy[T] {
	l.closer = fn
	return l
}

// Start implements Component.
func (l *Lazy[T]) Start(ctx context.Context) error {
	_, err := l.Get(ctx)
	return err
}

// Stop implements Component.
func (l *Lazy[T]) Stop(_ context.Context) error { return l.Close() }

// Health implements Component.
func (l *Lazy[T]) Health(ctx context.Context) Health {
	if err := l.HealthCheck(ctx); err != nil {
		return Health{Name: l.name, Status: StatusUnhealthy, Message: err.Error()}
	}
	return Health{Name: l.name, Status: StatusHealthy}
}
