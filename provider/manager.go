package provider

import (
	"context"
	"sync"

	"github.com/unbreakablehf/xnio/component"
	"github.com/unbreakablehf/xnio/logger"
	"github.com/unbreakablehf/xnio/observability"
)

// Manager caches the provider produced by a Locator so an application can
// share one instance. The first successful Get creates it; failures are not
// cached. Close releases the cached provider and lets a later Get create a
// fresh one.
//
// Manager implements component.Component so it can be started and stopped
// with the rest of an application's infrastructure.
type Manager struct {
	mu         sync.Mutex
	locator    *Locator
	middleware []Middleware
	current    Provider
	log        *logger.Logger
}

// NewManager creates a Manager that resolves through loc and wraps the
// created provider with middleware, outermost first.
func NewManager(loc *Locator, middleware ...Middleware) *Manager {
	if loc == nil {
		loc = NewLocator()
	}
	return &Manager{
		locator:    loc,
		middleware: middleware,
		log:        logger.Get("provider"),
	}
}

// Get returns the cached provider, creating it on first use.
func (m *Manager) Get(ctx context.Context) (Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		return m.current, nil
	}

	p, err := m.locator.Create(ctx)
	if err != nil {
		return nil, err
	}
	if len(m.middleware) > 0 {
		p = Chain(m.middleware...)(p)
	}
	m.current = p
	m.log.Info("provider initialized", map[string]interface{}{
		logger.FieldProvider: p.Name(),
		"capabilities":       Capabilities(p).String(),
	})
	return p, nil
}

// Current returns the cached provider without creating one.
func (m *Manager) Current() (Provider, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.current != nil
}

// Close closes and forgets the cached provider. It is safe to call when
// nothing has been created.
func (m *Manager) Close() error {
	m.mu.Lock()
	p := m.current
	m.current = nil
	m.mu.Unlock()
	if p == nil {
		return nil
	}
	if err := p.Close(); err != nil {
		m.log.Error("provider close failed", logger.ErrorFields("close", err))
		return err
	}
	m.log.Info("provider closed", map[string]interface{}{logger.FieldProvider: p.Name()})
	return nil
}

// Name implements component.Component.
func (m *Manager) Name() string { return "xnio-provider" }

// Start implements component.Component by creating the provider eagerly.
func (m *Manager) Start(ctx context.Context) error {
	_, err := m.Get(ctx)
	return err
}

// Stop implements component.Component.
func (m *Manager) Stop(_ context.Context) error { return m.Close() }

// Health implements component.Component.
func (m *Manager) Health(ctx context.Context) component.Health {
	h := m.CheckHealth(ctx)
	status := component.StatusHealthy
	if h.Status != observability.HealthStatusUp {
		status = component.StatusUnhealthy
	}
	return component.Health{Name: m.Name(), Status: status, Message: h.Message}
}

// Describe implements component.Describable.
func (m *Manager) Describe() component.Description {
	return component.Description{
		Name:    "I/O Provider",
		Type:    "provider",
		Details: m.locator.Resolve(),
	}
}

// CheckHealth implements observability.HealthChecker.
func (m *Manager) CheckHealth(_ context.Context) observability.Health {
	p, ok := m.Current()
	if !ok {
		return observability.Health{
			Name:    m.Name(),
			Status:  observability.HealthStatusDown,
			Message: "provider not started",
			Details: map[string]string{"provider": m.locator.Resolve()},
		}
	}
	return observability.Health{
		Name:   m.Name(),
		Status: observability.HealthStatusUp,
		Details: map[string]string{
			"provider":     p.Name(),
			"capabilities": Capabilities(p).String(),
		},
	}
}
