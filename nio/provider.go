package nio

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/unbreakablehf/xnio/component"
	"github.com/unbreakablehf/xnio/errors"
	"github.com/unbreakablehf/xnio/executor"
	"github.com/unbreakablehf/xnio/logger"
	"github.com/unbreakablehf/xnio/observability"
	"github.com/unbreakablehf/xnio/provider"
	"github.com/unbreakablehf/xnio/version"
)

// Name is the provider name reported by Provider.Name.
const Name = "nio"

// meterName scopes the channel instruments on the global meter provider.
const meterName = "github.com/unbreakablehf/xnio/nio"

func init() {
	provider.Register(provider.Define[*Provider](provider.DefaultName,
		provider.WithEntryPoint(func() (provider.Provider, error) {
			cfg, err := LoadConfig("xnio")
			if err != nil {
				return nil, err
			}
			opts := []Option{WithConfig(cfg)}
			if m, err := observability.NewMetrics(observability.Meter(meterName)); err == nil {
				opts = append(opts, WithMetrics(m))
			} else {
				logger.Get("nio").Warn("channel metrics disabled", logger.ErrorFields("metrics", err))
			}
			p, err := New(opts...)
			if err != nil {
				return nil, err
			}
			return p, nil
		}),
	))
}

// Provider implements every transport on top of the net package. Each
// channel is served by its own goroutines and the runtime network poller;
// handlers run on the caller's executor or on a shared worker pool that is
// started on first use.
type Provider struct {
	provider.Unsupported

	cfg       Config
	log       *logger.Logger
	metrics   *observability.Metrics
	pool      *component.Lazy[*executor.Pool]
	resources *closerSet

	closeOnce sync.Once
	closeErr  error
}

// Option configures a Provider.
type Option func(*Provider)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(p *Provider) { p.cfg = cfg }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(p *Provider) { p.log = l }
}

// WithMetrics records channel metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Provider) { p.metrics = m }
}

// New creates a provider. The default executor is not started until a
// channel needs it.
func New(opts ...Option) (*Provider, error) {
	p := &Provider{
		cfg:       DefaultConfig(),
		log:       logger.Get("nio"),
		resources: newCloserSet(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.cfg.ApplyDefaults()
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}

	p.pool = component.NewLazy("nio-executor", func(context.Context) (*executor.Pool, error) {
		return executor.NewPool(p.cfg.pool()), nil
	}).WithCloser(func(pool *executor.Pool) error {
		pool.Shutdown()
		return nil
	})

	p.log.Info("provider created", p.describe())
	return p, nil
}

// Name implements provider.Provider.
func (p *Provider) Name() string { return Name }

// Version identifies the provider build, e.g. "nio/1.2.0".
func (p *Provider) Version() string { return version.Identify(Name) }

// Capabilities implements provider.CapabilityReporter.
func (p *Provider) Capabilities() provider.KindSet {
	return provider.NewKindSet(provider.AllKinds...)
}

// Config returns the effective configuration.
func (p *Provider) Config() Config { return p.cfg }

// Executor returns the default executor, starting it if needed.
func (p *Provider) Executor() (executor.Executor, error) {
	return p.pool.Get(context.Background())
}

// Awaken schedules target.Wake on the default executor. Nothing happens
// once the provider is closed.
func (p *Provider) Awaken(target provider.Wakeable) {
	if target == nil || p.closed() {
		return
	}
	exec, err := p.Executor()
	if err != nil {
		return
	}
	if err := exec.Execute(target.Wake); err != nil {
		p.log.Debug("wake-up dropped", logger.ErrorFields("awaken", err))
	}
}

// Close closes every server, connector, acceptor and channel this provider
// created and then shuts the default executor down. The executor refuses
// new tasks at once and finishes the queued ones in the background, so a
// handler may call Close. Later calls return the result of the first.
func (p *Provider) Close() error {
	p.closeOnce.Do(func() {
		err := p.resources.closeAll()
		p.closeErr = stderrors.Join(err, p.pool.Close())
		if p.closeErr != nil {
			p.log.Warn("provider closed with errors", logger.ErrorFields("close", p.closeErr))
			return
		}
		p.log.Info("provider closed")
	})
	return p.closeErr
}

func (p *Provider) closed() bool { return p.resources.isClosed() }

func (p *Provider) checkOpen() error {
	if p.closed() {
		return errors.ProviderClosed(p.Name())
	}
	return nil
}

// executor resolves the executor for a new resource, substituting the
// default for nil.
func (p *Provider) executor(exec executor.Executor) (executor.Executor, error) {
	if exec != nil {
		return exec, nil
	}
	pool, err := p.pool.Get(context.Background())
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeProviderClosed) {
			return nil, errors.ProviderClosed(p.Name())
		}
		return nil, err
	}
	return pool, nil
}

func (p *Provider) describe() map[string]interface{} {
	fields := version.GetVersionInfo().Fields()
	fields[logger.FieldProvider] = p.Name()
	fields["workers"] = p.cfg.Workers
	return fields
}

var (
	_ provider.Provider           = (*Provider)(nil)
	_ provider.CapabilityReporter = (*Provider)(nil)
)
