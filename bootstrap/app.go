package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/unbreakablehf/xnio/component"
	"github.com/unbreakablehf/xnio/config"
	"github.com/unbreakablehf/xnio/logger"
	"github.com/unbreakablehf/xnio/observability"
	"github.com/unbreakablehf/xnio/provider"
	"github.com/unbreakablehf/xnio/version"
)

// App represents an xnio application with uniform lifecycle management.
// The type parameter C is the config type, which must satisfy the Config interface.
// Any struct embedding config.Config automatically satisfies Config.
//
// Example:
//
//	app, err := bootstrap.NewApp("echo", &myConfig)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*MyConfig]) error {
//	    // a.Cfg is *MyConfig, fully typed
//	    return nil
//	})
//	app.Run(context.Background())
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Manager    *provider.Manager
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp creates a new application instance from a typed config.
// It applies defaults, validates the config, initializes the logger and
// registers the provider manager. When telemetry is enabled the OTLP
// exporters are registered ahead of it and the provider is traced and
// measured.
func NewApp[C Config](name string, cfg C, opts ...Option) (*App[C], error) {
	base := cfg.XnioConfig()
	base.ApplyDefaults(provider.DefaultName)
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	app := &App[C]{
		Name:            name,
		Version:         version.GetShortVersion(),
		Cfg:             cfg,
		Components:      component.NewRegistry(),
		gracefulTimeout: 15 * time.Second,
	}

	o := resolveOptions(opts)
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	// Logger: use custom if provided, otherwise init from config.
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	loc := o.locator
	if loc == nil {
		loc = provider.NewLocator(
			provider.WithSource(config.MapSource{config.ProviderKey: base.Xnio.Provider}),
			provider.WithLocatorLogger(app.Logger),
		)
	}
	mw := o.middleware
	if base.Telemetry.Enabled() {
		if err := app.Components.Register(newTelemetry(name, app.Version, base.Telemetry)); err != nil {
			return nil, err
		}
		if base.Telemetry.Tracing.Enabled {
			mw = append(mw, provider.WithTracing(name))
		}
		if base.Telemetry.Metrics.Enabled {
			metrics, err := observability.NewMetrics(observability.Meter(meterName))
			if err != nil {
				return nil, fmt.Errorf("provider metrics: %w", err)
			}
			mw = append(mw, provider.WithMetrics(metrics))
		}
	}
	app.Manager = provider.NewManager(loc, mw...)
	if err := app.Components.Register(app.Manager); err != nil {
		return nil, err
	}

	app.Summary = NewSummary(name, app.Version)
	if o.summaryOut != nil {
		app.Summary.out = o.summaryOut
	}
	return app, nil
}

// RegisterComponent adds a component to the application's registry.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// Provider returns the application's provider, creating it if no component
// has started yet.
func (a *App[C]) Provider(ctx context.Context) (provider.Provider, error) {
	return a.Manager.Get(ctx)
}

// Serve registers a server component named name. open runs on start with
// the application's provider, after kind has been checked against its
// capabilities.
func (a *App[C]) Serve(name string, kind provider.Kind, open OpenFunc) (*Server, error) {
	s := NewServer(name, kind, a.Manager, open)
	if err := a.Components.Register(s); err != nil {
		return nil, err
	}
	return s, nil
}

// OnConfigure registers a callback to run during the configure phase.
// Use this to wire handlers after the provider and servers are started.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	results := a.Components.HealthAll(ctx)
	var unhealthy []string
	for _, h := range results {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run executes the full application lifecycle for long-running services:
// Initialize, OnStart hooks, Configure, ReadyCheck, OnReady hooks, block on
// signal, OnStop hooks, graceful shutdown.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		a.abort()
		return err
	}

	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask executes a finite task with the full bootstrap lifecycle.
// Unlike Run(), it does not block on shutdown signals. It runs the task
// function and shuts down when the task completes or the context is
// canceled (e.g. via SIGINT/SIGTERM).
//
// Example:
//
//	app, _ := bootstrap.NewApp("check", &cfg)
//	app.RunTask(ctx, func(ctx context.Context) error {
//	    return check(ctx, app)
//	})
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		a.abort()
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", map[string]interface{}{
				"signal": sig.String(),
			})
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}

	return taskErr
}

// startup performs the common initialization sequence shared by Run and RunTask.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Info("Starting application", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})

	// Phase 1: Initialize, starting the provider and then every server
	if err := a.initialize(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	// Phase 2: Configure
	if err := a.configure(ctx); err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	if p, ok := a.Manager.Current(); ok {
		a.Summary.SetProvider(p.Name(), provider.Capabilities(p).String())
	}
	a.DisplaySummary()

	return nil
}

// initialize starts all registered components (Phase 1).
func (a *App[C]) initialize(ctx context.Context) error {
	a.Logger.Info("Phase 1: Starting components")

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start components: %w", err)
	}

	a.Logger.Info("Phase 1: All components started")
	return nil
}

// DisplaySummary prints the startup summary. It auto-collects servers and
// health from the component registry.
func (a *App[C]) DisplaySummary() {
	a.Summary.DisplaySummary(a.Components)
}

// configure runs registered configuration callbacks (Phase 2).
func (a *App[C]) configure(ctx context.Context) error {
	if len(a.onConfigure) == 0 {
		return nil
	}

	a.Logger.Info("Phase 2: Running configuration callbacks", map[string]interface{}{
		"count": len(a.onConfigure),
	})

	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}

	a.Logger.Info("Phase 2: Configuration complete")
	return nil
}

// WaitForSignal blocks until an OS interrupt/term signal or context cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal, graceful shutdown starting", map[string]interface{}{
			"signal": sig.String(),
		})
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown. Use when managing your own lifecycle.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

// abort stops whatever a failed startup managed to start.
func (a *App[C]) abort() {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Cleanup after failed startup", logger.ErrorFields("abort", err))
	}
}

// stop gracefully shuts down all components within the graceful timeout.
func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", map[string]interface{}{
		"timeout": a.gracefulTimeout.String(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error

	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", map[string]interface{}{
			"error": err.Error(),
		})
		shutdownErr = err
	}

	// Servers stop before the provider that owns their channels.
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", map[string]interface{}{
			"error": err.Error(),
		})
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}
