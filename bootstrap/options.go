package bootstrap

import (
	"io"
	"time"

	"github.com/unbreakablehf/xnio/logger"
	"github.com/unbreakablehf/xnio/provider"
)

// Option configures the App during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

// appOptions collects all option values before applying to App.
type appOptions struct {
	logger          *logger.Logger
	locator         *provider.Locator
	middleware      []provider.Middleware
	gracefulTimeout *time.Duration
	summaryOut      io.Writer
}

// resolveOptions applies all options and returns the collected values.
func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is auto-initialized from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithLocator replaces the locator built from the config's xnio.provider.
func WithLocator(loc *provider.Locator) Option {
	return func(o *appOptions) {
		o.locator = loc
	}
}

// WithMiddleware wraps the application's provider, outermost first.
func WithMiddleware(mw ...provider.Middleware) Option {
	return func(o *appOptions) {
		o.middleware = append(o.middleware, mw...)
	}
}

// WithSummaryOutput redirects the startup summary. Defaults to stdout.
func WithSummaryOutput(w io.Writer) Option {
	return func(o *appOptions) {
		o.summaryOut = w
	}
}
