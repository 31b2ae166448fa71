package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ConnContext holds observability state for one open channel, from the
// moment it is accepted or connected until it is closed.
type ConnContext struct {
	Provider   string
	Kind       string
	ConnID     string
	LocalAddr  string
	RemoteAddr string
	StartTime  time.Time
	Metrics    *Metrics
}

// NewConnContext creates a connection context.
// If metrics is nil, metric recording is silently skipped.
func NewConnContext(provider, kind, connID string, metrics *Metrics) *ConnContext {
	return &ConnContext{
		Provider:  provider,
		Kind:      kind,
		ConnID:    connID,
		StartTime: time.Now(),
		Metrics:   metrics,
	}
}

type connContextKey struct{}

// WithConnContext stores a ConnContext in the context.
func WithConnContext(ctx context.Context, cc *ConnContext) context.Context {
	return context.WithValue(ctx, connContextKey{}, cc)
}

// ConnContextFromContext retrieves the ConnContext from context, or nil.
func ConnContextFromContext(ctx context.Context) *ConnContext {
	if cc, ok := ctx.Value(connContextKey{}).(*ConnContext); ok {
		return cc
	}
	return nil
}

// Open starts a span for the channel and records the open metric.
func (cc *ConnContext) Open(ctx context.Context, spanName string) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, spanName)
	span.SetAttributes(
		attribute.String(AttrProviderName, cc.Provider),
		attribute.String(AttrKind, cc.Kind),
		attribute.String(AttrConnID, cc.ConnID),
	)
	if cc.LocalAddr != "" {
		span.SetAttributes(attribute.String(AttrLocalAddress, cc.LocalAddr))
	}
	if cc.RemoteAddr != "" {
		span.SetAttributes(attribute.String(AttrPeerAddress, cc.RemoteAddr))
	}

	if cc.Metrics != nil {
		cc.Metrics.RecordConnectionOpen(ctx, cc.Provider, cc.Kind)
	}
	return WithConnContext(ctx, cc), span
}

// Close ends the span and records the channel lifetime.
func (cc *ConnContext) Close(ctx context.Context, span trace.Span, err error) {
	lifetime := time.Since(cc.StartTime)

	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}

	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, lifetime.Milliseconds()),
	)
	span.End()

	if cc.Metrics != nil {
		cc.Metrics.RecordConnectionClose(ctx, cc.Provider, cc.Kind, lifetime)
		if err != nil {
			cc.Metrics.RecordError(ctx, "connection", cc.Kind)
		}
	}
}

// Lifetime returns the elapsed time since the channel opened.
func (cc *ConnContext) Lifetime() time.Duration {
	return time.Since(cc.StartTime)
}
