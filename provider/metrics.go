package provider

import (
	"context"
	"time"

	"github.com/unbreakablehf/xnio/errors"
	"github.com/unbreakablehf/xnio/observability"
)

// WithMetrics returns a Middleware that records construction metrics
// using the observability.Metrics instruments.
// Records: operation count, duration histogram, and errors.
func WithMetrics(metrics *observability.Metrics) Middleware {
	return Intercept(func(name string, kind Kind, call func() error) error {
		ctx := context.Background()
		start := time.Now()
		err := call()
		duration := time.Since(start)

		status := "ok"
		switch {
		case err == nil:
		case errors.IsCode(err, errors.ErrCodeOperationUnsupported):
			status = "unsupported"
		default:
			status = "error"
			metrics.RecordError(ctx, "create", name)
		}
		metrics.RecordOperation(ctx, name, kind.String(), status, duration)
		return err
	})
}
