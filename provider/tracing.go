package provider

import (
	"context"

	"github.com/unbreakablehf/xnio/observability"
)

// WithTracing returns a Middleware that creates an OpenTelemetry span
// around each construction call. The span name is
// "{serviceName}.{kind}".
func WithTracing(serviceName string) Middleware {
	return Intercept(func(name string, kind Kind, call func() error) error {
		ctx, span := observability.StartSpan(context.Background(), serviceName+"."+kind.String())
		defer span.End()

		observability.SetSpanAttribute(ctx, observability.AttrServiceName, serviceName)
		observability.SetSpanAttribute(ctx, observability.AttrOperationName, kind.String())
		observability.SetSpanAttribute(ctx, observability.AttrProviderName, name)

		err := call()
		if err != nil {
			observability.SetSpanError(ctx, err)
		}
		return err
	})
}
