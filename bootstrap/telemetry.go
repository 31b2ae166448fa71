package bootstrap

import (
	"context"
	stderrors "errors"
	"strings"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/unbreakablehf/xnio/component"
	"github.com/unbreakablehf/xnio/config"
	"github.com/unbreakablehf/xnio/observability"
)

const meterName = "github.com/unbreakablehf/xnio/bootstrap"

// telemetry owns the OTLP trace and metric exporters. It is registered
// ahead of the provider so that it is stopped last and flushes whatever
// the shutdown recorded.
type telemetry struct {
	service string
	version string
	cfg     config.TelemetryConfig

	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

func newTelemetry(service, version string, cfg config.TelemetryConfig) *telemetry {
	return &telemetry{service: service, version: version, cfg: cfg}
}

func (t *telemetry) Name() string { return "telemetry" }

// Start installs the global tracer and meter providers.
func (t *telemetry) Start(ctx context.Context) error {
	if t.cfg.Tracing.Enabled && t.tp == nil {
		tc := observability.DefaultTracerConfig(t.service)
		tc.ServiceVersion = t.version
		tc.Environment = t.cfg.Environment
		tc.Endpoint = t.cfg.Tracing.Endpoint
		tc.Insecure = t.cfg.Tracing.Insecure
		tc.SampleRate = t.cfg.Tracing.SampleRate
		tp, err := observability.InitTracer(ctx, &tc)
		if err != nil {
			return err
		}
		t.tp = tp
	}
	if t.cfg.Metrics.Enabled && t.mp == nil {
		mc := observability.DefaultMeterConfig(t.service)
		mc.ServiceVersion = t.version
		mc.Environment = t.cfg.Environment
		mc.Endpoint = t.cfg.Metrics.Endpoint
		mc.Insecure = t.cfg.Metrics.Insecure
		mc.Interval = t.cfg.Metrics.Interval
		mp, err := observability.InitMeter(ctx, &mc)
		if err != nil {
			return err
		}
		t.mp = mp
	}
	return nil
}

// Stop flushes and shuts down both exporters.
func (t *telemetry) Stop(ctx context.Context) error {
	var errs []error
	if t.tp != nil {
		errs = append(errs, t.tp.Shutdown(ctx))
		t.tp = nil
	}
	if t.mp != nil {
		errs = append(errs, t.mp.Shutdown(ctx))
		t.mp = nil
	}
	return stderrors.Join(errs...)
}

func (t *telemetry) Health(_ context.Context) component.Health {
	if (t.cfg.Tracing.Enabled && t.tp == nil) || (t.cfg.Metrics.Enabled && t.mp == nil) {
		return component.Health{Name: t.Name(), Status: component.StatusUnhealthy, Message: "exporters not started"}
	}
	return component.Health{Name: t.Name(), Status: component.StatusHealthy}
}

// Describe implements component.Describable.
func (t *telemetry) Describe() component.Description {
	var parts []string
	if t.cfg.Tracing.Enabled {
		parts = append(parts, "traces "+t.cfg.Tracing.Endpoint)
	}
	if t.cfg.Metrics.Enabled {
		parts = append(parts, "metrics "+t.cfg.Metrics.Endpoint)
	}
	return component.Description{Name: t.Name(), Type: "otlp", Details: strings.Join(parts, ", ")}
}
