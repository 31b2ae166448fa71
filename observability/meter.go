package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/unbreakablehf/xnio/logger"
	"github.com/unbreakablehf/xnio/version"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.GetVersionInfo().Version,
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds OpenTelemetry metric instruments for provider observability.
type Metrics struct {
	connectionTotal    metric.Int64Counter
	connectionActive   metric.Int64UpDownCounter
	connectionDuration metric.Float64Histogram
	operationTotal     metric.Int64Counter
	operationDuration  metric.Float64Histogram
	errorTotal         metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	connectionTotal, err := meter.Int64Counter("xnio.connection.total",
		metric.WithDescription("Total number of channels opened"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating xnio.connection.total counter: %w", err)
	}

	connectionActive, err := meter.Int64UpDownCounter("xnio.connection.active",
		metric.WithDescription("Number of currently open channels"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating xnio.connection.active gauge: %w", err)
	}

	connectionDuration, err := meter.Float64Histogram("xnio.connection.duration",
		metric.WithDescription("Lifetime of channels in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating xnio.connection.duration histogram: %w", err)
	}

	operationTotal, err := meter.Int64Counter("xnio.operation.total",
		metric.WithDescription("Total number of provider operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating xnio.operation.total counter: %w", err)
	}

	operationDuration, err := meter.Float64Histogram("xnio.operation.duration",
		metric.WithDescription("Duration of provider operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating xnio.operation.duration histogram: %w", err)
	}

	errorTotal, err := meter.Int64Counter("xnio.error.total",
		metric.WithDescription("Total errors by type and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating xnio.error.total counter: %w", err)
	}

	return &Metrics{
		connectionTotal:    connectionTotal,
		connectionActive:   connectionActive,
		connectionDuration: connectionDuration,
		operationTotal:     operationTotal,
		operationDuration:  operationDuration,
		errorTotal:         errorTotal,
	}, nil
}

// RecordConnectionOpen counts a newly opened channel of the given kind.
func (m *Metrics) RecordConnectionOpen(ctx context.Context, provider, kind string) {
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("kind", kind),
	)
	m.connectionTotal.Add(ctx, 1, attrs)
	m.connectionActive.Add(ctx, 1, attrs)
}

// RecordConnectionClose records a closed channel and how long it was open.
func (m *Metrics) RecordConnectionClose(ctx context.Context, provider, kind string, lifetime time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("kind", kind),
	)
	m.connectionActive.Add(ctx, -1, attrs)
	m.connectionDuration.Record(ctx, lifetime.Seconds(), attrs)
}

// RecordOperation records an operation execution.
func (m *Metrics) RecordOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	m.operationTotal.Add(ctx, 1, attrs)
	m.operationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
	))
}

// RecordError records an error by type and component.
func (m *Metrics) RecordError(ctx context.Context, errType, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", errType),
		attribute.String("component", component),
	))
}
