package config

import (
	"fmt"
	"time"
)

// TelemetryConfig selects the OpenTelemetry exporters an application
// starts. Both are off unless enabled.
//
//	telemetry:
//	  environment: staging
//	  tracing:
//	    enabled: true
//	    endpoint: otel-collector:4318
//	  metrics:
//	    enabled: true
//	    interval: 30s
type TelemetryConfig struct {
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Tracing     TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics     MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// TracingConfig configures the OTLP HTTP trace exporter.
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure bool   `yaml:"insecure" mapstructure:"insecure"`
	// SampleRate is the fraction of traces kept. 0 means the default of 1.
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig configures the OTLP HTTP metric exporter.
type MetricsConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure bool          `yaml:"insecure" mapstructure:"insecure"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// Enabled reports whether any exporter is on.
func (c *TelemetryConfig) Enabled() bool {
	return c.Tracing.Enabled || c.Metrics.Enabled
}

// ApplyDefaults applies default values to the telemetry configuration.
func (c *TelemetryConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = "localhost:4318"
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = 1
	}
	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = "localhost:4318"
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = 15 * time.Second
	}
}

// Validate validates the telemetry configuration.
func (c *TelemetryConfig) Validate() error {
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("telemetry.tracing.sample_rate must be between 0 and 1 (got: %g)", c.Tracing.SampleRate)
	}
	if c.Metrics.Interval < 0 {
		return fmt.Errorf("telemetry.metrics.interval must not be negative (got: %s)", c.Metrics.Interval)
	}
	return nil
}
