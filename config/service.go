package config

import (
	"fmt"

	"github.com/unbreakablehf/xnio/logger"
)

// Config is the root configuration consumed by applications embedding xnio.
//
//	xnio:
//	  provider: github.com/unbreakablehf/xnio/nio.Provider
//	logging:
//	  level: debug
//	telemetry:
//	  tracing:
//	    enabled: true
type Config struct {
	Xnio      ProviderConfig  `yaml:"xnio" mapstructure:"xnio"`
	Logging   logger.Config   `yaml:"logging" mapstructure:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// ProviderConfig selects the provider implementation.
type ProviderConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
}

// ApplyDefaults applies default values to the configuration.
func (c *Config) ApplyDefaults(defaultProvider string) {
	if c.Xnio.Provider == "" {
		c.Xnio.Provider = defaultProvider
	}
	c.Logging.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Xnio.Provider == "" {
		return fmt.Errorf("xnio.provider is required")
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("config.telemetry: %w", err)
	}
	return nil
}

// XnioConfig returns c. Application configs that embed Config by value
// inherit it.
func (c *Config) XnioConfig() *Config { return c }
