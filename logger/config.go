package logger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// Config contains logging configuration.
type Config struct {
	Level     string `yaml:"level" mapstructure:"level"`
	Format    string `yaml:"format" mapstructure:"format"`
	Output    string `yaml:"output" mapstructure:"output"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`
}

var formats = []string{FormatJSON, FormatConsole}

// ApplyDefaults fills in level, format and output. Timestamps are always on.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = FormatConsole
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
	c.Timestamp = true
}

// Validate checks the level against zerolog and the format against the
// writers New knows.
func (c *Config) Validate() error {
	if _, err := c.zerologLevel(); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if !slices.Contains(formats, strings.ToLower(c.Format)) {
		return fmt.Errorf("logging.format must be one of %v (got: %s)", formats, c.Format)
	}
	return nil
}

func (c *Config) zerologLevel() (zerolog.Level, error) {
	if c.Level == "" {
		return zerolog.NoLevel, fmt.Errorf("level is empty")
	}
	return zerolog.ParseLevel(strings.ToLower(c.Level))
}
