package nio

import (
	"time"

	"github.com/unbreakablehf/xnio/config"
	"github.com/unbreakablehf/xnio/executor"
	"github.com/unbreakablehf/xnio/resilience"
	"github.com/unbreakablehf/xnio/validation"
)

// Config tunes the provider. It is read from the "nio" section of the xnio
// configuration, so every field can also be set through the environment,
// e.g. NIO_WORKERS or NIO_MAX_CONNECTIONS.
//
//	nio:
//	  workers: 64
//	  connect_attempts: 3
//	  receive_buffer: 64KB
type Config struct {
	// Workers is the size of the default executor pool.
	Workers int `yaml:"workers" mapstructure:"workers" validate:"gte=0"`
	// QueueSize bounds tasks waiting for a worker. 0 means unbounded.
	QueueSize int `yaml:"queue_size" mapstructure:"queue_size" validate:"gte=0"`

	// ConnectAttempts is the default number of dial attempts per connect.
	ConnectAttempts int `yaml:"connect_attempts" mapstructure:"connect_attempts" validate:"gte=1"`
	// ConnectBackoff is the delay before the first connect retry.
	ConnectBackoff time.Duration `yaml:"connect_backoff" mapstructure:"connect_backoff" validate:"gte=0"`
	// ConnectTimeout bounds a single dial attempt. 0 means no limit.
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout" validate:"gte=0"`

	// ReceiveBuffer and SendBuffer are default socket buffer sizes such as
	// "64KB". Empty keeps the operating system default.
	ReceiveBuffer string `yaml:"receive_buffer" mapstructure:"receive_buffer"`
	SendBuffer    string `yaml:"send_buffer" mapstructure:"send_buffer"`

	// MaxConnections caps open connections per TCP server. 0 means no cap.
	MaxConnections int `yaml:"max_connections" mapstructure:"max_connections" validate:"gte=0"`
	// AcceptRate limits accepted connections per second per TCP server.
	// 0 means no limit.
	AcceptRate float64 `yaml:"accept_rate" mapstructure:"accept_rate" validate:"gte=0"`
	// AcceptBurst is the number of accepts allowed above AcceptRate.
	AcceptBurst int `yaml:"accept_burst" mapstructure:"accept_burst" validate:"gte=0"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Workers:         64,
		QueueSize:       0,
		ConnectAttempts: 1,
		ConnectBackoff:  100 * time.Millisecond,
	}
}

// ApplyDefaults fills zero values from DefaultConfig.
func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.Workers == 0 {
		c.Workers = def.Workers
	}
	if c.ConnectAttempts == 0 {
		c.ConnectAttempts = def.ConnectAttempts
	}
	if c.ConnectBackoff == 0 {
		c.ConnectBackoff = def.ConnectBackoff
	}
	if c.AcceptRate > 0 && c.AcceptBurst == 0 {
		c.AcceptBurst = int(c.AcceptRate)
		if c.AcceptBurst < 1 {
			c.AcceptBurst = 1
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// LoadConfig reads the "nio" section of the named configuration (see
// config.LoadConfig), applies defaults and validates the result.
func LoadConfig(name string, opts ...config.LoaderOption) (Config, error) {
	var root struct {
		Nio Config `mapstructure:"nio"`
	}
	if err := config.LoadConfig(name, &root, opts...); err != nil {
		return Config{}, err
	}
	cfg := root.Nio
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) pool() executor.PoolConfig {
	return executor.PoolConfig{Name: "nio", Workers: c.Workers, QueueSize: c.QueueSize}
}

func (c Config) retry(attempts int) resilience.RetryConfig {
	rc := resilience.DefaultRetryConfig()
	rc.MaxAttempts = attempts
	rc.InitialBackoff = c.ConnectBackoff
	return rc
}

func (c Config) receiveBuffer() int { return int(config.ParseSize(c.ReceiveBuffer, 0)) }

func (c Config) sendBuffer() int { return int(config.ParseSize(c.SendBuffer, 0)) }
