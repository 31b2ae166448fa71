package bootstrap

import (
	"github.com/unbreakablehf/xnio/config"
)

// Config is the interface constraint for application configuration types.
// Any struct that embeds config.Config (value embedding) automatically
// satisfies this interface via the promoted XnioConfig method.
//
// Example:
//
//	type EchoConfig struct {
//	    config.Config `yaml:",inline" mapstructure:",squash"`
//	    Listen string `yaml:"listen" mapstructure:"listen"`
//	}
//
//	app, err := bootstrap.NewApp("echo", &cfg)
type Config interface {
	XnioConfig() *config.Config
}
