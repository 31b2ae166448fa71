// Package validation checks configuration and factory inputs.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Both return an AppError
// with code INVALID_INPUT whose "fields" detail lists every failure.
//
// # Struct Tag Validation
//
//	type Config struct {
//	    Workers int `mapstructure:"workers" validate:"gte=0"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	err := validation.New().
//	    NotNil("handler", hf).
//	    Addr("bind", addr, "tcp", "tcp4", "tcp6").
//	    Validate()
package validation
