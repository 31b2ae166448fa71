package provider

import (
	"time"

	"github.com/unbreakablehf/xnio/errors"
	"github.com/unbreakablehf/xnio/logger"
)

// WithLogging returns a Middleware that logs each construction call.
// Logs: provider name, kind, duration, and success/error status.
// Unsupported kinds are logged at debug since callers are expected to try kinds they may lack.
func WithLogging(log *logger.Logger) Middleware {
	return Intercept(func(name string, kind Kind, call func() error) error {
		start := time.Now()
		err := call()
		duration := time.Since(start)

		fields := map[string]interface{}{
			logger.FieldProvider: name,
			logger.FieldKind:     kind.String(),
			logger.FieldDuration: duration.Milliseconds(),
		}

		switch {
		case err == nil:
			log.Debug("provider create ok", fields)
		case errors.IsCode(err, errors.ErrCodeOperationUnsupported):
			log.Debug("provider create unsupported", fields)
		default:
			fields[logger.FieldError] = err.Error()
			log.Error("provider create failed", fields)
		}
		return err
	})
}
