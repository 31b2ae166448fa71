package logger

import "time"

// Field keys shared by every package.
const (
	FieldService   = "service"
	FieldComponent = "component"
	FieldProvider  = "provider"
	FieldKind      = "kind"
	FieldConnID    = "conn_id"
	FieldAddress   = "address"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
)

// Fields builds a field map from alternating key-value pairs. Non-string
// keys and a trailing key without a value are dropped.
//
//	log.Info("bound", logger.Fields(logger.FieldAddress, addr))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields tags a failed operation.
func ErrorFields(op string, err error) map[string]any {
	return Fields(FieldOperation, op, FieldError, err.Error())
}

// DurationFields tags a timed operation with its length in milliseconds.
func DurationFields(op string, d time.Duration) map[string]any {
	return Fields(FieldOperation, op, FieldDuration, d.Milliseconds())
}
