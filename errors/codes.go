package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Provider acquisition errors. All of them are surfaced through the locator
// and match ErrProviderAcquisition.
const (
	// ErrCodeProviderNotFound indicates the configured provider name is not known to any loader.
	ErrCodeProviderNotFound ErrorCode = "PROVIDER_NOT_FOUND"
	// ErrCodeProviderTypeMismatch indicates the resolved class does not implement the provider contract.
	ErrCodeProviderTypeMismatch ErrorCode = "PROVIDER_TYPE_MISMATCH"
	// ErrCodeProviderEntryPointMissing indicates there is no visible static zero-argument Create entry point.
	ErrCodeProviderEntryPointMissing ErrorCode = "PROVIDER_ENTRY_POINT_MISSING"
	// ErrCodeProviderInitFailed indicates the provider failed while initializing.
	ErrCodeProviderInitFailed ErrorCode = "PROVIDER_INIT_FAILED"
)

// Capability and lifecycle errors
const (
	// ErrCodeOperationUnsupported indicates the provider does not implement a transport kind.
	ErrCodeOperationUnsupported ErrorCode = "OPERATION_UNSUPPORTED"
	// ErrCodeProviderClosed indicates the provider was already closed.
	ErrCodeProviderClosed ErrorCode = "PROVIDER_CLOSED"
	// ErrCodeFactoryAlreadyCreated indicates a configurable factory was already materialized.
	ErrCodeFactoryAlreadyCreated ErrorCode = "FACTORY_ALREADY_CREATED"
	// ErrCodeUnknownOption indicates a configurable factory does not accept an option.
	ErrCodeUnknownOption ErrorCode = "UNKNOWN_OPTION"
)

// Operation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeCancelled indicates an asynchronous operation was cancelled.
	ErrCodeCancelled ErrorCode = "CANCELLED"
	// ErrCodeConnectionFailed indicates a failed connect, bind or accept.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTaskRejected indicates an executor refused a task.
	ErrCodeTaskRejected ErrorCode = "TASK_REJECTED"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeConnectionFailed: true,
	ErrCodeTimeout:          true,
	ErrCodeInternal:         false,
}

var acquisitionCodes = map[ErrorCode]bool{
	ErrCodeProviderNotFound:          true,
	ErrCodeProviderTypeMismatch:      true,
	ErrCodeProviderEntryPointMissing: true,
	ErrCodeProviderInitFailed:        true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// IsAcquisitionCode reports whether code belongs to the provider acquisition family.
func IsAcquisitionCode(code ErrorCode) bool {
	return acquisitionCodes[code]
}
