package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same code. The
// ErrProviderAcquisition sentinel matches every acquisition code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if t.Code == codeAcquisition {
		return IsAcquisitionCode(e.Code)
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

const codeAcquisition ErrorCode = "PROVIDER_ACQUISITION_FAILED"

// Sentinels for errors.Is. They compare by code only.
var (
	ErrProviderAcquisition   = &AppError{Code: codeAcquisition, Message: "provider acquisition failed"}
	ErrProviderNotFound      = &AppError{Code: ErrCodeProviderNotFound}
	ErrProviderTypeMismatch  = &AppError{Code: ErrCodeProviderTypeMismatch}
	ErrEntryPointMissing     = &AppError{Code: ErrCodeProviderEntryPointMissing}
	ErrProviderInitFailed    = &AppError{Code: ErrCodeProviderInitFailed}
	ErrOperationUnsupported  = &AppError{Code: ErrCodeOperationUnsupported}
	ErrProviderClosed        = &AppError{Code: ErrCodeProviderClosed}
	ErrFactoryAlreadyCreated = &AppError{Code: ErrCodeFactoryAlreadyCreated}
	ErrUnknownOption         = &AppError{Code: ErrCodeUnknownOption}
	ErrCancelled             = &AppError{Code: ErrCodeCancelled}
	ErrTaskRejected          = &AppError{Code: ErrCodeTaskRejected}
)

// --- Provider acquisition ---

// ProviderNotFound creates an error for a provider name no loader knows about.
func ProviderNotFound(name string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeProviderNotFound, Message: fmt.Sprintf("The provider class %q was not found", name),
		Details: map[string]any{"provider": name}, Cause: cause,
	}
}

// ProviderTypeMismatch creates an error for a class that is not really a provider.
func ProviderTypeMismatch(name string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeProviderTypeMismatch, Message: fmt.Sprintf("The provider class %q is not really a provider", name),
		Details: map[string]any{"provider": name}, Cause: cause,
	}
}

// EntryPointMissing creates an error for a class without a usable Create entry point.
func EntryPointMissing(name, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeProviderEntryPointMissing,
		Message: fmt.Sprintf("The provider class %q does not have an accessible no-argument static Create entry point", name),
		Details: map[string]any{"provider": name, "reason": reason},
	}
}

// ProviderInitFailed creates an error for a provider that failed to initialize.
func ProviderInitFailed(name string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeProviderInitFailed, Message: fmt.Sprintf("The provider class %q was not instantiatable due to an error in initialization", name),
		Details: map[string]any{"provider": name}, Cause: cause,
	}
}

// --- Capability and lifecycle ---

// OperationUnsupported creates an error for a transport kind the provider does not implement.
// The kind label is kept in Details["kind"].
func OperationUnsupported(kind string) *AppError {
	return &AppError{
		Code: ErrCodeOperationUnsupported, Message: kind,
		Details: map[string]any{"kind": kind},
	}
}

// UnsupportedKind returns the transport-kind label of an OPERATION_UNSUPPORTED error.
func UnsupportedKind(err error) (string, bool) {
	appErr, ok := AsAppError(err)
	if !ok || appErr.Code != ErrCodeOperationUnsupported {
		return "", false
	}
	kind, ok := appErr.Details["kind"].(string)
	return kind, ok
}

// ProviderClosed creates an error for use of a closed provider.
func ProviderClosed(name string) *AppError {
	return &AppError{
		Code: ErrCodeProviderClosed, Message: fmt.Sprintf("The provider %s is closed", name),
		Details: map[string]any{"provider": name},
	}
}

// FactoryAlreadyCreated creates an error for a configurable factory that was already materialized.
func FactoryAlreadyCreated() *AppError {
	return &AppError{Code: ErrCodeFactoryAlreadyCreated, Message: "The factory has already been used to create an instance"}
}

// UnknownOption creates an error for an option a configurable factory does not accept.
func UnknownOption(option string) *AppError {
	return &AppError{
		Code: ErrCodeUnknownOption, Message: fmt.Sprintf("Option %q is not supported by this factory", option),
		Details: map[string]any{"option": option},
	}
}

// --- Operations ---

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// Cancelled creates an error for an operation that was cancelled before it completed.
func Cancelled(operation string) *AppError {
	return &AppError{
		Code: ErrCodeCancelled, Message: "The operation was cancelled",
		Details: map[string]any{"operation": operation},
	}
}

// ConnectionFailed creates an error for a failed bind, connect or accept.
func ConnectionFailed(target string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConnectionFailed, Message: fmt.Sprintf("Unable to establish %s", target),
		Retryable: true, Details: map[string]any{"target": target}, Cause: cause,
	}
}

// TaskRejected creates an error for a task an executor would not accept.
func TaskRejected(executor, reason string) *AppError {
	return &AppError{
		Code: ErrCodeTaskRejected, Message: fmt.Sprintf("Task rejected by %s: %s", executor, reason),
		Details: map[string]any{"executor": executor},
	}
}

// Timeout creates a new AppError for an operation that timed out.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The operation took too long",
		Retryable: true, Details: map[string]any{"operation": operation},
	}
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred",
		Cause: cause,
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err is an AppError carrying code.
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
