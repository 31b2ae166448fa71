// Package errors provides the structured error type shared by the provider
// locator, the capability surface and the first-party transports.
//
// Every failure carries a machine-readable ErrorCode and, where one exists,
// the original failure as its Cause. Sentinel values compare by code, so
//
//	errors.Is(err, errors.ErrOperationUnsupported)
//
// matches any OPERATION_UNSUPPORTED error regardless of its label, and
//
//	errors.Is(err, errors.ErrProviderAcquisition)
//
// matches every locator-side failure (not found, type mismatch, entry point
// missing, initialization failed).
package errors
