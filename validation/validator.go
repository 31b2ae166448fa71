package validation

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/unbreakablehf/xnio/errors"
)

// Validator collects validation errors.
type Validator struct {
	errors []FieldError
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
	}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns an AppError if there are validation errors, nil otherwise.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}
	return fieldsError(v.errors)
}

func fieldsError(fields []FieldError) *errors.AppError {
	messages := make([]string, len(fields))
	for i, e := range fields {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return errors.Validation(strings.Join(messages, "; ")).
		WithDetail("fields", fields)
}

// Required checks if a string is non-empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// NotNil checks that a required dependency such as a handler was supplied.
func (v *Validator) NotNil(field string, value any) *Validator {
	if value == nil {
		v.AddError(field, "is required")
	}
	return v
}

// HostPort checks that value is a "host:port" pair with a valid port.
// An empty host means every local address.
func (v *Validator) HostPort(field, value string) *Validator {
	_, port, err := net.SplitHostPort(value)
	if err != nil {
		v.AddError(field, "must be a host:port address")
		return v
	}
	if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		v.AddError(field, "must have a port between 0 and 65535")
	}
	return v
}

// Addr checks that addr is a non-nil address of one of the given networks.
func (v *Validator) Addr(field string, addr net.Addr, networks ...string) *Validator {
	if addr == nil {
		v.AddError(field, "is required")
		return v
	}
	if len(networks) == 0 {
		return v
	}
	for _, n := range networks {
		if addr.Network() == n {
			return v
		}
	}
	v.AddError(field, fmt.Sprintf("must be a %s address, got %s", strings.Join(networks, " or "), addr.Network()))
	return v
}

// Range checks if a number is within a range.
func (v *Validator) Range(field string, value, minVal, maxVal int) *Validator {
	if value < minVal || value > maxVal {
		v.AddError(field, fmt.Sprintf("must be between %d and %d", minVal, maxVal))
	}
	return v
}

// Min checks if a number meets minimum value.
func (v *Validator) Min(field string, value, minVal int) *Validator {
	if value < minVal {
		v.AddError(field, fmt.Sprintf("must be at least %d", minVal))
	}
	return v
}

// OneOf checks if a value is one of the allowed values.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.AddError(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom applies a custom validation condition.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

// Required validates a single required field and returns an error if empty.
func Required(field, value string) error {
	if appErr := New().Required(field, value).Validate(); appErr != nil {
		return appErr
	}
	return nil
}
