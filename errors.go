package core

import (
	"errors"
	"fmt"
)

// Error codes carried by *Error.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeInvariant     = "INVARIANT_ERROR"
	CodeConfiguration = "CONFIGURATION_ERROR"
)

// Sentinel errors for classification with errors.Is.
// An *Error matches the sentinel whose code it carries.
var (
	// ErrValidation indicates that an input was rejected by validation.
	ErrValidation = &Error{Code: CodeValidation, Message: "validation failed"}

	// ErrInvariant indicates that internal state is corrupted.
	ErrInvariant = &Error{Code: CodeInvariant, Message: "invariant violated"}

	// ErrConfiguration indicates that the supplied configuration is invalid.
	ErrConfiguration = &Error{Code: CodeConfiguration, Message: "invalid configuration"}
)

// Error is the base error for all Temify failures.
type Error struct {
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Detail returns the detail stored under key, or nil.
func (e *Error) Detail(key string) any {
	if e.Details == nil {
		return nil
	}
	return e.Details[key]
}

// NewError creates an error with the given code.
func NewError(code, message string, details map[string]any) *Error {
	return &Error{Code: code, Message: message, Details: details}
}

// NewValidationError is returned when input is invalid.
func NewValidationError(message string, details map[string]any) *Error {
	return NewError(CodeValidation, message, details)
}

// NewInvariantError is returned when system state is corrupted.
func NewInvariantError(message string, details map[string]any) *Error {
	return NewError(CodeInvariant, message, details)
}

// NewConfigurationError is returned when configuration is invalid.
func NewConfigurationError(message string, details map[string]any) *Error {
	return NewError(CodeConfiguration, message, details)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvariant checks if an error is an invariant error.
func IsInvariant(err error) bool {
	return errors.Is(err, ErrInvariant)
}

// IsConfiguration checks if an error is a configuration error.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
