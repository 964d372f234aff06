package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		validation    bool
		invariant     bool
		configuration bool
	}{
		{"nil", nil, false, false, false},
		{"plain error", errors.New("boom"), false, false, false},
		{"validation", NewValidationError("bad input", nil), true, false, false},
		{"wrapped validation", fmt.Errorf("save: %w", NewValidationError("bad input", nil)), true, false, false},
		{"invariant", NewInvariantError("corrupt", nil), false, true, false},
		{"configuration", NewConfigurationError("missing", nil), false, false, true},
		{"custom code", NewError("OTHER", "x", nil), false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidation(tt.err); got != tt.validation {
				t.Errorf("IsValidation() = %v, want %v", got, tt.validation)
			}
			if got := IsInvariant(tt.err); got != tt.invariant {
				t.Errorf("IsInvariant() = %v, want %v", got, tt.invariant)
			}
			if got := IsConfiguration(tt.err); got != tt.configuration {
				t.Errorf("IsConfiguration() = %v, want %v", got, tt.configuration)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := NewValidationError("Validation failed", map[string]any{"field": "name"})
	if got, want := err.Error(), "VALIDATION_ERROR: Validation failed"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got := err.Detail("field"); got != "name" {
		t.Errorf("Detail(field) = %v, want name", got)
	}
	if got := err.Detail("missing"); got != nil {
		t.Errorf("Detail(missing) = %v, want nil", got)
	}

	bare := &Error{Code: "X"}
	if got := bare.Error(); got != "X" {
		t.Errorf("Error() = %q, want X", got)
	}
	if got := bare.Detail("any"); got != nil {
		t.Errorf("Detail on nil details = %v, want nil", got)
	}
}

func TestErrorAs(t *testing.T) {
	wrapped := fmt.Errorf("commit: %w", NewInvariantError("state", map[string]any{"player": "p1"}))

	var e *Error
	if !errors.As(wrapped, &e) {
		t.Fatal("expected errors.As to find *Error")
	}
	if e.Code != CodeInvariant {
		t.Errorf("Code = %q, want %q", e.Code, CodeInvariant)
	}
}
