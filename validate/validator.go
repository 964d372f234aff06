// Package validate runs declarative, composable validation rules against a
// value and reports every violation at once.
//
// A Validator holds an ordered list of rules. Validate runs all of them, in
// the order they were added, and concatenates the errors they report; there
// is no short-circuit, so one pass shows the caller the complete set of
// violations.
//
//	v := validate.New[Player]().
//	    Rule(validate.Required[Player]("name", "")).
//	    Rule(validate.Range[Player]("score", 0, 100, ""))
//
//	res := v.Validate(p)
//	if !res.Valid {
//	    for _, fe := range res.Errors {
//	        fmt.Println(fe.Field, fe.Code, fe.Message)
//	    }
//	}
//
// Rules look fields up by name. Struct fields match their Go name or their
// json or yaml tag; map[string]V values match their key. A dotted name such
// as "bus.name" walks nested values. Pointers and interfaces are followed.
// A field holding a nil pointer, interface, map, slice, func or channel reads
// as absent: Required fails on it, numeric rules report INVALID_TYPE and a
// Custom predicate receives nil rather than the typed nil value. Rule factories check the
// runtime type of the field explicitly: numeric rules accept Go integer and
// floating point kinds only and report INVALID_TYPE for anything else.
package validate

import (
	"errors"

	"github.com/temify/core"
)

// Failure codes reported by the rule factories.
const (
	CodeRequired    = "REQUIRED"
	CodeInvalidType = "INVALID_TYPE"
	CodeOutOfRange  = "OUT_OF_RANGE"
	CodeTooSmall    = "TOO_SMALL"
	CodeTooLarge    = "TOO_LARGE"
	CodeCustom      = "CUSTOM_VALIDATION"
)

// DetailErrors is the core.Error details key holding []FieldError.
const DetailErrors = "errors"

// FieldError is one violation reported by a rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e FieldError) Error() string {
	return e.Message
}

// Result is the outcome of a validation. Errors is nil when Valid is true
// and holds at least one entry otherwise.
type Result struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors,omitempty"`
}

// Valid returns a passing result.
func Valid() Result {
	return Result{Valid: true}
}

// Invalid returns a failing result carrying errs.
func Invalid(errs ...FieldError) Result {
	return Result{Valid: false, Errors: errs}
}

// Rule checks one aspect of a value. Rules must not modify the value.
type Rule[T any] func(value T) Result

// Validator is an ordered list of rules.
// Build it before sharing it: Rule is not safe for concurrent use, Validate is.
type Validator[T any] struct {
	rules []Rule[T]
}

// New creates an empty validator.
func New[T any]() *Validator[T] {
	return &Validator[T]{}
}

// Rule appends r and returns the validator for chaining.
func (v *Validator[T]) Rule(r Rule[T]) *Validator[T] {
	if r != nil {
		v.rules = append(v.rules, r)
	}
	return v
}

// Len returns the number of rules.
func (v *Validator[T]) Len() int {
	return len(v.rules)
}

// Validate runs every rule against value and aggregates their errors in
// rule order.
func (v *Validator[T]) Validate(value T) Result {
	var errs []FieldError
	for _, rule := range v.rules {
		res := rule(value)
		if !res.Valid {
			errs = append(errs, res.Errors...)
		}
	}
	if len(errs) == 0 {
		return Valid()
	}
	return Invalid(errs...)
}

// ValidateOrError runs Validate and converts a failing result to a
// validation *core.Error whose details hold the full error list under
// "errors". Use FieldErrors to read it back.
func (v *Validator[T]) ValidateOrError(value T) error {
	res := v.Validate(value)
	if res.Valid {
		return nil
	}
	return core.NewValidationError("Validation failed", Details(res.Errors))
}

// Details wraps errs in a core.Error details map.
func Details(errs []FieldError) map[string]any {
	return map[string]any{DetailErrors: errs}
}

// FieldErrors extracts the violations carried by an error returned from
// ValidateOrError, or by any *core.Error built with Details. It returns nil
// for any other error.
func FieldErrors(err error) []FieldError {
	var e *core.Error
	if !errors.As(err, &e) {
		return nil
	}
	errs, _ := e.Detail(DetailErrors).([]FieldError)
	return errs
}
