package validate

import (
	"fmt"
	"strconv"
)

// Predicate inspects the raw value of a field. It receives nil when the
// field is missing or reads as absent (see the package doc).
type Predicate func(value any) bool

// Required fails when field is missing, nil or the empty string.
func Required[T any](field, message string) Rule[T] {
	message = orDefault(message, field+" is required")
	return func(value T) Result {
		if !isPresent(lookup(value, field)) {
			return Invalid(FieldError{Field: field, Message: message, Code: CodeRequired})
		}
		return Valid()
	}
}

// Range fails unless field is a number within [min, max]. NaN is out of
// range.
func Range[T any](field string, min, max float64, message string) Rule[T] {
	message = orDefault(message, fmt.Sprintf("%s must be between %s and %s", field, formatBound(min), formatBound(max)))
	return numeric[T](field, message, func(n float64) string {
		if !(n >= min && n <= max) {
			return CodeOutOfRange
		}
		return ""
	})
}

// Min fails unless field is a number greater than or equal to min.
func Min[T any](field string, min float64, message string) Rule[T] {
	message = orDefault(message, fmt.Sprintf("%s must be at least %s", field, formatBound(min)))
	return numeric[T](field, message, func(n float64) string {
		if !(n >= min) {
			return CodeTooSmall
		}
		return ""
	})
}

// Max fails unless field is a number less than or equal to max.
func Max[T any](field string, max float64, message string) Rule[T] {
	message = orDefault(message, fmt.Sprintf("%s must be at most %s", field, formatBound(max)))
	return numeric[T](field, message, func(n float64) string {
		if !(n <= max) {
			return CodeTooLarge
		}
		return ""
	})
}

// Custom fails when predicate returns false for the raw field value.
// An empty code reports CUSTOM_VALIDATION.
func Custom[T any](field string, predicate Predicate, message, code string) Rule[T] {
	message = orDefault(message, field+" is invalid")
	code = orDefault(code, CodeCustom)
	return func(value T) Result {
		v, _ := lookup(value, field)
		if predicate == nil || !predicate(v) {
			return Invalid(FieldError{Field: field, Message: message, Code: code})
		}
		return Valid()
	}
}

// numeric builds a rule that type-checks field and then asks check for a
// failure code. A missing field is not a number.
func numeric[T any](field, message string, check func(float64) string) Rule[T] {
	typeMessage := field + " must be a number"
	return func(value T) Result {
		v, _ := lookup(value, field)
		n, ok := number(v)
		if !ok {
			return Invalid(FieldError{Field: field, Message: typeMessage, Code: CodeInvalidType})
		}
		if code := check(n); code != "" {
			return Invalid(FieldError{Field: field, Message: message, Code: code})
		}
		return Valid()
	}
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
