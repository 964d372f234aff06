package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var tagValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return jsonName(f)
	})
	return v
})

// Struct returns a rule that checks the `validate` struct tags of T,
// reporting one FieldError per violated tag. Fields are named by their json
// tag when they have one.
//
//	type Quest struct {
//	    ID    string `json:"id" validate:"required"`
//	    Steps int    `json:"steps" validate:"min=1,max=20"`
//	}
func Struct[T any]() Rule[T] {
	return func(value T) Result {
		err := tagValidator().Struct(value)
		if err == nil {
			return Valid()
		}

		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Invalid(FieldError{Message: err.Error(), Code: CodeInvalidType})
		}
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, tagError(fe))
		}
		return Invalid(out...)
	}
}

func tagError(fe validator.FieldError) FieldError {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return FieldError{Field: field, Message: field + " is required", Code: CodeRequired}
	case "min", "gte":
		return FieldError{Field: field, Message: fmt.Sprintf("%s must be at least %s", field, fe.Param()), Code: CodeTooSmall}
	case "max", "lte":
		return FieldError{Field: field, Message: fmt.Sprintf("%s must be at most %s", field, fe.Param()), Code: CodeTooLarge}
	}
	return FieldError{
		Field:   field,
		Message: fmt.Sprintf("%s failed %s validation", field, fe.Tag()),
		Code:    strings.ToUpper(fe.Tag()),
	}
}
