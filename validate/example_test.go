package validate_test

import (
	"fmt"

	"github.com/temify/core/validate"
)

type Profile struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func ExampleValidator() {
	v := validate.New[Profile]().
		Rule(validate.Required[Profile]("name", "")).
		Rule(validate.Min[Profile]("age", 18, ""))

	res := v.Validate(Profile{Age: 10})
	for _, fe := range res.Errors {
		fmt.Println(fe.Code, fe.Message)
	}
	// Output:
	// REQUIRED name is required
	// TOO_SMALL age must be at least 18
}

func ExampleFieldErrors() {
	v := validate.New[map[string]any]().
		Rule(validate.Range[map[string]any]("score", 0, 100, ""))

	err := v.ValidateOrError(map[string]any{"score": 101})
	fmt.Println(err)
	fmt.Println(validate.FieldErrors(err)[0].Code)
	// Output:
	// VALIDATION_ERROR: Validation failed
	// OUT_OF_RANGE
}
