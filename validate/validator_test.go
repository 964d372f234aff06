package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/temify/core"
	"syreclabs.com/go/faker"
)

func init() {
	faker.Seed(time.Now().UnixNano())
}

type player struct {
	Name  string  `json:"name"`
	Age   int     `json:"age"`
	Score float64 `json:"score"`
	Level *int    `json:"level,omitempty"`
	Tag   any
}

func TestRequired(t *testing.T) {
	rule := Required[map[string]any]("name", "")
	level := 3

	tests := []struct {
		name  string
		value map[string]any
		valid bool
	}{
		{"present", map[string]any{"name": faker.Name().FirstName()}, true},
		{"empty string", map[string]any{"name": ""}, false},
		{"nil", map[string]any{"name": nil}, false},
		{"missing", map[string]any{}, false},
		{"zero number", map[string]any{"name": 0}, true},
		{"false", map[string]any{"name": false}, true},
		{"pointer", map[string]any{"name": &level}, true},
		{"nil map", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := rule(tt.value)
			if res.Valid != tt.valid {
				t.Fatalf("Valid = %v, want %v (%+v)", res.Valid, tt.valid, res)
			}
			if !res.Valid {
				want := []FieldError{{Field: "name", Message: "name is required", Code: CodeRequired}}
				if diff := cmp.Diff(want, res.Errors); diff != "" {
					t.Errorf("errors mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestRequiredStruct(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value player
		valid bool
	}{
		{"json name", "name", player{Name: "ada"}, true},
		{"go name", "Name", player{Name: "ada"}, true},
		{"empty", "name", player{}, false},
		{"nil pointer", "level", player{}, false},
		{"nil interface", "Tag", player{}, false},
		{"nil slice", "Tag", player{Tag: []string(nil)}, false},
		{"empty slice", "Tag", player{Tag: []string{}}, true},
		{"unknown field", "nope", player{Name: "ada"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Required[player](tt.field, "")(tt.value).Valid; got != tt.valid {
				t.Errorf("Valid = %v, want %v", got, tt.valid)
			}
		})
	}

	t.Run("pointer to struct", func(t *testing.T) {
		rule := Required[*player]("name", "")
		if !rule(&player{Name: "ada"}).Valid {
			t.Error("expected valid")
		}
		if rule(nil).Valid {
			t.Error("nil pointer should be invalid")
		}
	})
}

func TestRange(t *testing.T) {
	rule := Range[map[string]any]("score", 0, 100, "")

	tests := []struct {
		name  string
		score any
		code  string
	}{
		{"lower bound", 0, ""},
		{"upper bound", 100, ""},
		{"inside", faker.RandomInt(1, 99), ""},
		{"float", 99.5, ""},
		{"NaN", math.NaN(), CodeOutOfRange},
		{"positive infinity", math.Inf(1), CodeOutOfRange},
		{"unsigned", uint8(42), ""},
		{"above", 101, CodeOutOfRange},
		{"below", -1, CodeOutOfRange},
		{"string", "50", CodeInvalidType},
		{"bool", true, CodeInvalidType},
		{"missing", nil, CodeInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := rule(map[string]any{"score": tt.score})
			if tt.code == "" {
				if !res.Valid || res.Errors != nil {
					t.Fatalf("expected valid, got %+v", res)
				}
				return
			}
			if res.Valid || len(res.Errors) != 1 {
				t.Fatalf("expected exactly one error, got %+v", res)
			}
			if res.Errors[0].Code != tt.code {
				t.Errorf("code = %s, want %s", res.Errors[0].Code, tt.code)
			}
		})
	}
}

func TestDefaultMessages(t *testing.T) {
	type value = map[string]any

	tests := []struct {
		name string
		rule Rule[value]
		in   value
		want FieldError
	}{
		{
			"range",
			Range[value]("score", 0, 100, ""),
			value{"score": 101},
			FieldError{Field: "score", Message: "score must be between 0 and 100", Code: CodeOutOfRange},
		},
		{
			"range with fractions",
			Range[value]("ratio", 0.5, 1.5, ""),
			value{"ratio": 2},
			FieldError{Field: "ratio", Message: "ratio must be between 0.5 and 1.5", Code: CodeOutOfRange},
		},
		{
			"min",
			Min[value]("age", 18, ""),
			value{"age": 10},
			FieldError{Field: "age", Message: "age must be at least 18", Code: CodeTooSmall},
		},
		{
			"max large bound",
			Max[value]("xp", 1000000, ""),
			value{"xp": 1000001},
			FieldError{Field: "xp", Message: "xp must be at most 1000000", Code: CodeTooLarge},
		},
		{
			"not a number",
			Min[value]("age", 18, ""),
			value{"age": "ten"},
			FieldError{Field: "age", Message: "age must be a number", Code: CodeInvalidType},
		},
		{
			"custom message",
			Max[value]("lives", 3, "too many lives"),
			value{"lives": 4},
			FieldError{Field: "lives", Message: "too many lives", Code: CodeTooLarge},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.rule(tt.in)
			if diff := cmp.Diff([]FieldError{tt.want}, res.Errors); diff != "" {
				t.Errorf("errors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMinMaxBoundaries(t *testing.T) {
	atLeast := Min[player]("age", 18, "")
	atMost := Max[player]("score", 10.5, "")

	if !atLeast(player{Age: 18}).Valid {
		t.Error("Min should include its bound")
	}
	if atLeast(player{Age: 17}).Valid {
		t.Error("Min should reject values below its bound")
	}
	if !atMost(player{Score: 10.5}).Valid {
		t.Error("Max should include its bound")
	}
	if atMost(player{Score: 10.6}).Valid {
		t.Error("Max should reject values above its bound")
	}

	nan := player{Score: math.NaN()}
	if res := Min[player]("score", 0, "")(nan); res.Valid || res.Errors[0].Code != CodeTooSmall {
		t.Errorf("Min(NaN) = %+v, want TOO_SMALL", res)
	}
	if res := atMost(nan); res.Valid || res.Errors[0].Code != CodeTooLarge {
		t.Errorf("Max(NaN) = %+v, want TOO_LARGE", res)
	}
}

func TestCustom(t *testing.T) {
	even := func(v any) bool {
		n, ok := v.(int)
		return ok && n%2 == 0
	}

	t.Run("default code", func(t *testing.T) {
		rule := Custom[map[string]any]("steps", even, "steps must be even", "")
		res := rule(map[string]any{"steps": 3})
		want := []FieldError{{Field: "steps", Message: "steps must be even", Code: CodeCustom}}
		if diff := cmp.Diff(want, res.Errors); diff != "" {
			t.Errorf("errors mismatch (-want +got):\n%s", diff)
		}
		if !rule(map[string]any{"steps": 4}).Valid {
			t.Error("expected even steps to pass")
		}
	})

	t.Run("caller code", func(t *testing.T) {
		rule := Custom[map[string]any]("steps", even, "odd", "NOT_EVEN")
		if got := rule(map[string]any{"steps": 1}).Errors[0].Code; got != "NOT_EVEN" {
			t.Errorf("code = %s, want NOT_EVEN", got)
		}
	})

	t.Run("predicate sees raw value", func(t *testing.T) {
		var seen any = "unset"
		rule := Custom[player]("Tag", func(v any) bool {
			seen = v
			return true
		}, "", "")

		rule(player{Tag: []string{"a"}})
		if diff := cmp.Diff([]string{"a"}, seen); diff != "" {
			t.Errorf("predicate value mismatch (-want +got):\n%s", diff)
		}

		rule(player{})
		if seen != nil {
			t.Errorf("missing field should reach the predicate as nil, got %v", seen)
		}

		rule(player{Tag: []string(nil)})
		if seen != nil {
			t.Errorf("nil slice should reach the predicate as nil, got %#v", seen)
		}
	})
}

func TestValidatorAggregates(t *testing.T) {
	v := New[map[string]any]().
		Rule(Required[map[string]any]("name", "")).
		Rule(Min[map[string]any]("age", 18, ""))

	res := v.Validate(map[string]any{"name": "", "age": 10})
	want := Result{
		Valid: false,
		Errors: []FieldError{
			{Field: "name", Message: "name is required", Code: CodeRequired},
			{Field: "age", Message: "age must be at least 18", Code: CodeTooSmall},
		},
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	ok := v.Validate(map[string]any{"name": faker.Name().FirstName(), "age": faker.RandomInt(18, 99)})
	if diff := cmp.Diff(Valid(), ok); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestValidatorRunsEveryRule(t *testing.T) {
	var ran []int
	rule := func(i int, valid bool) Rule[string] {
		return func(string) Result {
			ran = append(ran, i)
			if valid {
				return Valid()
			}
			return Invalid(FieldError{Field: "f", Message: "m", Code: "C"})
		}
	}

	v := New[string]().Rule(rule(1, false)).Rule(rule(2, true)).Rule(rule(3, false)).Rule(nil)
	if v.Len() != 3 {
		t.Errorf("Len = %d, want 3", v.Len())
	}

	res := v.Validate("x")
	if diff := cmp.Diff([]int{1, 2, 3}, ran); diff != "" {
		t.Errorf("rule order mismatch (-want +got):\n%s", diff)
	}
	if len(res.Errors) != 2 {
		t.Errorf("expected 2 errors, got %d", len(res.Errors))
	}
}

func TestEmptyValidator(t *testing.T) {
	res := New[int]().Validate(42)
	if !res.Valid || res.Errors != nil {
		t.Errorf("expected valid with nil errors, got %+v", res)
	}
}

func TestValidateOrError(t *testing.T) {
	v := New[map[string]any]().
		Rule(Required[map[string]any]("name", "")).
		Rule(Min[map[string]any]("age", 18, ""))
	in := map[string]any{"name": "", "age": 10}

	err := v.ValidateOrError(in)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, core.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	var cerr *core.Error
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *core.Error, got %T", err)
	}
	if cerr.Message != "Validation failed" {
		t.Errorf("message = %q, want %q", cerr.Message, "Validation failed")
	}
	if diff := cmp.Diff(v.Validate(in).Errors, FieldErrors(err)); diff != "" {
		t.Errorf("detail mismatch (-want +got):\n%s", diff)
	}

	if err := v.ValidateOrError(map[string]any{"name": "ada", "age": 30}); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestFieldErrorsForeignError(t *testing.T) {
	if got := FieldErrors(errors.New("boom")); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
	if got := FieldErrors(core.NewInvariantError("bad", nil)); got != nil {
		t.Errorf("expected nil, got %v", got)
	}

	errs := []FieldError{{Field: "f", Message: "m", Code: "C"}}
	wrapped := fmt.Errorf("load: %w", core.NewConfigurationError("invalid", Details(errs)))
	if diff := cmp.Diff(errs, FieldErrors(wrapped)); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestNestedFields(t *testing.T) {
	type limits struct {
		Burst int `json:"burst"`
	}
	type settings struct {
		Limits *limits        `json:"limits"`
		Labels map[string]any `json:"labels"`
	}

	v := New[settings]().
		Rule(Min[settings]("limits.burst", 1, "")).
		Rule(Required[settings]("labels.team", ""))

	res := v.Validate(settings{Limits: &limits{Burst: 0}, Labels: map[string]any{"team": ""}})
	want := []FieldError{
		{Field: "limits.burst", Message: "limits.burst must be at least 1", Code: CodeTooSmall},
		{Field: "labels.team", Message: "labels.team is required", Code: CodeRequired},
	}
	if diff := cmp.Diff(want, res.Errors); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}

	if !v.Validate(settings{Limits: &limits{Burst: 2}, Labels: map[string]any{"team": "core"}}).Valid {
		t.Error("expected valid")
	}

	// A key containing a dot wins over the nested path.
	flat := Required[map[string]any]("labels.team", "")
	if !flat(map[string]any{"labels.team": "core"}).Valid {
		t.Error("expected flat key to be found")
	}
}

func TestResultJSON(t *testing.T) {
	data, err := json.Marshal(Valid())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"valid":true}` {
		t.Errorf("valid result = %s", data)
	}

	data, err = json.Marshal(Invalid(FieldError{Field: "name", Message: "name is required", Code: CodeRequired}))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"valid":false,"errors":[{"field":"name","message":"name is required","code":"REQUIRED"}]}`
	if string(data) != want {
		t.Errorf("invalid result = %s, want %s", data, want)
	}
}

func TestConcurrentValidate(t *testing.T) {
	v := New[player]().
		Rule(Required[player]("name", "")).
		Rule(Range[player]("score", 0, 100, ""))

	done := make(chan Result)
	for i := 0; i < 16; i++ {
		go func(i int) {
			done <- v.Validate(player{Name: "p", Score: float64(i * 10)})
		}(i)
	}
	invalid := 0
	for i := 0; i < 16; i++ {
		if !(<-done).Valid {
			invalid++
		}
	}
	// scores 110..150 are out of range
	if invalid != 5 {
		t.Errorf("invalid = %d, want 5", invalid)
	}
}
