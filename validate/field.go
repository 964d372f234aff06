package validate

import (
	"reflect"
	"strings"
	"sync"
)

// structFields caches the lookup table of a struct type:
// field name, json name and yaml name -> field index.
var structFields sync.Map // map[reflect.Type]map[string][]int

// lookup returns the value stored under field in v. The second result is
// false when the field is missing or holds a nil pointer, interface, map or
// slice. A dotted field ("bus.name") walks nested structs and maps when no
// field carries the full name.
func lookup(v any, field string) (any, bool) {
	if fv, ok := lookupOne(v, field); ok {
		return fv, true
	}
	head, rest, nested := strings.Cut(field, ".")
	if !nested {
		return nil, false
	}
	parent, ok := lookupOne(v, head)
	if !ok {
		return nil, false
	}
	return lookup(parent, rest)
}

func lookupOne(v any, field string) (any, bool) {
	rv, ok := indirect(reflect.ValueOf(v))
	if !ok {
		return nil, false
	}

	var fv reflect.Value
	switch rv.Kind() {
	case reflect.Map:
		kt := rv.Type().Key()
		if kt.Kind() != reflect.String {
			return nil, false
		}
		fv = rv.MapIndex(reflect.ValueOf(field).Convert(kt))
	case reflect.Struct:
		idx, found := fieldIndex(rv.Type(), field)
		if !found {
			return nil, false
		}
		var err error
		if fv, err = rv.FieldByIndexErr(idx); err != nil {
			return nil, false
		}
	default:
		return nil, false
	}

	fv, ok = indirect(fv)
	if !ok || !fv.CanInterface() {
		return nil, false
	}
	return fv.Interface(), true
}

// indirect follows pointers and interfaces. It reports false for invalid or
// nil values.
func indirect(rv reflect.Value) (reflect.Value, bool) {
	for rv.IsValid() {
		switch rv.Kind() {
		case reflect.Pointer, reflect.Interface:
			if rv.IsNil() {
				return reflect.Value{}, false
			}
			rv = rv.Elem()
			continue
		case reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			if rv.IsNil() {
				return reflect.Value{}, false
			}
		}
		return rv, true
	}
	return reflect.Value{}, false
}

func fieldIndex(t reflect.Type, name string) ([]int, bool) {
	if cached, ok := structFields.Load(t); ok {
		idx, found := cached.(map[string][]int)[name]
		return idx, found
	}

	table := make(map[string][]int)
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		if _, taken := table[f.Name]; !taken {
			table[f.Name] = f.Index
		}
		for _, key := range []string{"json", "yaml"} {
			if tag := tagName(f, key); tag != "" {
				table[tag] = f.Index
			}
		}
	}
	structFields.Store(t, table)

	idx, found := table[name]
	return idx, found
}

func jsonName(f reflect.StructField) string {
	return tagName(f, "json")
}

func tagName(f reflect.StructField, key string) string {
	tag, ok := f.Tag.Lookup(key)
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}

// isPresent treats missing values, nils and empty strings as absent.
func isPresent(v any, ok bool) bool {
	if !ok {
		return false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String && rv.Len() == 0 {
		return false
	}
	return true
}

// number returns v as float64 when its kind is an integer or float.
func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
