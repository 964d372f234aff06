package payload

import (
	"fmt"
	"reflect"
)

// As converts v to T using the default codec.
// See AsWith.
func As[T any](v any) (T, error) {
	return AsWith[T](Default(), v)
}

// AsWith converts v to T.
//
// A v that already holds a T (or *T when T is not a pointer) is returned
// without encoding. Otherwise v is encoded with codec and decoded into a new
// T, so a map[string]any produced by a generic decoder becomes the struct the
// caller expects.
func AsWith[T any](codec Codec, v any) (T, error) {
	var zero T
	switch typed := v.(type) {
	case T:
		return typed, nil
	case *T:
		if typed != nil {
			return *typed, nil
		}
		return zero, ErrNilPayload
	case nil:
		if isNillable(reflect.TypeOf((*T)(nil)).Elem()) {
			return zero, nil
		}
		return zero, ErrNilPayload
	}

	data, err := codec.Encode(v)
	if err != nil {
		return zero, fmt.Errorf("payload encode (%s): %w", codec.ContentType(), err)
	}

	target := newTarget[T]()
	if err := codec.Decode(data, target.ptr); err != nil {
		return zero, fmt.Errorf("payload decode into %T (%s): %w", zero, codec.ContentType(), err)
	}
	return target.value(), nil
}

// target is the decode destination for T. When T is itself a pointer (for
// example a proto.Message) the pointee is allocated so that decoders receive
// a usable value.
type target[T any] struct {
	ptr   any
	value func() T
}

func newTarget[T any]() target[T] {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() == reflect.Pointer {
		elem := reflect.New(t.Elem())
		return target[T]{
			ptr:   elem.Interface(),
			value: func() T { return elem.Interface().(T) },
		}
	}
	out := new(T)
	return target[T]{
		ptr:   out,
		value: func() T { return *out },
	}
}

func isNillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}
