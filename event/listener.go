package event

import (
	"context"
	"fmt"
	"reflect"

	"github.com/temify/core/event/payload"
)

// Listener receives events emitted on a Bus.
//
// Returning an error (or panicking) marks the delivery as failed. The bus
// reports the failure but keeps notifying other listeners.
//
// Unsubscribe by value compares listeners with ==, so implementations should
// be pointers or other comparable values.
type Listener interface {
	Notify(ctx context.Context, ev Event) error
}

// HandlerFunc is the function shape wrapped by Func and Detached.
type HandlerFunc func(ctx context.Context, ev Event) error

type funcListener struct {
	fn HandlerFunc
}

func (l *funcListener) Notify(ctx context.Context, ev Event) error {
	return l.fn(ctx, ev)
}

// Func turns fn into a Listener. Each call returns a distinct listener, so
// keep the result to unsubscribe it by value later.
func Func(fn HandlerFunc) Listener {
	return &funcListener{fn: fn}
}

// detachedListener runs outside the emitting goroutine.
type detachedListener struct {
	l Listener
}

func (d *detachedListener) Notify(ctx context.Context, ev Event) error {
	return d.l.Notify(ctx, ev)
}

// Detached wraps fn as fire-and-forget work. The bus starts it on a new
// goroutine and returns from Emit without waiting. The context passed to fn
// keeps the emitter's values but not its cancellation. Failures are reported
// through the bus error handler once fn returns.
func Detached(fn HandlerFunc) Listener {
	return &detachedListener{l: Func(fn)}
}

// Detach turns any listener into detached work, as Detached does for a
// function. Detaching a detached listener returns it unchanged.
//
//	bus.Subscribe("quest.completed", event.Detach(event.Typed(grantReward)))
func Detach(l Listener) Listener {
	if l == nil || isDetached(l) {
		return l
	}
	return &detachedListener{l: l}
}

func isDetached(l Listener) bool {
	_, ok := l.(*detachedListener)
	return ok
}

// TypedFunc handles events whose payload was converted to T.
type TypedFunc[T any] func(ctx context.Context, ev Event, data T) error

type typedListener[T any] struct {
	fn    TypedFunc[T]
	codec payload.Codec
}

func (l *typedListener[T]) Notify(ctx context.Context, ev Event) error {
	codec := l.codec
	if codec == nil {
		codec = ContextCodec(ctx)
	}
	data, err := payload.AsWith[T](codec, ev.Payload)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPayloadType, ev.Type, err)
	}
	return l.fn(ctx, ev, data)
}

// Typed adapts fn to a Listener, converting the payload with the codec of
// the delivering bus (see WithPayloadCodec). A payload that cannot be
// converted fails the delivery with ErrPayloadType.
func Typed[T any](fn TypedFunc[T]) Listener {
	return &typedListener[T]{fn: fn}
}

// TypedWith is Typed with an explicit payload codec.
func TypedWith[T any](codec payload.Codec, fn TypedFunc[T]) Listener {
	if codec == nil {
		codec = payload.Default()
	}
	return &typedListener[T]{fn: fn, codec: codec}
}

// sameListener reports whether a and b are the same listener. Listeners of
// non-comparable dynamic types never match, including comparable structs
// whose interface fields hold slices, maps or funcs.
func sameListener(a, b Listener) (same bool) {
	if a == nil || b == nil {
		return false
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
