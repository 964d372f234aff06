package event

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrPayloadType is returned by typed listeners when the payload cannot be
// converted to the expected type.
var ErrPayloadType = errors.New("unexpected payload type")

// ListenerError describes one failed delivery.
type ListenerError struct {
	EventType      string
	SubscriptionID string
	Wildcard       bool
	Detached       bool
	Err            error
}

func (e *ListenerError) Error() string {
	kind := "listener"
	switch {
	case e.Wildcard && e.Detached:
		kind = "detached wildcard listener"
	case e.Wildcard:
		kind = "wildcard listener"
	case e.Detached:
		kind = "detached listener"
	}
	return fmt.Sprintf("%s %s failed for %q: %v", kind, e.SubscriptionID, e.EventType, e.Err)
}

func (e *ListenerError) Unwrap() error {
	return e.Err
}

// PanicError wraps a value recovered from a panicking listener.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("listener panic: %v", e.Value)
}

// IsPanic checks if an error was caused by a listener panic.
func IsPanic(err error) bool {
	var p *PanicError
	return errors.As(err, &p)
}

// Failures splits an error passed to an ErrorHandler into its individual
// listener failures, in delivery order.
func Failures(err error) []*ListenerError {
	var out []*ListenerError
	for _, e := range multierr.Errors(err) {
		var le *ListenerError
		if errors.As(e, &le) {
			out = append(out, le)
		}
	}
	return out
}
