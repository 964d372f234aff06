package event

import (
	"context"
	"sync"
	"time"
)

// TestBus creates a bus configured for testing: tracing and metrics are
// disabled and failures are discarded unless opts install a handler.
func TestBus(opts ...Option) *Bus {
	base := []Option{
		WithName("test-bus"),
		WithTracing(false),
		WithMetrics(false),
		WithErrorHandler(func(context.Context, Event, error) {}),
	}
	return NewBus(append(base, opts...)...)
}

// RecordedCall is one delivery observed by a Recorder.
type RecordedCall struct {
	Context context.Context
	Event   Event
	Time    time.Time
}

// Recorder is a Listener that records every event it receives.
// Useful for asserting what a bus delivered.
type Recorder struct {
	mu       sync.Mutex
	received []RecordedCall
	handler  HandlerFunc
}

// NewRecorder creates a recorder. If handler is non-nil it runs after the
// event is recorded and its result is returned to the bus.
func NewRecorder(handler HandlerFunc) *Recorder {
	return &Recorder{handler: handler}
}

// Notify records ev.
func (r *Recorder) Notify(ctx context.Context, ev Event) error {
	r.mu.Lock()
	r.received = append(r.received, RecordedCall{Context: ctx, Event: ev, Time: time.Now()})
	r.mu.Unlock()

	if r.handler != nil {
		return r.handler(ctx, ev)
	}
	return nil
}

// Events returns the received events in delivery order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, len(r.received))
	for i, c := range r.received {
		out[i] = c.Event
	}
	return out
}

// Calls returns a copy of all recorded calls.
func (r *Recorder) Calls() []RecordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]RecordedCall, len(r.received))
	copy(out, r.received)
	return out
}

// Count returns the number of events received.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.received)
}

// Last returns the last received event, or nil if none.
func (r *Recorder) Last() *Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.received) == 0 {
		return nil
	}
	ev := r.received[len(r.received)-1].Event
	return &ev
}

// Reset clears all recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.received = nil
	r.mu.Unlock()
}

var _ Listener = (*Recorder)(nil)

// FailureRecorder collects what a bus reports to its ErrorHandler.
type FailureRecorder struct {
	mu       sync.Mutex
	reports  []error
	failures []*ListenerError
}

// Handler returns an ErrorHandler for WithErrorHandler.
func (f *FailureRecorder) Handler() ErrorHandler {
	return func(_ context.Context, _ Event, err error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.reports = append(f.reports, err)
		f.failures = append(f.failures, Failures(err)...)
	}
}

// Reports returns the number of times the handler was called.
func (f *FailureRecorder) Reports() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reports)
}

// Failures returns every reported listener failure in report order.
func (f *FailureRecorder) Failures() []*ListenerError {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*ListenerError, len(f.failures))
	copy(out, f.failures)
	return out
}
