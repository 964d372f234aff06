package event

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"

	"github.com/temify/core/event/payload"
	"github.com/temify/core/ratelimit"
)

const (
	spanKeyBus           = "event.bus"
	spanKeyEventType     = "event.type"
	spanKeyPlayerID      = "event.player_id"
	spanKeyCorrelationID = "event.correlation_id"
	spanKeyListeners     = "event.listeners"
	spanKeyFailures      = "event.failures"
)

// subscription is one listener registered for one event type.
type subscription struct {
	id        string
	eventType string
	listener  Listener
	wildcard  bool
}

// failure reports err for an event of type eventType. Wildcard
// subscriptions are keyed by "*", so the emitted type is passed in.
func (s *subscription) failure(eventType string, err error, detached bool) *ListenerError {
	return &ListenerError{
		EventType:      eventType,
		SubscriptionID: s.id,
		Wildcard:       s.wildcard,
		Detached:       detached,
		Err:            err,
	}
}

// Bus is a synchronous in-process event dispatcher.
//
// Listener lists are copy-on-write: mutations build a new slice, so Emit can
// iterate the slice it read without holding the lock.
type Bus struct {
	name            string
	logger          *slog.Logger
	onError         ErrorHandler
	tracer          trace.Tracer
	metrics         *busMetrics
	throttle        *ratelimit.Throttle
	detachedTimeout time.Duration
	codec           payload.Codec

	mu        sync.RWMutex
	listeners map[string][]*subscription
	wildcard  []*subscription

	detached sync.WaitGroup
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	o := newBusOptions(opts...)
	bucket := ratelimit.NewTokenBucket(o.failureLogRate, o.failureLogBurst)

	b := &Bus{
		name:            o.name,
		logger:          o.logger.With("component", "bus>"+o.name),
		onError:         o.onError,
		throttle:        ratelimit.NewThrottle(bucket),
		detachedTimeout: o.detachedTimeout,
		codec:           o.codec,
		listeners:       make(map[string][]*subscription),
	}
	if o.tracingEnabled {
		b.tracer = o.tracerProvider.Tracer(instrumentationName)
	}
	if o.metricsEnabled {
		b.metrics = newBusMetrics(o.meterProvider, o.name)
	}
	if b.onError == nil {
		b.onError = b.logFailures
	}
	if bucket.Unlimited() {
		b.logger.Debug("bus created", "codec", b.codec.ContentType(), "failure_log", "unlimited")
	} else {
		b.logger.Debug("bus created", "codec", b.codec.ContentType(),
			"failure_log_rate", bucket.Limit(), "failure_log_burst", bucket.Burst())
	}
	return b
}

// Codec returns the codec Typed listeners use to convert payloads on this
// bus.
func (b *Bus) Codec() payload.Codec {
	return b.codec
}

// Name returns the bus name
func (b *Bus) Name() string {
	return b.name
}

// Subscribe registers l for eventType and returns a function that removes
// it again. The type Wildcard subscribes l to every event (see
// SubscribeAll).
//
// Subscribing a listener that is already registered for eventType is a
// no-op; the returned function then removes the existing registration. The
// returned function is safe to call more than once.
func (b *Bus) Subscribe(eventType string, l Listener) func() {
	if eventType == Wildcard {
		return b.SubscribeAll(l)
	}
	return b.subscribe(eventType, l, false)
}

// SubscribeAll registers l for every event type.
func (b *Bus) SubscribeAll(l Listener) func() {
	return b.subscribe(Wildcard, l, true)
}

func (b *Bus) subscribe(eventType string, l Listener, wildcard bool) func() {
	if l == nil {
		return func() {}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.wildcard
	if !wildcard {
		subs = b.listeners[eventType]
	}
	for _, s := range subs {
		if sameListener(s.listener, l) {
			return b.unsubscribeFunc(s)
		}
	}

	s := &subscription{
		id:        NewID(),
		eventType: eventType,
		listener:  l,
		wildcard:  wildcard,
	}
	subs = append(slices.Clip(subs), s)
	if wildcard {
		b.wildcard = subs
	} else {
		b.listeners[eventType] = subs
	}

	b.logger.Debug("subscribed", "event", eventType, "subscription", s.id)
	return b.unsubscribeFunc(s)
}

func (b *Bus) unsubscribeFunc(s *subscription) func() {
	return func() {
		b.remove(s.eventType, s.wildcard, func(cur *subscription) bool {
			return cur == s
		})
	}
}

// Unsubscribe removes l from eventType. It has the same effect as calling
// the function returned by Subscribe, for callers that did not keep it.
// Unknown listeners and types are ignored.
func (b *Bus) Unsubscribe(eventType string, l Listener) {
	if l == nil {
		return
	}
	b.remove(eventType, eventType == Wildcard, func(cur *subscription) bool {
		return sameListener(cur.listener, l)
	})
}

// remove deletes matching subscriptions; a type left without listeners is
// dropped from the registry.
func (b *Bus) remove(eventType string, wildcard bool, match func(*subscription) bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if wildcard {
		if slices.ContainsFunc(b.wildcard, match) {
			b.wildcard = slices.DeleteFunc(slices.Clone(b.wildcard), match)
		}
		return
	}

	subs, ok := b.listeners[eventType]
	if !ok || !slices.ContainsFunc(subs, match) {
		return
	}
	subs = slices.DeleteFunc(slices.Clone(subs), match)
	if len(subs) == 0 {
		delete(b.listeners, eventType)
		return
	}
	b.listeners[eventType] = subs
}

// Emit delivers ev to the listeners registered for ev.Type, in registration
// order, then to the wildcard listeners, in registration order.
//
// Listeners run synchronously on the caller's goroutine, except detached
// ones which are started and not awaited. A failing listener never stops
// the others and Emit never reports an error: failures go to the bus error
// handler after all listeners ran. Events emitted while nobody listens are
// dropped.
func (b *Bus) Emit(ctx context.Context, ev Event) {
	start := time.Now()

	b.mu.RLock()
	typed := b.listeners[ev.Type]
	wildcard := b.wildcard
	b.mu.RUnlock()

	var span trace.Span
	if b.tracer != nil {
		ctx, span = b.tracer.Start(ctx, fmt.Sprintf("%s.emit", ev.Type),
			trace.WithAttributes(
				attribute.String(spanKeyBus, b.name),
				attribute.String(spanKeyEventType, ev.Type),
				attribute.String(spanKeyPlayerID, string(ev.PlayerID)),
				attribute.String(spanKeyCorrelationID, ev.CorrelationID()),
				attribute.Int(spanKeyListeners, len(typed)+len(wildcard))),
			trace.WithSpanKind(trace.SpanKindProducer))
		defer span.End()
	}

	var errs error
	for _, s := range typed {
		errs = multierr.Append(errs, b.deliver(ctx, ev, s))
	}
	for _, s := range wildcard {
		errs = multierr.Append(errs, b.deliver(ctx, ev, s))
	}

	b.metrics.recordEmit(ctx, ev.Type, time.Since(start))
	if errs == nil {
		return
	}

	failures := multierr.Errors(errs)
	b.metrics.recordFailures(ctx, ev.Type, len(failures), false)
	if span != nil {
		for _, err := range failures {
			span.RecordError(err)
		}
		span.SetAttributes(attribute.Int(spanKeyFailures, len(failures)))
		span.SetStatus(codes.Error, fmt.Sprintf("%d listener(s) failed", len(failures)))
	}
	b.onError(ctx, ev, errs)
}

// deliver runs one listener and converts its error or panic to a
// *ListenerError. Detached listeners are handed off and report later.
func (b *Bus) deliver(ctx context.Context, ev Event, s *subscription) error {
	ctx = contextWithDelivery(ctx, b, ev, s)
	if isDetached(s.listener) {
		b.startDetached(ctx, ev, s)
		return nil
	}
	if lerr := notify(ctx, s.listener, ev); lerr != nil {
		return s.failure(ev.Type, lerr, false)
	}
	return nil
}

// startDetached runs a detached listener on its own goroutine. The bus keeps
// no handle on it other than the wait group used by Wait.
func (b *Bus) startDetached(ctx context.Context, ev Event, s *subscription) {
	ctx = context.WithoutCancel(ctx)
	b.detached.Add(1)
	go func() {
		defer b.detached.Done()

		if b.detachedTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, b.detachedTimeout)
			defer cancel()
		}

		if err := notify(ctx, s.listener, ev); err != nil {
			b.metrics.recordFailures(ctx, ev.Type, 1, true)
			b.onError(ctx, ev, s.failure(ev.Type, err, true))
		}
	}()
}

// notify calls l, recovering a panic as *PanicError.
func notify(ctx context.Context, l Listener, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return l.Notify(ctx, ev)
}

// Wait blocks until every detached listener started so far has returned.
func (b *Bus) Wait() {
	b.detached.Wait()
}

// ListenerCount returns the number of listeners for eventType. Wildcard
// returns the number of wildcard listeners.
func (b *Bus) ListenerCount(eventType string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if eventType == Wildcard {
		return len(b.wildcard)
	}
	return len(b.listeners[eventType])
}

// Clear removes every listener, wildcard ones included.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = make(map[string][]*subscription)
	b.wildcard = nil
}

// EventTypes returns the event types that currently have at least one
// listener, sorted. Wildcard registrations are not included.
func (b *Bus) EventTypes() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Sorted(maps.Keys(b.listeners))
}

// logFailures is the default ErrorHandler.
func (b *Bus) logFailures(ctx context.Context, ev Event, err error) {
	ok, suppressed := b.throttle.Allow()
	if !ok {
		b.metrics.recordDroppedLog(ctx)
		return
	}

	failures := Failures(err)
	attrs := []any{
		"event", ev.Type,
		"player", string(ev.PlayerID),
		"failures", len(failures),
		"error", err,
	}
	if id := ev.CorrelationID(); id != "" {
		attrs = append(attrs, "correlation_id", id)
	}
	if suppressed > 0 {
		attrs = append(attrs, "suppressed", suppressed)
	}
	if len(failures) == 1 && failures[0].Detached {
		b.logger.ErrorContext(ctx, "detached listener failed", attrs...)
		return
	}
	b.logger.ErrorContext(ctx, "listener(s) failed", attrs...)
}
