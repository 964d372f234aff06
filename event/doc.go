// Package event provides the synchronous in-process event bus used by the
// engine modules to notify each other.
//
// A Bus keeps a registry of listeners keyed by event type plus a separate set
// of wildcard listeners. Emit delivers an event to every matching listener in
// registration order, type-specific listeners first, then wildcard listeners,
// on the caller's goroutine.
//
// Basic example:
//
//	bus := event.NewBus(event.WithName("engine"), event.WithLogger(logger))
//
//	unsubscribe := bus.Subscribe("points.added", event.Func(func(ctx context.Context, ev event.Event) error {
//	    fmt.Println("points for", ev.PlayerID)
//	    return nil
//	}))
//	defer unsubscribe()
//
//	bus.Emit(ctx, event.New("points.added", "player-1", PointsAdded{Delta: 10}))
//
// Wildcards:
// Subscribe with the reserved type "*" (or call SubscribeAll) to receive
// every event. Wildcard listeners are stored apart from the type registry and
// never show up in EventTypes.
//
// Failure isolation:
// A listener fails by returning an error or by panicking. Emit recovers both,
// keeps notifying the remaining listeners and never returns an error. The
// failures of one emission are aggregated (go.uber.org/multierr) and handed
// to the bus error handler once every listener has run. The default handler
// writes a rate limited slog error line; install your own with
// WithErrorHandler and split the aggregate with Failures.
//
// Detached listeners:
// Listeners built with Detached (or wrapped with Detach) run on their own
// goroutine. Emit starts them and returns without waiting; their failures
// are reported through the same error handler after the fact. Ordering between detached work and later
// emissions is unspecified. Wait blocks until detached work has finished.
//
// Typed listeners:
// Typed converts the untyped payload to the type a listener expects using
// the payload package:
//
//	bus.Subscribe("points.added", event.Typed(func(ctx context.Context, ev event.Event, p PointsAdded) error {
//	    return award(ctx, ev.PlayerID, p.Delta)
//	}))
//
// Bus Options:
//   - WithName: name used in logs and telemetry. Default is "event-bus".
//   - WithLogger: set the slog logger. Default is slog.Default().
//   - WithErrorHandler: replace the default failure logging.
//   - WithFailureLogLimit: rate limit for the default failure logging.
//   - WithTracing: enable/disable OpenTelemetry spans. Default is true.
//   - WithMetrics: enable/disable OpenTelemetry metrics. Default is true.
//   - WithDetachedTimeout: deadline applied to detached listeners.
//
// Concurrency:
// The registry is guarded by a mutex and Emit dispatches over a snapshot, so
// listeners may subscribe or unsubscribe (themselves included) while an
// emission is in flight. Such changes apply from the next Emit.
package event
