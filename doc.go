// Package core holds the infrastructure shared by the Temify gamification
// engine modules: the in-process event bus (package event), the field
// validator (package validate) and the error taxonomy defined here.
//
// Domain modules such as metrics, achievements, streaks or quests sit on top
// of these primitives. They emit events through an event.Bus and check their
// inputs with a validate.Validator before committing state.
//
// Basic example:
//
//	bus := event.NewBus(event.WithLogger(logger))
//	unsubscribe := bus.Subscribe("points.added", event.Func(func(ctx context.Context, ev event.Event) error {
//	    fmt.Println("points for", ev.PlayerID)
//	    return nil
//	}))
//	defer unsubscribe()
//
//	bus.Emit(ctx, event.New("points.added", "player-1", Points{Delta: 10}))
//
//	v := validate.New[Points]().
//	    Rule(validate.Required[Points]("metric", "")).
//	    Rule(validate.Min[Points]("delta", 1, ""))
//	if err := v.ValidateOrError(points); err != nil {
//	    return err // *core.Error with code VALIDATION_ERROR
//	}
//
// Errors:
// Failures that reach a caller are reported as *Error values carrying a
// machine readable code. Use errors.Is with ErrValidation, ErrInvariant or
// ErrConfiguration to classify them.
package core

// Version of the core module.
const Version = "0.1.0"
