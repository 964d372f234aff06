package event

import (
	"context"
	"log/slog"

	"github.com/temify/core/event/payload"
)

const (
	deliveryContextKey contextKey = iota
)

// contextKey
type contextKey int

// delivery describes the invocation a listener is running in.
type delivery struct {
	bus           string
	subID         string
	eventType     string
	correlationID string
	wildcard      bool
	logger        *slog.Logger
	codec         payload.Codec
}

func contextWithDelivery(ctx context.Context, b *Bus, ev Event, s *subscription) context.Context {
	return context.WithValue(ctx, deliveryContextKey, &delivery{
		bus:           b.name,
		subID:         s.id,
		eventType:     ev.Type,
		correlationID: ev.CorrelationID(),
		wildcard:      s.wildcard,
		logger:        b.logger,
		codec:         b.codec,
	})
}

func deliveryFrom(ctx context.Context) *delivery {
	d, _ := ctx.Value(deliveryContextKey).(*delivery)
	return d
}

// ContextBusName returns the name of the bus delivering the current event.
func ContextBusName(ctx context.Context) string {
	if d := deliveryFrom(ctx); d != nil {
		return d.bus
	}
	return ""
}

// ContextSubscriptionID returns the id of the subscription being notified.
func ContextSubscriptionID(ctx context.Context) string {
	if d := deliveryFrom(ctx); d != nil {
		return d.subID
	}
	return ""
}

// ContextCorrelationID returns the correlation id of the event being
// delivered.
func ContextCorrelationID(ctx context.Context) string {
	if d := deliveryFrom(ctx); d != nil {
		return d.correlationID
	}
	return ""
}

// ContextWildcard reports whether the listener was registered with
// SubscribeAll.
func ContextWildcard(ctx context.Context) bool {
	if d := deliveryFrom(ctx); d != nil {
		return d.wildcard
	}
	return false
}

// ContextCodec returns the payload codec of the delivering bus, or
// payload.Default() outside a delivery.
func ContextCodec(ctx context.Context) payload.Codec {
	if d := deliveryFrom(ctx); d != nil && d.codec != nil {
		return d.codec
	}
	return payload.Default()
}

// ContextLogger returns the bus logger annotated with the current delivery,
// or slog.Default() outside a delivery.
func ContextLogger(ctx context.Context) *slog.Logger {
	d := deliveryFrom(ctx)
	if d == nil || d.logger == nil {
		return slog.Default()
	}
	return d.logger.With(
		"event", d.eventType,
		"subscription", d.subID,
		"correlation_id", d.correlationID,
	)
}

// ContextWithEventFromContext copies the delivery information of from into
// to. Use it when a listener hands work to a context it does not derive
// from the one it received.
func ContextWithEventFromContext(to, from context.Context) context.Context {
	if d := deliveryFrom(from); d != nil {
		return context.WithValue(to, deliveryContextKey, d)
	}
	return to
}

// NewContext returns a background context carrying the delivery
// information of ctx.
func NewContext(ctx context.Context) context.Context {
	return ContextWithEventFromContext(context.Background(), ctx)
}
