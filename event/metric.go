package event

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/temify/core/event"

// busMetrics records bus activity. A nil *busMetrics is a no-op.
type busMetrics struct {
	bus          attribute.KeyValue
	emitted      metric.Int64Counter
	failed       metric.Int64Counter
	logsDropped  metric.Int64Counter
	emitDuration metric.Float64Histogram
}

func newBusMetrics(mp metric.MeterProvider, busName string) *busMetrics {
	meter := mp.Meter(instrumentationName)

	// Instrument errors are ignored; nil instruments are skipped on record.
	emitted, _ := meter.Int64Counter("event.emitted",
		metric.WithDescription("Total number of events emitted"))
	failed, _ := meter.Int64Counter("event.listener.failed",
		metric.WithDescription("Total number of failed listener deliveries"))
	dropped, _ := meter.Int64Counter("event.failure.log.dropped",
		metric.WithDescription("Failure reports suppressed by the log rate limit"))
	duration, _ := meter.Float64Histogram("event.emit.duration",
		metric.WithDescription("Time spent in Emit running synchronous listeners"),
		metric.WithUnit("ms"))

	return &busMetrics{
		bus:          attribute.String(spanKeyBus, busName),
		emitted:      emitted,
		failed:       failed,
		logsDropped:  dropped,
		emitDuration: duration,
	}
}

func (m *busMetrics) recordEmit(ctx context.Context, eventType string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(m.bus, attribute.String(spanKeyEventType, eventType))
	if m.emitted != nil {
		m.emitted.Add(ctx, 1, attrs)
	}
	if m.emitDuration != nil {
		m.emitDuration.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
	}
}

func (m *busMetrics) recordFailures(ctx context.Context, eventType string, n int, detached bool) {
	if m == nil || m.failed == nil || n == 0 {
		return
	}
	m.failed.Add(ctx, int64(n), metric.WithAttributes(
		m.bus,
		attribute.String(spanKeyEventType, eventType),
		attribute.Bool("detached", detached)))
}

func (m *busMetrics) recordDroppedLog(ctx context.Context) {
	if m == nil || m.logsDropped == nil {
		return
	}
	m.logsDropped.Add(ctx, 1, metric.WithAttributes(m.bus))
}
