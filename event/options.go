package event

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/temify/core/event/payload"
)

// DefaultBusName is used when no name is configured.
var DefaultBusName = "event-bus"

// Default limits for the built-in failure logging.
var (
	DefaultFailureLogRate  = 10.0
	DefaultFailureLogBurst = 20
)

// ErrorHandler receives the failures of one emission (or of one detached
// listener) after they happened. Use Failures to split err.
type ErrorHandler func(ctx context.Context, ev Event, err error)

// busOptions holds configuration for bus (unexported)
type busOptions struct {
	name            string
	logger          *slog.Logger
	onError         ErrorHandler
	tracingEnabled  bool
	metricsEnabled  bool
	tracerProvider  trace.TracerProvider
	meterProvider   metric.MeterProvider
	failureLogRate  float64
	failureLogBurst int
	detachedTimeout time.Duration
	codec           payload.Codec
}

// Option configures a Bus.
type Option func(*busOptions)

// WithName sets the bus name used in logs, spans and metrics.
func WithName(name string) Option {
	return func(o *busOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger sets a custom logger for the bus
func WithLogger(l *slog.Logger) Option {
	return func(o *busOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithErrorHandler replaces the default failure logging.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(o *busOptions) {
		if fn != nil {
			o.onError = fn
		}
	}
}

// WithTracing enables/disables OpenTelemetry spans around Emit.
func WithTracing(enabled bool) Option {
	return func(o *busOptions) {
		o.tracingEnabled = enabled
	}
}

// WithMetrics enables/disables OpenTelemetry metrics.
func WithMetrics(enabled bool) Option {
	return func(o *busOptions) {
		o.metricsEnabled = enabled
	}
}

// WithTracerProvider sets the tracer provider. Default is the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *busOptions) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// WithMeterProvider sets the meter provider. Default is the global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *busOptions) {
		if mp != nil {
			o.meterProvider = mp
		}
	}
}

// WithFailureLogLimit bounds how many failure reports per second the default
// error handler logs. Reports over the limit are counted and summarized in
// the next line that gets through. rps <= 0 disables the limit.
func WithFailureLogLimit(rps float64, burst int) Option {
	return func(o *busOptions) {
		o.failureLogRate = rps
		o.failureLogBurst = burst
	}
}

// WithDetachedTimeout sets a deadline for each detached listener.
// Zero means no deadline.
func WithDetachedTimeout(d time.Duration) Option {
	return func(o *busOptions) {
		if d >= 0 {
			o.detachedTimeout = d
		}
	}
}

// WithPayloadCodec sets the codec Typed listeners convert payloads with.
// Listeners built with TypedWith keep their own codec.
func WithPayloadCodec(c payload.Codec) Option {
	return func(o *busOptions) {
		if c != nil {
			o.codec = c
		}
	}
}

// newBusOptions creates options with defaults and applies provided options
func newBusOptions(opts ...Option) *busOptions {
	o := &busOptions{
		name:            DefaultBusName,
		logger:          slog.Default(),
		tracingEnabled:  true,
		metricsEnabled:  true,
		failureLogRate:  DefaultFailureLogRate,
		failureLogBurst: DefaultFailureLogBurst,
		codec:           payload.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}
	if o.meterProvider == nil {
		o.meterProvider = otel.GetMeterProvider()
	}
	return o
}
