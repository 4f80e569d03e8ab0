package middleware

import (
	"context"
	"time"

	"github.com/vango-dev/statebind/pkg/async"
	"github.com/vango-dev/statebind/pkg/bind"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for statebind definitions.
const defaultTracerName = "statebind"

// OTelConfig configures the OpenTelemetry observer.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "statebind").
	TracerName string

	// TracerProvider provides the tracer.
	// Default: the global provider from otel.GetTracerProvider.
	TracerProvider trace.TracerProvider

	// Filter determines which actions to trace.
	// Return true to trace the action, false to skip.
	// If nil, all actions are traced.
	Filter func(component, action string) bool

	// AttributeExtractor adds custom attributes to each action span.
	AttributeExtractor func(ctx context.Context, component, action string) []attribute.KeyValue

	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry observer.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithActionFilter sets a filter function for actions.
func WithActionFilter(filter func(component, action string) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ctx context.Context, component, action string) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// Tracing is a bind.Observer that traces actions with OpenTelemetry.
type Tracing struct {
	config OTelConfig
}

var _ bind.Observer = (*Tracing)(nil)

// OpenTelemetry creates an observer that opens a span per action invocation.
// The span ends once the action's changes were flushed and records the
// action error, if any. Forced renders during the action are added as span
// events.
func OpenTelemetry(opts ...OTelOption) *Tracing {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	config.tracer = tp.Tracer(config.TracerName)

	return &Tracing{config: config}
}

// spanKey marks contexts that carry a span opened by this observer.
type spanKey struct{}

// ActionStarted implements bind.Observer.
func (o *Tracing) ActionStarted(ctx context.Context, component, action string) context.Context {
	if o.config.Filter != nil && !o.config.Filter(component, action) {
		return ctx
	}

	attrs := []attribute.KeyValue{
		attribute.String("statebind.component", component),
		attribute.String("statebind.action", action),
	}
	if o.config.AttributeExtractor != nil {
		attrs = append(attrs, o.config.AttributeExtractor(ctx, component, action)...)
	}

	spanCtx, span := o.config.tracer.Start(ctx, "statebind.action "+action,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(time.Now()),
	)
	return context.WithValue(spanCtx, spanKey{}, span)
}

// ActionFinished implements bind.Observer.
func (o *Tracing) ActionFinished(ctx context.Context, _, _ string, elapsed time.Duration, err error) {
	span := SpanFromContext(ctx)
	if span == nil {
		return
	}
	defer span.End()

	span.SetAttributes(attribute.Int64("statebind.duration_ms", elapsed.Milliseconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

// Rendered implements bind.Observer.
func (o *Tracing) Rendered(ctx context.Context, _, reason string, changes int) {
	span := SpanFromContext(ctx)
	if span == nil {
		return
	}
	span.AddEvent("statebind.render", trace.WithAttributes(
		attribute.String("statebind.reason", reason),
		attribute.Int("statebind.changes", changes),
	))
}

// LoadableSettled implements bind.Observer.
func (o *Tracing) LoadableSettled(ctx context.Context, component, binding string, phase async.Phase) {
	_, span := o.config.tracer.Start(ctx, "statebind.loadable "+binding,
		trace.WithAttributes(
			attribute.String("statebind.component", component),
			attribute.String("statebind.binding", binding),
			attribute.String("statebind.phase", phase.String()),
		),
	)
	if phase == async.HasError {
		span.SetStatus(codes.Error, "loadable rejected")
	}
	span.End()
}

// SpanFromContext retrieves the action span opened by OpenTelemetry.
// Returns nil if no action span is available.
//
// Example:
//
//	func save(ctx context.Context) error {
//	    if span := middleware.SpanFromContext(ctx); span != nil {
//	        span.SetAttributes(attribute.Int("rows", 42))
//	    }
//	    return nil
//	}
func SpanFromContext(ctx context.Context) trace.Span {
	if ctx == nil {
		return nil
	}
	span, _ := ctx.Value(spanKey{}).(trace.Span)
	return span
}
