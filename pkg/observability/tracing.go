package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of ontoflow spans.
const TracerName = "github.com/matzehuels/ontoflow"

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// ServiceName is the name of the service (default: "ontoflow")
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// OTLPEndpoint is the OTLP gRPC endpoint (e.g., "localhost:4317").
	// If empty, tracing is disabled.
	OTLPEndpoint string

	// SampleRate is the trace sampling rate (0.0 to 1.0, default: 1.0)
	SampleRate float64
}

// DefaultTracingConfig returns a configuration with tracing disabled.
func DefaultTracingConfig() *TracingConfig {
	return &TracingConfig{
		ServiceName: "ontoflow",
		SampleRate:  1.0,
	}
}

// TracerProvider wraps the OpenTelemetry tracer provider.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// InitTracing initializes OpenTelemetry tracing.
// Returns a no-op tracer if OTLPEndpoint is empty.
func InitTracing(ctx context.Context, cfg *TracingConfig) (*TracerProvider, error) {
	if cfg == nil {
		cfg = DefaultTracingConfig()
	}
	if cfg.OTLPEndpoint == "" {
		return &TracerProvider{tracer: otel.Tracer(TracerName)}, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(Sampler(cfg.SampleRate)),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &TracerProvider{
		provider: provider,
		tracer:   provider.Tracer(TracerName),
	}, nil
}

// Sampler maps a sampling rate to an OpenTelemetry sampler.
func Sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Shutdown flushes and stops the tracer provider.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.provider != nil {
		return tp.provider.Shutdown(ctx)
	}
	return nil
}

// Tracer returns the underlying tracer.
func (tp *TracerProvider) Tracer() trace.Tracer {
	return tp.tracer
}

// Enabled reports whether spans are exported.
func (tp *TracerProvider) Enabled() bool { return tp.provider != nil }

// StartLayoutSpan starts a span for one layout computation.
func StartLayoutSpan(ctx context.Context, algorithm string, nodeCount, edgeCount int) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "layout."+algorithm,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("layout.algorithm", algorithm),
			attribute.Int("layout.node_count", nodeCount),
			attribute.Int("layout.edge_count", edgeCount),
		),
	)
}

// RecordLayoutResult records the outcome of a layout computation.
func RecordLayoutResult(span trace.Span, routed int, duration time.Duration) {
	span.SetAttributes(
		attribute.Int("layout.routed_edges", routed),
		attribute.Int64("layout.duration_ms", duration.Milliseconds()),
	)
}

// StartToggleSpan starts a span for a toggle and the topology update it
// triggers.
func StartToggleSpan(ctx context.Context, anchor, dependent string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "topology.toggle",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("toggle.anchor", anchor),
			attribute.String("toggle.dependent", dependent),
		),
	)
}

// RecordTopologyResult records the size of a recomputed view.
func RecordTopologyResult(span trace.Span, visible, edges, affected int) {
	span.SetAttributes(
		attribute.Int("topology.visible", visible),
		attribute.Int("topology.edges", edges),
		attribute.Int("topology.affected", affected),
	)
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
