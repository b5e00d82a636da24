// Package tracing provides OpenTelemetry tracing for the navigation
// engine's edges (pkg/session, pkg/routeparser, pkg/server, cmd/navmcp);
// the pure core in pkg/nav and below never imports it.
//
// By default every helper is backed by a no-op tracer, so the engine can
// be embedded without an OTLP collector anywhere in sight. Setting
// OTLP_ENDPOINT upgrades the package to a batching OTLP/gRPC exporter.
package tracing

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ServiceName identifies the engine in exported traces.
const ServiceName = "navengine"

// TracerName is the instrumentation scope name.
const TracerName = "github.com/NERVsystems/navengine"

// Tracer is the package-level tracer every edge helper routes through.
// It stays a no-op unless InitTracing finds an OTLP_ENDPOINT.
var Tracer trace.Tracer = noop.NewTracerProvider().Tracer(TracerName)

const shutdownTimeout = 5 * time.Second

// InitTracing wires the global tracer to an OTLP/gRPC exporter when
// OTLP_ENDPOINT is set, and leaves the no-op tracer in place otherwise.
// The returned shutdown func flushes the batch pipeline; it is safe to
// call even when tracing stayed disabled.
func InitTracing(ctx context.Context, version string) (shutdown func(context.Context) error, err error) {
	endpoint := os.Getenv("OTLP_ENDPOINT")
	if endpoint == "" {
		Tracer = noop.NewTracerProvider().Tracer(TracerName)
		return func(context.Context) error { return nil }, nil
	}

	provider, err := newProvider(ctx, endpoint, version)
	if err != nil {
		return nil, err
	}

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	Tracer = provider.Tracer(TracerName)

	return func(ctx context.Context) error {
		flushCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		return provider.Shutdown(flushCtx)
	}, nil
}

// newProvider builds the batching tracer provider behind InitTracing: an
// OTLP/gRPC span exporter pointed at endpoint, described by a resource
// that names this engine and its build version.
func newProvider(ctx context.Context, endpoint, version string) (*sdktrace.TracerProvider, error) {
	engineInfo, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(version),
			attribute.String("service.environment", environment()),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("describing tracing resource: %w", err)
	}

	spanExporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(), // TODO: Add TLS support
	))
	if err != nil {
		return nil, fmt.Errorf("dialing OTLP trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sampler()),
		sdktrace.WithResource(engineInfo),
		sdktrace.WithBatcher(spanExporter),
	), nil
}

// sampler honors OTLP_SAMPLE_RATIO when it lies strictly between 0 and 1;
// anything else (unset, unparseable, <= 0 or >= 1) samples everything, which is the right default for a single-session
// debugging harness.
func sampler() sdktrace.Sampler {
	ratio, err := strconv.ParseFloat(os.Getenv("OTLP_SAMPLE_RATIO"), 64)
	if err != nil || ratio <= 0 || ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

func environment() string {
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		return env
	}
	return "development"
}

// StartSpan starts a span on the package tracer.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer.Start(ctx, name, opts...)
}

// RecordError records err on the span carried by ctx, if any is recording.
func RecordError(ctx context.Context, err error, opts ...trace.EventOption) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.RecordError(err, opts...)
	}
}

// SetAttributes sets attributes on the span carried by ctx, if any is
// recording.
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(attrs...)
	}
}
