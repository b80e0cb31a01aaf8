package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// InitTracerProvider registers the global tracer provider backing the
// repository spans. Without an exporter configured the spans stay
// in-process; the provider still gives every span a real context for
// log correlation. The returned func flushes on shutdown.
func InitTracerProvider(serviceName string) (func(context.Context) error, error) {
	res, err := resource.Merge(resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		))
	if err != nil {
		return nil, fmt.Errorf("failed to build tracer resource: %w", err)
	}

	tp := trace.NewTracerProvider(trace.WithResource(res))
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
