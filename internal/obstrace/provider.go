package obstrace

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// ProviderConfig configures the OTLP/HTTP exporter NewProvider builds.
// Endpoint is the collector's host:port (e.g. "localhost:4318"); an empty
// Endpoint uses the exporter's own default.
type ProviderConfig struct {
	Endpoint string
	Insecure bool
}

// NewProvider builds a TracerProvider that exports spans over OTLP/HTTP and
// installs it as the global provider, so StartHook's package-level
// otel.Tracer call starts producing real spans instead of no-op ones. The
// returned shutdown func must be called before process exit to flush
// pending spans; callers that never enable tracing never call this and pay
// no exporter cost (StartHook/MarkResult degrade to the no-op tracer).
func NewProvider(ctx context.Context, cfg ProviderConfig) (shutdown func(context.Context) error, err error) {
	opts := []otlptracehttp.Option{}
	if cfg.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("build otlp trace exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(traceScope)))
	if err != nil {
		return nil, fmt.Errorf("build trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
