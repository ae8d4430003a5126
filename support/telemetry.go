package support

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc/credentials"
)

func ConsoleExporter() (trace.SpanExporter, error) {
	return stdouttrace.New(stdouttrace.WithPrettyPrint())
}

// OTLPExporter honours the standard OTEL_EXPORTER_OTLP_* variables; endpoint overrides them when set.
func OTLPExporter(ctx context.Context, endpoint string) (*otlptrace.Exporter, error) {
	var opts []otlptracegrpc.Option
	if endpoint != "" {
		opts = append(opts, otlptracegrpc.WithEndpoint(endpoint))
	}

	return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
}

func HoneycombExporter(ctx context.Context, team string, dataset string) (*otlptrace.Exporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint("api.honeycomb.io:443"),
		otlptracegrpc.WithHeaders(map[string]string{
			"x-honeycomb-team":    team,
			"x-honeycomb-dataset": dataset,
		}),
		otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")),
	}

	client := otlptracegrpc.NewClient(opts...)
	return otlptrace.New(ctx, client)
}

func JaegerExporter(endpoint string) (*jaeger.Exporter, error) {
	return jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
}

func exporter(ctx context.Context, cfg Config) (trace.SpanExporter, error) {
	switch cfg.Traces {
	case TracesConsole:
		return ConsoleExporter()
	case TracesOTLP:
		return OTLPExporter(ctx, cfg.OTLPEndpoint)
	case TracesHoneycomb:
		return HoneycombExporter(ctx, cfg.HoneycombKey, cfg.HoneycombDataset)
	case TracesJaeger:
		return JaegerExporter(cfg.JaegerEndpoint)
	default:
		return nil, nil
	}
}

// Tracing installs the global tracer provider. The returned function flushes and
// stops it; it is a no-op when tracing is disabled.
func Tracing(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	spans, err := exporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if spans == nil {
		return func(context.Context) error { return nil }, nil
	}

	provider := trace.NewTracerProvider(trace.WithBatcher(spans))
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}

// FlushTracing exports buffered spans. It does nothing when tracing is disabled.
func FlushTracing(ctx context.Context) error {
	if provider, ok := otel.GetTracerProvider().(*trace.TracerProvider); ok {
		return provider.ForceFlush(ctx)
	}

	return nil
}
