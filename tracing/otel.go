package tracing

import (
	"context"
	"strings"

	"github.com/chetch/services/errors"
	"github.com/chetch/services/settings"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// InitTracer installs an OTLP exporter when the settings name an endpoint. The returned function
// flushes and shuts the exporter down; it is a no-op when nothing was installed.
func InitTracer(ctx context.Context, serviceName string, tSettings settings.TracingSettings) (func(context.Context) error, error) {
	if tSettings.OtlpEndpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	return InitOtelTracer(ctx, serviceName, tSettings.OtlpEndpoint, tSettings.SampleRate)
}

// InitOtelTracer exports spans over OTLP/HTTP.
// endpoint: host:port, or a full URL
// samplingRate: the rate at which to sample traces (0.0 - 1.0)
func InitOtelTracer(ctx context.Context, serviceName, endpoint string, samplingRate float64) (func(context.Context) error, error) {
	opts := []otlptracehttp.Option{}
	if strings.Contains(endpoint, "://") {
		opts = append(opts, otlptracehttp.WithEndpointURL(endpoint))
	} else {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	}

	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, errors.NewConfigurationError("cannot create otlp trace exporter for %s", endpoint, err)
	}

	tp := tracesdk.NewTracerProvider(
		// Always be sure to batch in production.
		tracesdk.WithBatcher(exp),
		tracesdk.WithSampler(tracesdk.ParentBased(tracesdk.TraceIDRatioBased(samplingRate))),
		// Record information about this application in a Resource.
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		)),
	)

	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
