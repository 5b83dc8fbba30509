package observes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// TracerOption configures the OTLP exporter
type TracerOption struct {
	URL           string
	Name          string
	Version       string
	Revision      string
	Environment   string
	SamplingRate  float64
	BatchTimeout  time.Duration
	ExportTimeout time.Duration
}

// sampler maps a rate to a parent based sampler, rates outside (0,1)
// sample everything
func (o *TracerOption) sampler() sdktrace.Sampler {
	if o.SamplingRate <= 0 || o.SamplingRate >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(o.SamplingRate))
}

func (o *TracerOption) resource(ctx context.Context) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(o.Name),
			semconv.ServiceVersionKey.String(o.Version),
			semconv.DeploymentEnvironmentKey.String(o.Environment),
			attribute.String("service.revision", o.Revision),
		),
	)
}

// NewTracer installs the global tracer provider exporting spans over
// OTLP/gRPC. The returned function flushes pending spans and stops the
// provider.
func NewTracer(ctx context.Context, opt *TracerOption) (func(context.Context) error, error) {
	if opt == nil || opt.URL == "" {
		return nil, errors.New("tracer endpoint is required")
	}

	exportTimeout := opt.ExportTimeout
	if exportTimeout <= 0 {
		exportTimeout = 30 * time.Second
	}
	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(opt.URL),
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithTimeout(exportTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	res, err := opt.resource(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	batch := []sdktrace.BatchSpanProcessorOption{sdktrace.WithExportTimeout(exportTimeout)}
	if opt.BatchTimeout > 0 {
		batch = append(batch, sdktrace.WithBatchTimeout(opt.BatchTimeout))
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(opt.sampler()),
		sdktrace.WithBatcher(exp, batch...),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp.Shutdown, nil
}
