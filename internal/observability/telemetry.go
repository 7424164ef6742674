package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/annel0/voxel-engine/internal/logging"
)

// DefaultEndpoint адрес OTLP HTTP коллектора по умолчанию
const DefaultEndpoint = "localhost:4318"

// ShutdownFunc завершает экспорт трейсов
type ShutdownFunc func(context.Context) error

// NoopShutdown используется, когда телеметрия выключена
func NoopShutdown(context.Context) error { return nil }

// Options содержит параметры телеметрии
type Options struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string // host:port OTLP HTTP, по умолчанию DefaultEndpoint

	// Доля сэмплируемых корневых спанов (0..1]. 0 означает все спаны.
	// Каждая задача чанка порождает спан, поэтому на больших мирах имеет смысл 0.01-0.1.
	SampleRatio float64
}

func (o Options) sampler() (trace.Sampler, error) {
	switch {
	case o.SampleRatio == 0 || o.SampleRatio == 1:
		return trace.ParentBased(trace.AlwaysSample()), nil
	case o.SampleRatio < 0 || o.SampleRatio > 1:
		return nil, fmt.Errorf("telemetry: sample ratio %v out of range (0, 1]", o.SampleRatio)
	default:
		return trace.ParentBased(trace.TraceIDRatioBased(o.SampleRatio)), nil
	}
}

// InitTelemetry настраивает OTLP экспортер и устанавливает глобальный TracerProvider.
// Задачи мира и otelgin берут трейсер из глобального провайдера, поэтому без вызова
// InitTelemetry их спаны ничего не делают.
func InitTelemetry(ctx context.Context, opts Options) (ShutdownFunc, error) {
	sampler, err := opts.sampler()
	if err != nil {
		return nil, err
	}

	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	exp, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create exporter: %w", err)
	}

	attrs := []attribute.KeyValue{semconv.ServiceName(opts.ServiceName)}
	if opts.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(opts.ServiceVersion))
	}
	res, err := resource.New(ctx, resource.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(res),
		trace.WithSampler(sampler),
	)
	otel.SetTracerProvider(tp)

	logging.Info("📡 OpenTelemetry инициализирован (OTLP → %s, service=%s, sample=%v)",
		endpoint, opts.ServiceName, opts.SampleRatio)

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}, nil
}
