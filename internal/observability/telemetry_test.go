package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTelemetry(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	shutdown, err := InitTelemetry(context.Background(), Options{
		ServiceName: "voxel-test",
		Endpoint:    "127.0.0.1:4318",
	})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.IsType(t, &sdktrace.TracerProvider{}, otel.GetTracerProvider(), "глобальный провайдер должен быть заменён")
	assert.NoError(t, shutdown(context.Background()), "без спанов завершение не обращается к коллектору")
}

func TestInitTelemetry_SampleRatio(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	for _, ratio := range []float64{-0.5, 1.5} {
		_, err := InitTelemetry(context.Background(), Options{ServiceName: "voxel-test", SampleRatio: ratio})
		assert.Error(t, err, "доля %v вне диапазона", ratio)
	}

	shutdown, err := InitTelemetry(context.Background(), Options{
		ServiceName:    "voxel-test",
		ServiceVersion: "test",
		SampleRatio:    0.1,
	})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNoopShutdown(t *testing.T) {
	assert.NoError(t, NoopShutdown(context.Background()))
}
