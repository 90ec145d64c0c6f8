package tracing

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestTraceparentRoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "reserve")
	defer span.End()

	tpHeader := Traceparent(ctx)
	assert.Contains(t, tpHeader, span.SpanContext().TraceID().String())

	restored := ContextWithTraceparent(context.Background(), tpHeader)
	assert.Equal(t, tpHeader, Traceparent(restored))

	headers := InjectKafkaHeaders(restored, []kafka.Header{{Key: "event_type", Value: []byte("OrderPlaced")}})
	assert.Len(t, headers, 2)
	assert.Equal(t, TraceparentHeader, headers[1].Key)
	assert.Equal(t, tpHeader, string(headers[1].Value))
}

func TestTraceparent_EmptyWithoutSpan(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	assert.Empty(t, Traceparent(context.Background()))
	assert.Equal(t, context.Background(), ContextWithTraceparent(context.Background(), ""))
}
