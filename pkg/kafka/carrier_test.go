package kafka

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestHeaderCarrier_SetAndGet(t *testing.T) {
	headers := []kafka.Header{{Key: "existing", Value: []byte("value1")}}
	carrier := NewHeaderCarrier(&headers)

	assert.Equal(t, "value1", carrier.Get("existing"))
	assert.Empty(t, carrier.Get("missing"))

	carrier.Set("new-key", "new-value")
	assert.Equal(t, "new-value", carrier.Get("new-key"))

	carrier.Set("existing", "updated")
	assert.Equal(t, "updated", carrier.Get("existing"))
	assert.Len(t, headers, 2, "overwrite must not append a duplicate header")
}

func TestHeaderCarrier_Keys(t *testing.T) {
	headers := []kafka.Header{
		{Key: "a", Value: []byte("1")},
		{Key: "b", Value: []byte("2")},
	}
	assert.ElementsMatch(t, []string{"a", "b"}, NewHeaderCarrier(&headers).Keys())

	var empty []kafka.Header
	assert.Empty(t, NewHeaderCarrier(&empty).Keys())
}

func TestHeaderCarrier_TraceContextRoundTrip(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	var headers []kafka.Header
	prop := propagation.TraceContext{}
	prop.Inject(ctx, NewHeaderCarrier(&headers))

	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
		NewHeaderCarrier(&headers).Get("traceparent"))

	extracted := trace.SpanContextFromContext(prop.Extract(context.Background(), NewHeaderCarrier(&headers)))
	assert.Equal(t, traceID, extracted.TraceID())
}
