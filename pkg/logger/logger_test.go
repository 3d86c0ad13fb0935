package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestNewWithWriter_ServiceField(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("storefront", "info", &buf).Info("ready")

	out := decodeLine(t, &buf)
	assert.Equal(t, "storefront", out["service"])
	assert.Equal(t, "ready", out["msg"])
}

func TestNewWithWriter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("storefront", "warn", &buf)
	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	NewText("storefrontctl", "info", &buf).Info("refreshed", slog.Int("products", 3))
	assert.True(t, strings.Contains(buf.String(), "products=3"))
}

func TestWithContext_RequestFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("test", "info", &buf)

	ctx := WithCorrelationID(context.Background(), "req-123")
	ctx = WithUserID(ctx, "user-7")
	ctx = WithLocale(ctx, "ar")
	WithContext(ctx, l).Info("hello")

	out := decodeLine(t, &buf)
	assert.Equal(t, "req-123", out["correlation_id"])
	assert.Equal(t, "user-7", out["user_id"])
	assert.Equal(t, "ar", out["locale"])
}

func TestWithContext_EmptyContextAddsNothing(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("test", "info", &buf)

	WithContext(context.Background(), l).Info("bare")

	out := decodeLine(t, &buf)
	for _, k := range []string{"correlation_id", "user_id", "locale", "trace_id", "span_id"} {
		_, ok := out[k]
		assert.False(t, ok, "%s should be absent", k)
	}
}

func TestWithContext_WithValidSpan(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("test", "info", &buf)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	WithContext(ctx, l).Info("with span")

	out := decodeLine(t, &buf)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", out["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", out["span_id"])
}

func TestFromContext(t *testing.T) {
	l := NewWithWriter("test", "info", &bytes.Buffer{})
	assert.Same(t, l, FromContext(NewContext(context.Background(), l)))
	assert.NotNil(t, FromContext(context.Background()))
}
