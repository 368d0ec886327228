package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	t.Run("missing logger yields nop", func(t *testing.T) {
		l := FromContext(context.Background())
		assert.NotNil(t, l)
	})

	t.Run("round trip", func(t *testing.T) {
		l := zap.NewExample()
		ctx := WithContext(context.Background(), l)
		assert.Same(t, l, FromContext(ctx))
	})
}

func TestWithIDs(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx, _ := WithRequestID(context.Background(), base, "req-1")
	ctx, l := WithProfileID(ctx, FromContext(ctx), "profile-9")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "profile-9", GetProfileID(ctx))
	assert.Empty(t, GetRequestID(context.Background()))

	l.Info("hello")
	entry := recorded.All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "profile-9", fields["profile_id"])
}

func TestL_AddsTraceContext(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))

	L(ctx).Info("no span")
	assert.NotContains(t, recorded.All()[0].ContextMap(), "trace_id")

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(ctx, "op")
	defer span.End()

	L(ctx).Info("with span")
	fields := recorded.All()[1].ContextMap()
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
	assert.Equal(t, span.SpanContext().TraceID().String(), GetTraceID(ctx))
}
