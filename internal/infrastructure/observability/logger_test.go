package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestLoggerFromContext_NoSpan(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	logger := LoggerFromContext(context.Background())
	logger.Info().Msg("plain")

	assert.Contains(t, buf.String(), `"message":"plain"`)
	assert.NotContains(t, buf.String(), "trace_id")
}

func TestLoggerFromContext_WithSpan(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	traceID := trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}
	spanID := trace.SpanID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	logger := LoggerFromContext(ctx)
	logger.Info().Msg("traced")

	assert.Contains(t, buf.String(), `"trace_id":"`+traceID.String()+`"`)
	assert.Contains(t, buf.String(), `"span_id":"`+spanID.String()+`"`)
}
