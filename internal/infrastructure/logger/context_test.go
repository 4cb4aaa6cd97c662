package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContext(t *testing.T) {
	logger := zap.NewNop()
	ctx := WithContext(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
}

func TestFromContextNotFound(t *testing.T) {
	logger := FromContext(context.Background())
	assert.NotNil(t, logger, "missing logger must fall back to a no-op")
}

func TestWithRequestID(t *testing.T) {
	ctx, enriched := WithRequestID(context.Background(), zap.NewNop(), "req-123")

	assert.NotNil(t, enriched)
	assert.Equal(t, "req-123", GetRequestID(ctx))
}

func TestWithRun(t *testing.T) {
	ctx, enriched := WithRun(context.Background(), zap.NewNop(), "SITEX", 42)

	assert.NotNil(t, enriched)
	assert.Equal(t, "SITEX", GetPlatform(ctx))
	assert.Equal(t, int64(42), GetRunID(ctx))
}

func TestContextLoggerEnrichment(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	ctx, _ := WithRun(context.Background(), logger, "WEBRA", 7)
	ctx, _ = WithRequestID(ctx, logger, "req-9")

	WithLogger(ctx, logger).Info("batch flushed")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "WEBRA", fields["platform"])
	assert.Equal(t, int64(7), fields["run_id"])
	assert.Equal(t, "req-9", fields["request_id"])
}

func TestContextLoggerNilLogger(t *testing.T) {
	cl := &ContextLogger{ctx: context.Background()}
	assert.NotPanics(t, func() { cl.Info("no logger attached") })
}
