package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLoggerTraceError(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "INSERT INTO products", 0
	}, errors.New("duplicate key"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "SQL Error", entries[0].Message)
}

func TestGormLoggerIgnoresRecordNotFound(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM categories", 0
	}, gormlogger.ErrRecordNotFound)

	assert.Empty(t, logs.All())
}

func TestGormLoggerSlowQuery(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(time.Nanosecond))

	gl.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT * FROM products", 100
	}, nil)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "SLOW SQL")
}

func TestGormLoggerRunCorrelation(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info)

	ctx, _ := WithRun(context.Background(), zap.NewNop(), "SITEX", 11)
	gl.Trace(ctx, time.Now(), func() (string, int64) {
		return "UPDATE products SET name = $1", 1
	}, nil)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(11), entries[0].ContextMap()["run_id"])
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("anything"))
}
