package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type tracedCategory struct {
	ID   uint   `gorm:"primaryKey"`
	Slug string `gorm:"size:191"`
}

func setupTracedDB(t *testing.T) (*gorm.DB, *tracetest.SpanRecorder) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedCategory{}))

	return db, sr
}

func hasAttribute(attrs []attribute.KeyValue, key string) bool {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return true
		}
	}
	return false
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestRegisterDisabledIsNoop(t *testing.T) {
	db, sr := setupTracedDB(t)

	plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())
	require.NoError(t, plugin.Register(db))

	require.NoError(t, db.Create(&tracedCategory{Slug: "laptops"}).Error)
	assert.Empty(t, sr.Ended())
}

func TestRegisterEnabledRecordsSpans(t *testing.T) {
	db, sr := setupTracedDB(t)

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.DBSystem = "sqlite"
	plugin := NewDBTracingPlugin(cfg, zap.NewNop())
	require.NoError(t, plugin.Register(db))

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&tracedCategory{Slug: "laptops"}).Error)

	var out tracedCategory
	require.NoError(t, db.WithContext(ctx).Where("slug = ?", "laptops").First(&out).Error)

	spans := sr.Ended()
	require.NotEmpty(t, spans)

	var sawTable, sawRows bool
	for _, s := range spans {
		if hasAttribute(s.Attributes(), "db.sql.table") {
			sawTable = true
		}
		if hasAttribute(s.Attributes(), "db.rows_affected") {
			sawRows = true
		}
	}
	assert.True(t, sawTable, "expected at least one span annotated with db.sql.table")
	assert.True(t, sawRows, "expected at least one span annotated with db.rows_affected")
}

func TestSlowQueryMarking(t *testing.T) {
	db, sr := setupTracedDB(t)

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.DBSystem = "sqlite"
	cfg.SlowQueryThresh = time.Nanosecond
	plugin := NewDBTracingPlugin(cfg, zap.NewNop())
	require.NoError(t, plugin.Register(db))

	require.NoError(t, db.WithContext(context.Background()).Create(&tracedCategory{Slug: "monitors"}).Error)

	var sawSlow bool
	for _, s := range sr.Ended() {
		if hasAttribute(s.Attributes(), "db.slow_query") {
			sawSlow = true
		}
	}
	assert.True(t, sawSlow, "expected the create span to be flagged slow")
}

func TestNewDBTracingPluginDefaultsThreshold(t *testing.T) {
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())
	assert.Equal(t, 200*time.Millisecond, plugin.config.SlowQueryThresh)
}
