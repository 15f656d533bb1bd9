package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/erp/ledgercore/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

func setupSpanRecorder(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, recorder
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db := setupTestDB(t)
	err := RegisterDBTracing(db, config.TelemetryConfig{DBTraceEnabled: false}, zap.NewNop())
	require.NoError(t, err)

	_, registered := db.Config.Plugins["otelgorm"]
	assert.False(t, registered)
}

func TestRegisterDBTracing_StatementsBecomeChildSpans(t *testing.T) {
	tp, recorder := setupSpanRecorder(t)
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	db := setupTestDB(t)
	require.NoError(t, RegisterDBTracing(db, config.TelemetryConfig{
		DBTraceEnabled:    true,
		DBSlowQueryThresh: time.Second,
	}, zap.NewNop()))

	ctx, parent := tp.Tracer("test").Start(context.Background(), "document.save")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "GRN-1"}).Error)
	parent.End()

	var children int
	for _, s := range recorder.Ended() {
		if s.Parent().SpanID() == parent.SpanContext().SpanID() {
			children++
		}
	}
	assert.Positive(t, children)
}

func TestFlagSlowQuery_AddsEventToActiveSpan(t *testing.T) {
	tp, recorder := setupSpanRecorder(t)
	db := setupTestDB(t)
	require.NoError(t, registerAround(db, "test_slow", markStart, func(tx *gorm.DB) {
		flagSlowQuery(tx, time.Nanosecond)
	}))

	ctx, span := tp.Tracer("test").Start(context.Background(), "stock.query")
	var rows []tracedRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	var found bool
	for _, ev := range ended[0].Events() {
		if ev.Name == "slow_query" {
			found = true
		}
	}
	assert.True(t, found)
}
