package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/erp/ledgercore/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm on db so every statement gets a span
// under the caller's context. Statements slower than the configured threshold
// are flagged on their span. Query variables are omitted unless full SQL
// logging is enabled.
func RegisterDBTracing(db *gorm.DB, cfg config.TelemetryConfig, logger *zap.Logger) error {
	if !cfg.DBTraceEnabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(db.Dialector.Name())}
	if !cfg.DBLogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	slow := cfg.DBSlowQueryThresh
	err := registerAround(db, "otel_slow_query", markStart, func(tx *gorm.DB) {
		flagSlowQuery(tx, slow)
	})
	if err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.DBLogFullSQL),
		zap.Duration("slow_query_threshold", slow),
	)
	return nil
}

func markStart(tx *gorm.DB) {
	if tx.Statement.Context != nil {
		tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
	}
}

func queryElapsed(tx *gorm.DB) (time.Duration, bool) {
	if tx.Statement.Context == nil {
		return 0, false
	}
	start, ok := tx.Statement.Context.Value(queryStartKey{}).(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}

func flagSlowQuery(tx *gorm.DB, threshold time.Duration) {
	span := trace.SpanFromContext(tx.Statement.Context)
	if !span.IsRecording() {
		return
	}
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.RecordError(tx.Error)
	}
	elapsed, ok := queryElapsed(tx)
	if ok && threshold > 0 && elapsed > threshold {
		span.AddEvent("slow_query", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", threshold.Milliseconds()),
		))
	}
}

// registerAround hooks before and after callbacks on every GORM processor
func registerAround(db *gorm.DB, name string, before, after func(*gorm.DB)) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register(name+":before_create", before),
		cb.Create().After("gorm:create").Register(name+":after_create", after),
		cb.Query().Before("gorm:query").Register(name+":before_query", before),
		cb.Query().After("gorm:query").Register(name+":after_query", after),
		cb.Update().Before("gorm:update").Register(name+":before_update", before),
		cb.Update().After("gorm:update").Register(name+":after_update", after),
		cb.Delete().Before("gorm:delete").Register(name+":before_delete", before),
		cb.Delete().After("gorm:delete").Register(name+":after_delete", after),
		cb.Row().Before("gorm:row").Register(name+":before_row", before),
		cb.Row().After("gorm:row").Register(name+":after_row", after),
		cb.Raw().Before("gorm:raw").Register(name+":before_raw", before),
		cb.Raw().After("gorm:raw").Register(name+":after_raw", after),
	)
}
