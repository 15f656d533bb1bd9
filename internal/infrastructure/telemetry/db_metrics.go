package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/gorm"
)

// RegisterDBMetrics records statement latency by operation and table, and
// reports connection pool usage from sqlDB on each collection.
func RegisterDBMetrics(db *gorm.DB, sqlDB *sql.DB, meter metric.Meter) error {
	duration, err := meter.Float64Histogram("db.query.duration",
		metric.WithDescription("Database statement latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5),
	)
	if err != nil {
		return fmt.Errorf("query duration histogram: %w", err)
	}
	failures, err := meter.Int64Counter("db.query.errors",
		metric.WithDescription("Database statements that returned an error"),
	)
	if err != nil {
		return fmt.Errorf("query error counter: %w", err)
	}

	record := func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			elapsed, ok := queryElapsed(tx)
			if !ok {
				return
			}
			attrs := metric.WithAttributes(
				attribute.String("db.operation", op),
				attribute.String("db.sql.table", tx.Statement.Table),
			)
			duration.Record(tx.Statement.Context, elapsed.Seconds(), attrs)
			if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
				failures.Add(tx.Statement.Context, 1, attrs)
			}
		}
	}
	cb := db.Callback()
	for _, err := range []error{
		cb.Create().Before("gorm:create").Register("db_metrics:before_create", markStart),
		cb.Create().After("gorm:create").Register("db_metrics:after_create", record("insert")),
		cb.Query().Before("gorm:query").Register("db_metrics:before_query", markStart),
		cb.Query().After("gorm:query").Register("db_metrics:after_query", record("select")),
		cb.Update().Before("gorm:update").Register("db_metrics:before_update", markStart),
		cb.Update().After("gorm:update").Register("db_metrics:after_update", record("update")),
		cb.Delete().Before("gorm:delete").Register("db_metrics:before_delete", markStart),
		cb.Delete().After("gorm:delete").Register("db_metrics:after_delete", record("delete")),
	} {
		if err != nil {
			return err
		}
	}

	if sqlDB == nil {
		return nil
	}
	inUse, err := meter.Int64ObservableGauge("db.pool.in_use",
		metric.WithDescription("Connections currently in use"))
	if err != nil {
		return err
	}
	idle, err := meter.Int64ObservableGauge("db.pool.idle",
		metric.WithDescription("Idle connections"))
	if err != nil {
		return err
	}
	waits, err := meter.Int64ObservableCounter("db.pool.wait_count",
		metric.WithDescription("Connections waited for"))
	if err != nil {
		return err
	}
	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(inUse, int64(stats.InUse))
		o.ObserveInt64(idle, int64(stats.Idle))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, inUse, idle, waits)
	return err
}
