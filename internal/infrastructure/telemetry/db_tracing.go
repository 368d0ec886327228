package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for storage database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include query variables in spans (dev only)
	SlowQueryThresh time.Duration // default: 200ms
	DBSystem        string        // "sqlite" or "postgresql"
}

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin and a slow query marker on db.
// It is a no-op when tracing is disabled.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := slowQueryCallback(cfg.SlowQueryThresh)

	cb := db.Callback()
	registrations := []error{
		cb.Create().Before("gorm:create").Register("artcase_timing:before_create", before),
		cb.Create().After("gorm:create").Register("artcase_timing:after_create", after),
		cb.Query().Before("gorm:query").Register("artcase_timing:before_query", before),
		cb.Query().After("gorm:query").Register("artcase_timing:after_query", after),
		cb.Delete().Before("gorm:delete").Register("artcase_timing:before_delete", before),
		cb.Delete().After("gorm:delete").Register("artcase_timing:after_delete", after),
		cb.Row().Before("gorm:row").Register("artcase_timing:before_row", before),
		cb.Row().After("gorm:row").Register("artcase_timing:after_row", after),
	}
	for _, err := range registrations {
		if err != nil {
			return err
		}
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
		zap.String("db_system", cfg.DBSystem),
	)
	return nil
}

func slowQueryCallback(threshold time.Duration) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		ctx := tx.Statement.Context
		if ctx == nil {
			return
		}
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}
		if tx.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
		}
		start, ok := ctx.Value(queryStartKey{}).(time.Time)
		if !ok {
			return
		}
		if elapsed := time.Since(start); elapsed > threshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
