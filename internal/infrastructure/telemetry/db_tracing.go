// Package telemetry provides OpenTelemetry integration for distributed tracing.
package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled          bool          // Trace database operations at all
	LogFullSQL       bool          // Put complete SQL into spans; leaks data, dev only
	SlowQueryThresh  time.Duration // Queries beyond this get flagged on the span
	DBSystem         string        // Reported database system name
	WithoutVariables bool          // Strip bind variables from recorded SQL
}

// DefaultDBTracingConfig returns the secure baseline: tracing off, SQL
// variables stripped, 200ms slow threshold.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:          false,
		LogFullSQL:       false,
		SlowQueryThresh:  200 * time.Millisecond,
		DBSystem:         "postgresql",
		WithoutVariables: true,
	}
}

// DBTracingPlugin installs otelgorm plus callbacks that flag slow
// queries and record errors on the active span.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin builds a plugin for the given configuration.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{
		config: cfg,
		logger: logger,
	}
}

// hookPoint pairs a GORM operation with its before/after registration
// functions, so hook installation can be driven by one loop.
type hookPoint struct {
	op     string
	before func(name string, fn func(*gorm.DB)) error
	after  func(name string, fn func(*gorm.DB)) error
}

func hookPoints(db *gorm.DB) []hookPoint {
	cb := db.Callback()
	return []hookPoint{
		{
			op:     "create",
			before: func(n string, fn func(*gorm.DB)) error { return cb.Create().Before("gorm:create").Register(n, fn) },
			after:  func(n string, fn func(*gorm.DB)) error { return cb.Create().After("gorm:create").Register(n, fn) },
		},
		{
			op:     "query",
			before: func(n string, fn func(*gorm.DB)) error { return cb.Query().Before("gorm:query").Register(n, fn) },
			after:  func(n string, fn func(*gorm.DB)) error { return cb.Query().After("gorm:query").Register(n, fn) },
		},
		{
			op:     "update",
			before: func(n string, fn func(*gorm.DB)) error { return cb.Update().Before("gorm:update").Register(n, fn) },
			after:  func(n string, fn func(*gorm.DB)) error { return cb.Update().After("gorm:update").Register(n, fn) },
		},
		{
			op:     "delete",
			before: func(n string, fn func(*gorm.DB)) error { return cb.Delete().Before("gorm:delete").Register(n, fn) },
			after:  func(n string, fn func(*gorm.DB)) error { return cb.Delete().After("gorm:delete").Register(n, fn) },
		},
		{
			op:     "row",
			before: func(n string, fn func(*gorm.DB)) error { return cb.Row().Before("gorm:row").Register(n, fn) },
			after:  func(n string, fn func(*gorm.DB)) error { return cb.Row().After("gorm:row").Register(n, fn) },
		},
		{
			op:     "raw",
			before: func(n string, fn func(*gorm.DB)) error { return cb.Raw().Before("gorm:raw").Register(n, fn) },
			after:  func(n string, fn func(*gorm.DB)) error { return cb.Raw().After("gorm:raw").Register(n, fn) },
		},
	}
}

// RegisterOtelGorm wires the otelgorm plugin into db together with the
// timing and slow-query callbacks. Registering the same plugin twice on
// one db fails inside GORM.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBSystem),
	}
	if !p.config.LogFullSQL {
		// Bind variables stay out of spans
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	startClock := func(db *gorm.DB) {
		if db.Statement.Context != nil {
			db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
		}
	}

	for _, hp := range hookPoints(db) {
		if err := hp.before("otel_timing:before_"+hp.op, startClock); err != nil {
			return err
		}
		if err := hp.after("otel_slow_query:"+hp.op, p.slowQueryCallback); err != nil {
			return err
		}
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)

	return nil
}

// slowQueryCallback runs after each operation and annotates the span
// opened by otelgorm.
func (p *DBTracingPlugin) slowQueryCallback(db *gorm.DB) {
	annotateSpan(db, p.config.SlowQueryThresh)
}

// annotateSpan records row counts, the table name, errors, and slow-query
// markers on the span carried by the statement context. ErrRecordNotFound
// is an expected outcome and never marks the span failed.
func annotateSpan(db *gorm.DB, slowThresh time.Duration) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if startTime, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		elapsed := time.Since(startTime)
		if elapsed > slowThresh {
			span.SetAttributes(attribute.Bool("db.slow_query", true))
			span.SetAttributes(attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()))
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", slowThresh.Milliseconds()),
			))
		}
	}
}

type contextKey string

// queryStartTimeKey carries the statement start time between the before
// and after hooks.
const queryStartTimeKey contextKey = "otel_query_start_time"

// WithQueryStartTime stamps ctx with the current time for later slow
// query measurement.
func WithQueryStartTime(ctx context.Context) context.Context {
	return context.WithValue(ctx, queryStartTimeKey, time.Now())
}

// DBTracingCallback is the standalone variant for callers that want the
// timing hooks without the otelgorm plugin.
type DBTracingCallback struct {
	slowQueryThresh time.Duration
}

// NewDBTracingCallback creates a callback set with the given slow query
// threshold.
func NewDBTracingCallback(slowQueryThresh time.Duration) *DBTracingCallback {
	return &DBTracingCallback{
		slowQueryThresh: slowQueryThresh,
	}
}

// BeforeCallback stamps the statement context with the start time.
func (c *DBTracingCallback) BeforeCallback(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

// AfterCallback annotates the active span for the finished statement.
func (c *DBTracingCallback) AfterCallback(db *gorm.DB) {
	annotateSpan(db, c.slowQueryThresh)
}

// RegisterCallbacks installs the before/after hooks on every operation
// type of db.
func (c *DBTracingCallback) RegisterCallbacks(db *gorm.DB) error {
	for _, hp := range hookPoints(db) {
		if err := hp.before("otel_timing:before_"+hp.op, c.BeforeCallback); err != nil {
			return err
		}
		if err := hp.after("otel_timing:after_"+hp.op, c.AfterCallback); err != nil {
			return err
		}
	}
	return nil
}
