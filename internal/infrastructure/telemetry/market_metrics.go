// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// MarketMetrics provides business metrics for the marketplace.
// It tracks purchase activity, sign-in outcomes, and catalog size.
type MarketMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	purchaseTotal       *Counter
	purchaseAmountTotal *Counter
	loginTotal          *Counter

	// Gauge metrics (point-in-time values)
	catalogModelCount   *Gauge
	registeredUserCount *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	catalogProvider CatalogMetricsProvider
}

// CatalogMetricsProvider provides catalog data for periodic metrics collection.
// This interface allows the telemetry layer to query catalog state without
// depending on the catalog domain directly.
type CatalogMetricsProvider interface {
	// CountModelsByCategory returns the listed model count per category
	CountModelsByCategory(ctx context.Context) (map[string]int64, error)

	// CountActiveUsers returns the number of active user accounts
	CountActiveUsers(ctx context.Context) (int64, error)
}

// MarketMetricsConfig holds configuration for marketplace metrics.
type MarketMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	CatalogProvider CatalogMetricsProvider
}

// NewMarketMetrics creates a new MarketMetrics instance.
func NewMarketMetrics(cfg MarketMetricsConfig) (*MarketMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	mm := &MarketMetrics{
		meter:           cfg.Meter,
		logger:          logger,
		stopChan:        make(chan struct{}),
		catalogProvider: cfg.CatalogProvider,
	}

	var err error

	mm.purchaseTotal, err = NewCounter(
		cfg.Meter,
		"modelmart_purchase_total",
		"Total number of purchase attempts by outcome",
		"{purchases}",
	)
	if err != nil {
		return nil, err
	}

	mm.purchaseAmountTotal, err = NewCounter(
		cfg.Meter,
		"modelmart_purchase_amount_total",
		"Total settled purchase amount in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	mm.loginTotal, err = NewCounter(
		cfg.Meter,
		"modelmart_login_total",
		"Total number of sign-in attempts by outcome",
		"{logins}",
	)
	if err != nil {
		return nil, err
	}

	mm.catalogModelCount, err = NewGauge(
		cfg.Meter,
		"modelmart_catalog_model_count",
		"Number of listed models per category",
		"{models}",
	)
	if err != nil {
		return nil, err
	}

	mm.registeredUserCount, err = NewGauge(
		cfg.Meter,
		"modelmart_registered_user_count",
		"Number of active user accounts",
		"{users}",
	)
	if err != nil {
		return nil, err
	}

	return mm, nil
}

// =============================================================================
// Purchase Metrics
// =============================================================================

// PurchaseResult labels the outcome of a purchase attempt.
type PurchaseResult string

const (
	PurchaseResultSettled   PurchaseResult = "settled"
	PurchaseResultDuplicate PurchaseResult = "duplicate"
	PurchaseResultRejected  PurchaseResult = "rejected"
)

// RecordPurchase records a purchase attempt.
// This should be called from the application layer after the ledger write.
func (mm *MarketMetrics) RecordPurchase(ctx context.Context, category string, result PurchaseResult) {
	mm.purchaseTotal.Inc(ctx,
		AttrModelCategory.String(category),
		AttrPurchaseResult.String(string(result)),
	)
}

// RecordPurchaseAmount records the settled amount of a purchase.
// Amount should be in the smallest currency unit (cents).
func (mm *MarketMetrics) RecordPurchaseAmount(ctx context.Context, category string, amountCents int64) {
	mm.purchaseAmountTotal.Add(ctx, amountCents,
		AttrModelCategory.String(category),
	)
}

// RecordSettledPurchase is a convenience method that records both the
// settled outcome and the purchase amount.
func (mm *MarketMetrics) RecordSettledPurchase(ctx context.Context, category string, price decimal.Decimal) {
	mm.RecordPurchase(ctx, category, PurchaseResultSettled)

	amountCents := price.Mul(decimal.NewFromInt(100)).IntPart()
	mm.RecordPurchaseAmount(ctx, category, amountCents)
}

// =============================================================================
// Sign-in Metrics
// =============================================================================

// LoginResult labels the outcome of a sign-in attempt.
type LoginResult string

const (
	LoginResultSuccess LoginResult = "success"
	LoginResultFailed  LoginResult = "failed"
	LoginResultLocked  LoginResult = "locked"
)

// RecordLogin records a sign-in attempt.
func (mm *MarketMetrics) RecordLogin(ctx context.Context, result LoginResult) {
	mm.loginTotal.Inc(ctx,
		AttrLoginResult.String(string(result)),
	)
}

// =============================================================================
// Catalog Metrics
// =============================================================================

// RecordModelCount records the current listed model count for a category.
// This is a gauge metric that should be updated periodically.
func (mm *MarketMetrics) RecordModelCount(ctx context.Context, category string, count int64) {
	mm.catalogModelCount.Record(ctx, count,
		AttrModelCategory.String(category),
	)
}

// RecordUserCount records the current number of active user accounts.
// This is a gauge metric that should be updated periodically.
func (mm *MarketMetrics) RecordUserCount(ctx context.Context, count int64) {
	mm.registeredUserCount.Record(ctx, count)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects catalog metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (mm *MarketMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	mm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go mm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (mm *MarketMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	mm.collectCatalogMetrics(ctx)

	for {
		select {
		case <-mm.stopChan:
			mm.logger.Info("Stopping periodic market metrics collection")
			return
		case <-ctx.Done():
			mm.logger.Info("Context cancelled, stopping periodic market metrics collection")
			return
		case <-ticker.C:
			mm.collectCatalogMetrics(ctx)
		}
	}
}

// collectCatalogMetrics collects catalog gauge metrics.
func (mm *MarketMetrics) collectCatalogMetrics(ctx context.Context) {
	if mm.catalogProvider == nil {
		mm.logger.Debug("No catalog provider configured, skipping catalog metrics collection")
		return
	}

	countsByCategory, err := mm.catalogProvider.CountModelsByCategory(ctx)
	if err != nil {
		mm.logger.Warn("Failed to count models for metrics collection", zap.Error(err))
	} else {
		for category, count := range countsByCategory {
			mm.RecordModelCount(ctx, category, count)
		}
	}

	userCount, err := mm.catalogProvider.CountActiveUsers(ctx)
	if err != nil {
		mm.logger.Warn("Failed to count users for metrics collection", zap.Error(err))
	} else {
		mm.RecordUserCount(ctx, userCount)
	}
}

// Stop stops the periodic collection.
func (mm *MarketMetrics) Stop() {
	mm.stopOnce.Do(func() {
		close(mm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewMarketMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
