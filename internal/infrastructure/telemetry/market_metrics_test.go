package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/modelmart/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

func TestNewMarketMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	mm, err := telemetry.NewMarketMetrics(telemetry.MarketMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, mm)
}

func TestNewMarketMetrics_NilMeter(t *testing.T) {
	mm, err := telemetry.NewMarketMetrics(telemetry.MarketMetricsConfig{
		Meter:  nil,
		Logger: zap.NewNop(),
	})

	require.Error(t, err)
	assert.Nil(t, mm)
	assert.Equal(t, "NewMarketMetrics: meter cannot be nil", err.Error())
}

func TestMarketMetrics_RecordPurchase(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	mm, err := telemetry.NewMarketMetrics(telemetry.MarketMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	mm.RecordPurchase(ctx, "LLM", telemetry.PurchaseResultSettled)
	mm.RecordPurchase(ctx, "Audio", telemetry.PurchaseResultDuplicate)
	mm.RecordPurchase(ctx, "Audio", telemetry.PurchaseResultRejected)
}

func TestMarketMetrics_RecordPurchaseAmount(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	mm, err := telemetry.NewMarketMetrics(telemetry.MarketMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	mm.RecordPurchaseAmount(ctx, "LLM", 1999) // 19.99 USD
	mm.RecordPurchaseAmount(ctx, "Computer Vision", 4900)
}

func TestMarketMetrics_RecordSettledPurchase(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	mm, err := telemetry.NewMarketMetrics(telemetry.MarketMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	price := decimal.NewFromFloat(199.99)

	// Should not panic and record both count and amount
	mm.RecordSettledPurchase(ctx, "LLM", price)
}

func TestMarketMetrics_RecordLogin(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	mm, err := telemetry.NewMarketMetrics(telemetry.MarketMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	mm.RecordLogin(ctx, telemetry.LoginResultSuccess)
	mm.RecordLogin(ctx, telemetry.LoginResultFailed)
	mm.RecordLogin(ctx, telemetry.LoginResultLocked)
}

func TestMarketMetrics_RecordModelCount(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	mm, err := telemetry.NewMarketMetrics(telemetry.MarketMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	mm.RecordModelCount(ctx, "LLM", 42)
	mm.RecordModelCount(ctx, "Audio", 7)
}

func TestMarketMetrics_RecordUserCount(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	mm, err := telemetry.NewMarketMetrics(telemetry.MarketMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	mm.RecordUserCount(ctx, 100)
	mm.RecordUserCount(ctx, 105)
}

// Mock implementation for testing periodic collection

type mockCatalogProvider struct {
	modelCounts map[string]int64
	userCount   int64
	err         error
}

func (m *mockCatalogProvider) CountModelsByCategory(ctx context.Context) (map[string]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.modelCounts, nil
}

func (m *mockCatalogProvider) CountActiveUsers(ctx context.Context) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.userCount, nil
}

func TestMarketMetrics_PeriodicCollection(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	catalogProvider := &mockCatalogProvider{
		modelCounts: map[string]int64{
			"LLM":   12,
			"Audio": 3,
		},
		userCount: 40,
	}

	mm, err := telemetry.NewMarketMetrics(telemetry.MarketMetricsConfig{
		Meter:           meter,
		Logger:          zap.NewNop(),
		CatalogProvider: catalogProvider,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start periodic collection with short interval for testing
	mm.StartPeriodicCollection(ctx, 100*time.Millisecond)

	// Wait for at least one collection cycle
	time.Sleep(150 * time.Millisecond)

	// Stop collection
	mm.Stop()

	// Should complete without error
}

func TestMarketMetrics_PeriodicCollection_NoProvider(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	mm, err := telemetry.NewMarketMetrics(telemetry.MarketMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
		// No catalog provider
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Should not panic with no catalog provider
	mm.StartPeriodicCollection(ctx, 50*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	mm.Stop()
}

func TestMarketMetrics_Stop_Idempotent(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	mm, err := telemetry.NewMarketMetrics(telemetry.MarketMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	// Calling Stop multiple times should not panic
	mm.Stop()
	mm.Stop()
	mm.Stop()
}

func TestMarketMetrics_StartPeriodicCollection_OnlyOnce(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	mm, err := telemetry.NewMarketMetrics(telemetry.MarketMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Calling StartPeriodicCollection multiple times should only start once
	mm.StartPeriodicCollection(ctx, time.Hour)
	mm.StartPeriodicCollection(ctx, time.Minute)
	mm.StartPeriodicCollection(ctx, time.Second)

	mm.Stop()
}

func TestPurchaseResult_Values(t *testing.T) {
	assert.Equal(t, telemetry.PurchaseResult("settled"), telemetry.PurchaseResultSettled)
	assert.Equal(t, telemetry.PurchaseResult("duplicate"), telemetry.PurchaseResultDuplicate)
	assert.Equal(t, telemetry.PurchaseResult("rejected"), telemetry.PurchaseResultRejected)
}

func TestLoginResult_Values(t *testing.T) {
	assert.Equal(t, telemetry.LoginResult("success"), telemetry.LoginResultSuccess)
	assert.Equal(t, telemetry.LoginResult("failed"), telemetry.LoginResultFailed)
	assert.Equal(t, telemetry.LoginResult("locked"), telemetry.LoginResultLocked)
}

func TestMetricsError_Error(t *testing.T) {
	err := &telemetry.MetricsError{
		Op:  "TestOperation",
		Err: "test error message",
	}

	assert.Equal(t, "TestOperation: test error message", err.Error())
}
