package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				sums[m.Name] += dp.Value
			}
		}
	}
	return sums
}

func TestStorefrontMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewStorefrontMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordCartMutation(ctx, "add")
	m.RecordCartMutation(ctx, "add")
	m.RecordCartMutation(ctx, "clear")
	m.RecordStorageFailure(ctx, "cart", "write")
	m.RecordOrderPlaced(ctx, decimal.NewFromFloat(99.98))
	m.RecordUpstreamCall(ctx, "products.list", 200, 30*time.Millisecond, false)
	m.RecordUpstreamCall(ctx, "auth.login", 401, 10*time.Millisecond, true)

	sums := collectSums(t, reader)
	assert.Equal(t, int64(3), sums["artcase_cart_mutations_total"])
	assert.Equal(t, int64(1), sums["artcase_storage_failures_total"])
	assert.Equal(t, int64(1), sums["artcase_orders_placed_total"])
	assert.Equal(t, int64(9998), sums["artcase_order_amount_cents_total"])
	assert.Equal(t, int64(1), sums["artcase_upstream_failures_total"])
}

func TestStorefrontMetrics_NilSafe(t *testing.T) {
	var m *StorefrontMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordCartMutation(ctx, "add")
		m.RecordStorageFailure(ctx, "session", "read")
		m.RecordOrderPlaced(ctx, decimal.NewFromInt(1))
		m.RecordUpstreamCall(ctx, "x", 500, time.Second, true)
	})

	_, err := NewStorefrontMetrics(nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}
