package telemetry

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// StorefrontMetrics records storefront business metrics.
// All methods are safe to call on a nil receiver, which records nothing.
type StorefrontMetrics struct {
	cartMutations    *Counter
	storageFailures  *Counter
	ordersPlaced     *Counter
	orderAmountCents *Counter
	upstreamFailures *Counter
	upstreamDuration *Histogram
}

// NewStorefrontMetrics registers the storefront instruments on meter.
func NewStorefrontMetrics(meter metric.Meter) (*StorefrontMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &StorefrontMetrics{}
	var err error

	if m.cartMutations, err = NewCounter(meter,
		"artcase_cart_mutations_total", "Committed cart mutations", "{mutations}"); err != nil {
		return nil, err
	}
	if m.storageFailures, err = NewCounter(meter,
		"artcase_storage_failures_total", "Local storage reads or writes that failed and fell back to memory", "{failures}"); err != nil {
		return nil, err
	}
	if m.ordersPlaced, err = NewCounter(meter,
		"artcase_orders_placed_total", "Orders placed through checkout", "{orders}"); err != nil {
		return nil, err
	}
	if m.orderAmountCents, err = NewCounter(meter,
		"artcase_order_amount_cents_total", "Total order value in cents", "{cents}"); err != nil {
		return nil, err
	}
	if m.upstreamFailures, err = NewCounter(meter,
		"artcase_upstream_failures_total", "Failed calls to the art service", "{calls}"); err != nil {
		return nil, err
	}
	if m.upstreamDuration, err = NewHistogram(meter,
		"artcase_upstream_duration_seconds", "Art service call latency", "s", UpstreamDurationBuckets...); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordCartMutation counts a committed cart mutation.
func (m *StorefrontMetrics) RecordCartMutation(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.cartMutations.Inc(ctx, AttrOperation.String(operation))
}

// RecordStorageFailure counts a storage read or write that failed.
func (m *StorefrontMetrics) RecordStorageFailure(ctx context.Context, store, operation string) {
	if m == nil {
		return
	}
	m.storageFailures.Inc(ctx, AttrStore.String(store), AttrOperation.String(operation))
}

// RecordOrderPlaced counts an order and adds its value in cents.
func (m *StorefrontMetrics) RecordOrderPlaced(ctx context.Context, total decimal.Decimal) {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc(ctx)
	m.orderAmountCents.Add(ctx, total.Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// RecordUpstreamCall records the latency of an art service call and counts failures.
func (m *StorefrontMetrics) RecordUpstreamCall(ctx context.Context, operation string, statusCode int, d time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.upstreamDuration.RecordDuration(ctx, d, AttrUpstream.String(operation), AttrStatus.Int(statusCode))
	if failed {
		m.upstreamFailures.Inc(ctx, AttrUpstream.String(operation), AttrStatus.Int(statusCode))
	}
}
