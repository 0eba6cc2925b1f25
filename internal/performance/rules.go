package performance

import (
	"context"
	"time"

	"github.com/KRGANESH/vendor-management/internal/model"
)

// rule recomputes one cached vendor metric
type rule struct {
	name  string
	field model.MetricField
	// applies reports whether a saved order should trigger the rule
	applies func(order *model.PurchaseOrder, now time.Time) bool
	// compute returns the new value, or ok=false when there is nothing to average over
	compute func(ctx context.Context, e *Engine, vendorID uint, now time.Time) (value float64, ok bool, err error)
	// snapshotAt picks the historical key for an order-triggered run
	snapshotAt func(order *model.PurchaseOrder, now time.Time) time.Time
}

func atNow(_ *model.PurchaseOrder, now time.Time) time.Time { return now }

var rules = []rule{
	{
		name:  "on_time_delivery",
		field: model.FieldOnTimeDeliveryRate,
		applies: func(o *model.PurchaseOrder, now time.Time) bool {
			return o.IsCompleted() && !o.DeliveryDate.After(now)
		},
		compute:    onTimeDeliveryRate,
		snapshotAt: atNow,
	},
	{
		name:  "quality_rating",
		field: model.FieldQualityRatingAvg,
		applies: func(o *model.PurchaseOrder, _ time.Time) bool {
			return o.IsCompleted() && o.QualityRating != nil
		},
		compute:    qualityRatingAverage,
		snapshotAt: atNow,
	},
	{
		name:  "response_time",
		field: model.FieldAverageResponseTime,
		applies: func(o *model.PurchaseOrder, _ time.Time) bool {
			return o.AcknowledgmentDate != nil
		},
		compute:    averageResponseTime,
		snapshotAt: atNow,
	},
	{
		name:    "fulfillment",
		field:   model.FieldFulfillmentRate,
		applies: func(*model.PurchaseOrder, time.Time) bool { return true },
		compute: fulfillmentRate,
		snapshotAt: func(o *model.PurchaseOrder, _ time.Time) time.Time {
			return o.DeliveryDate
		},
	},
}

func onTimeDeliveryRate(ctx context.Context, e *Engine, vendorID uint, now time.Time) (float64, bool, error) {
	completed, err := call(ctx, e, "count_completed_orders", func(ctx context.Context) (int64, error) {
		return e.store.CountCompletedOrders(ctx, vendorID)
	})
	if err != nil || completed == 0 {
		return 0, false, err
	}

	onTime, err := call(ctx, e, "count_on_time_orders", func(ctx context.Context) (int64, error) {
		return e.store.CountCompletedOrdersDeliveredBy(ctx, vendorID, now)
	})
	if err != nil {
		return 0, false, err
	}
	return float64(onTime) / float64(completed) * 100, true, nil
}

func qualityRatingAverage(ctx context.Context, e *Engine, vendorID uint, _ time.Time) (float64, bool, error) {
	stats, err := call(ctx, e, "quality_rating_stats", func(ctx context.Context) (model.RatingStats, error) {
		return e.store.QualityRatingStats(ctx, vendorID)
	})
	if err != nil || stats.Count == 0 {
		return 0, false, err
	}
	return stats.Sum / float64(stats.Count), true, nil
}

func averageResponseTime(ctx context.Context, e *Engine, vendorID uint, _ time.Time) (float64, bool, error) {
	samples, err := call(ctx, e, "acknowledged_orders", func(ctx context.Context) ([]model.ResponseSample, error) {
		return e.store.AcknowledgedOrders(ctx, vendorID)
	})
	if err != nil || len(samples) == 0 {
		return 0, false, err
	}

	var total float64
	for _, s := range samples {
		total += s.ResponseTime()
	}
	return total / float64(len(samples)), true, nil
}

func fulfillmentRate(ctx context.Context, e *Engine, vendorID uint, _ time.Time) (float64, bool, error) {
	total, err := call(ctx, e, "count_orders", func(ctx context.Context) (int64, error) {
		return e.store.CountOrders(ctx, vendorID)
	})
	if err != nil || total == 0 {
		return 0, false, err
	}

	fulfilled, err := call(ctx, e, "count_fulfilled_orders", func(ctx context.Context) (int64, error) {
		return e.store.CountFulfilledOrders(ctx, vendorID)
	})
	if err != nil {
		return 0, false, err
	}
	return float64(fulfilled) / float64(total) * 100, true, nil
}
