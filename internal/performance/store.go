package performance

import (
	"context"
	"time"

	"github.com/KRGANESH/vendor-management/internal/model"
)

// Store is the persistence the engine reads aggregates from and writes metrics to.
// It is implemented by repository.PerformanceRepository.
type Store interface {
	GetVendor(ctx context.Context, vendorID uint) (*model.Vendor, error)
	ListVendorIDs(ctx context.Context) ([]uint, error)

	CountCompletedOrders(ctx context.Context, vendorID uint) (int64, error)
	CountCompletedOrdersDeliveredBy(ctx context.Context, vendorID uint, at time.Time) (int64, error)
	QualityRatingStats(ctx context.Context, vendorID uint) (model.RatingStats, error)
	AcknowledgedOrders(ctx context.Context, vendorID uint) ([]model.ResponseSample, error)
	CountOrders(ctx context.Context, vendorID uint) (int64, error)
	CountFulfilledOrders(ctx context.Context, vendorID uint) (int64, error)

	UpdateVendorMetric(ctx context.Context, vendorID uint, field model.MetricField, value float64) error
	UpsertHistoricalPerformance(ctx context.Context, vendorID uint, date time.Time,
		defaults model.PerformanceMetrics, touched []model.MetricField) (*model.HistoricalPerformance, error)
}
