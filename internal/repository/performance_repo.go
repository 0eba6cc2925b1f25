package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/KRGANESH/vendor-management/internal/apperror"
	"github.com/KRGANESH/vendor-management/internal/model"
	"github.com/KRGANESH/vendor-management/prometheus"
)

// PerformanceRepository serves the aggregate reads and metric writes of the
// metrics engine
type PerformanceRepository struct {
	db      *gorm.DB
	metrics *prometheus.Metrics
}

func NewPerformanceRepository(db *gorm.DB, metrics *prometheus.Metrics) *PerformanceRepository {
	return &PerformanceRepository{db: db, metrics: metrics}
}

func (r *PerformanceRepository) orders(ctx context.Context, vendorID uint) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.PurchaseOrder{}).Where("vendor_id = ?", vendorID)
}

// GetVendor loads the vendor whose metrics are being recomputed
func (r *PerformanceRepository) GetVendor(ctx context.Context, vendorID uint) (*model.Vendor, error) {
	defer r.metrics.TrackDBOperation("performance_get_vendor")(time.Now())

	var vendor model.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, vendorID).Error; err != nil {
		return nil, translate(err, apperror.NotFound("vendor %d not found", vendorID), "failed to load vendor")
	}
	return &vendor, nil
}

// ListVendorIDs returns every vendor id in ascending order
func (r *PerformanceRepository) ListVendorIDs(ctx context.Context) ([]uint, error) {
	defer r.metrics.TrackDBOperation("list_vendor_ids")(time.Now())

	var ids []uint
	if err := r.db.WithContext(ctx).Model(&model.Vendor{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, translate(err, nil, "failed to list vendor ids")
	}
	return ids, nil
}

// CountCompletedOrders counts the vendor's completed orders
func (r *PerformanceRepository) CountCompletedOrders(ctx context.Context, vendorID uint) (int64, error) {
	defer r.metrics.TrackDBOperation("count_completed_orders")(time.Now())

	var count int64
	err := r.orders(ctx, vendorID).Where("status = ?", model.StatusCompleted).Count(&count).Error
	return count, translate(err, nil, "failed to count completed orders")
}

// CountCompletedOrdersDeliveredBy counts completed orders whose delivery date is not after at
func (r *PerformanceRepository) CountCompletedOrdersDeliveredBy(ctx context.Context, vendorID uint, at time.Time) (int64, error) {
	defer r.metrics.TrackDBOperation("count_on_time_orders")(time.Now())

	var count int64
	err := r.orders(ctx, vendorID).
		Where("status = ? AND delivery_date <= ?", model.StatusCompleted, at.UTC()).
		Count(&count).Error
	return count, translate(err, nil, "failed to count on-time orders")
}

// QualityRatingStats sums the ratings of the vendor's rated completed orders
func (r *PerformanceRepository) QualityRatingStats(ctx context.Context, vendorID uint) (model.RatingStats, error) {
	defer r.metrics.TrackDBOperation("quality_rating_stats")(time.Now())

	var stats model.RatingStats
	err := r.orders(ctx, vendorID).
		Select("COUNT(quality_rating) AS count, COALESCE(SUM(quality_rating), 0) AS sum").
		Where("status = ? AND quality_rating IS NOT NULL", model.StatusCompleted).
		Scan(&stats).Error
	return stats, translate(err, nil, "failed to aggregate quality ratings")
}

// AcknowledgedOrders returns the issue and acknowledgment dates of every
// acknowledged order of the vendor
func (r *PerformanceRepository) AcknowledgedOrders(ctx context.Context, vendorID uint) ([]model.ResponseSample, error) {
	defer r.metrics.TrackDBOperation("acknowledged_orders")(time.Now())

	var samples []model.ResponseSample
	err := r.orders(ctx, vendorID).
		Select("issue_date, acknowledgment_date").
		Where("acknowledgment_date IS NOT NULL").
		Order("id ASC").
		Scan(&samples).Error
	if err != nil {
		return nil, translate(err, nil, "failed to load acknowledged orders")
	}
	return samples, nil
}

// CountOrders counts every order of the vendor regardless of status
func (r *PerformanceRepository) CountOrders(ctx context.Context, vendorID uint) (int64, error) {
	defer r.metrics.TrackDBOperation("count_orders")(time.Now())

	var count int64
	err := r.orders(ctx, vendorID).Count(&count).Error
	return count, translate(err, nil, "failed to count orders")
}

// CountFulfilledOrders counts completed orders that carry a quality rating
func (r *PerformanceRepository) CountFulfilledOrders(ctx context.Context, vendorID uint) (int64, error) {
	defer r.metrics.TrackDBOperation("count_fulfilled_orders")(time.Now())

	var count int64
	err := r.orders(ctx, vendorID).
		Where("status = ? AND quality_rating IS NOT NULL", model.StatusCompleted).
		Count(&count).Error
	return count, translate(err, nil, "failed to count fulfilled orders")
}

// UpdateVendorMetric writes a single cached metric column
func (r *PerformanceRepository) UpdateVendorMetric(ctx context.Context, vendorID uint, field model.MetricField, value float64) error {
	defer r.metrics.TrackDBOperation("update_vendor_metric")(time.Now())

	result := r.db.WithContext(ctx).
		Model(&model.Vendor{}).
		Where("id = ?", vendorID).
		Update(string(field), value)
	if result.Error != nil {
		return translate(result.Error, nil, "failed to update vendor metric")
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("vendor %d not found", vendorID)
	}
	return nil
}

// UpsertHistoricalPerformance inserts the snapshot for (vendorID, date) seeded
// with defaults, or updates only the touched columns of the existing row. The
// stored row is returned.
func (r *PerformanceRepository) UpsertHistoricalPerformance(
	ctx context.Context,
	vendorID uint,
	date time.Time,
	defaults model.PerformanceMetrics,
	touched []model.MetricField,
) (*model.HistoricalPerformance, error) {
	defer r.metrics.TrackDBOperation("upsert_historical_performance")(time.Now())

	date = date.UTC()
	row := model.HistoricalPerformance{
		VendorID:           vendorID,
		Date:               date,
		PerformanceMetrics: defaults,
	}

	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "vendor_id"}, {Name: "date"}},
	}
	if len(touched) == 0 {
		onConflict.DoNothing = true
	} else {
		columns := make([]string, 0, len(touched)+1)
		for _, field := range touched {
			columns = append(columns, string(field))
		}
		onConflict.DoUpdates = clause.AssignmentColumns(append(columns, "updated_at"))
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Vendor").Clauses(onConflict).Create(&row).Error; err != nil {
			return err
		}
		var stored model.HistoricalPerformance
		if err := tx.Where("vendor_id = ? AND date = ?", vendorID, date).First(&stored).Error; err != nil {
			return err
		}
		row = stored
		return nil
	})
	if err != nil {
		return nil, translate(err, nil, "failed to upsert historical performance")
	}
	return &row, nil
}

// FindHistory lists the vendor's snapshots, newest first
func (r *PerformanceRepository) FindHistory(ctx context.Context, vendorID uint) ([]model.HistoricalPerformance, error) {
	defer r.metrics.TrackDBOperation("find_history")(time.Now())

	var rows []model.HistoricalPerformance
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("date DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err, nil, "failed to load historical performance")
	}
	return rows, nil
}
