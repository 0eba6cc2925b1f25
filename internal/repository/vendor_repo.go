package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/KRGANESH/vendor-management/internal/apperror"
	"github.com/KRGANESH/vendor-management/internal/model"
	"github.com/KRGANESH/vendor-management/prometheus"
)

// VendorRepository persists vendors
type VendorRepository struct {
	db      *gorm.DB
	metrics *prometheus.Metrics
}

func NewVendorRepository(db *gorm.DB, metrics *prometheus.Metrics) *VendorRepository {
	return &VendorRepository{db: db, metrics: metrics}
}

// FindAll lists vendors ordered by id
func (r *VendorRepository) FindAll(ctx context.Context) ([]model.Vendor, error) {
	defer r.metrics.TrackDBOperation("list_vendors")(time.Now())

	var vendors []model.Vendor
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&vendors).Error; err != nil {
		return nil, translate(err, nil, "failed to list vendors")
	}
	return vendors, nil
}

// FindByID loads a vendor
func (r *VendorRepository) FindByID(ctx context.Context, id uint) (*model.Vendor, error) {
	defer r.metrics.TrackDBOperation("get_vendor")(time.Now())

	var vendor model.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, id).Error; err != nil {
		return nil, translate(err, apperror.NotFound("vendor %d not found", id), "failed to load vendor")
	}
	return &vendor, nil
}

// ExistsByCode reports whether another vendor already uses code. excludeID
// skips the vendor being updated; pass 0 on create.
func (r *VendorRepository) ExistsByCode(ctx context.Context, code string, excludeID uint) (bool, error) {
	defer r.metrics.TrackDBOperation("vendor_code_exists")(time.Now())

	var count int64
	query := r.db.WithContext(ctx).Model(&model.Vendor{}).Where("vendor_code = ?", code)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, translate(err, nil, "failed to check vendor code")
	}
	return count > 0, nil
}

// Create inserts a vendor with zeroed metrics
func (r *VendorRepository) Create(ctx context.Context, vendor *model.Vendor) error {
	defer r.metrics.TrackDBOperation("create_vendor")(time.Now())

	vendor.PerformanceMetrics = model.PerformanceMetrics{}
	return translate(r.db.WithContext(ctx).Create(vendor).Error, nil, "failed to create vendor")
}

// Update writes the profile fields of a vendor and reloads it. The metric
// columns are owned by the performance repository.
func (r *VendorRepository) Update(ctx context.Context, vendor *model.Vendor) error {
	defer r.metrics.TrackDBOperation("update_vendor")(time.Now())

	result := r.db.WithContext(ctx).
		Model(&model.Vendor{ID: vendor.ID}).
		Updates(map[string]interface{}{
			"name":            vendor.Name,
			"contact_details": vendor.ContactDetails,
			"address":         vendor.Address,
			"vendor_code":     vendor.VendorCode,
		})
	if result.Error != nil {
		return translate(result.Error, nil, "failed to update vendor")
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("vendor %d not found", vendor.ID)
	}
	return translate(r.db.WithContext(ctx).First(vendor, vendor.ID).Error,
		apperror.NotFound("vendor %d not found", vendor.ID), "failed to reload vendor")
}

// Delete removes a vendor together with its purchase orders and snapshots
func (r *VendorRepository) Delete(ctx context.Context, id uint) error {
	defer r.metrics.TrackDBOperation("delete_vendor")(time.Now())

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("vendor_id = ?", id).Delete(&model.PurchaseOrder{}).Error; err != nil {
			return err
		}
		if err := tx.Where("vendor_id = ?", id).Delete(&model.HistoricalPerformance{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Vendor{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperror.NotFound("vendor %d not found", id)
		}
		return nil
	})
	return translate(err, nil, "failed to delete vendor")
}
