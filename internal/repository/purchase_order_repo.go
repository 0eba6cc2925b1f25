package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/KRGANESH/vendor-management/internal/apperror"
	"github.com/KRGANESH/vendor-management/internal/model"
	"github.com/KRGANESH/vendor-management/prometheus"
)

// PurchaseOrderRepository persists purchase orders
type PurchaseOrderRepository struct {
	db      *gorm.DB
	metrics *prometheus.Metrics
}

func NewPurchaseOrderRepository(db *gorm.DB, metrics *prometheus.Metrics) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: db, metrics: metrics}
}

// FindAll lists purchase orders, optionally restricted to one vendor
func (r *PurchaseOrderRepository) FindAll(ctx context.Context, vendorID *uint) ([]model.PurchaseOrder, error) {
	defer r.metrics.TrackDBOperation("list_purchase_orders")(time.Now())

	query := r.db.WithContext(ctx).Model(&model.PurchaseOrder{})
	if vendorID != nil {
		query = query.Where("vendor_id = ?", *vendorID)
	}

	var orders []model.PurchaseOrder
	if err := query.Order("id ASC").Find(&orders).Error; err != nil {
		return nil, translate(err, nil, "failed to list purchase orders")
	}
	return orders, nil
}

// FindByID loads a purchase order
func (r *PurchaseOrderRepository) FindByID(ctx context.Context, id uint) (*model.PurchaseOrder, error) {
	defer r.metrics.TrackDBOperation("get_purchase_order")(time.Now())

	var order model.PurchaseOrder
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, translate(err, apperror.NotFound("purchase order %d not found", id), "failed to load purchase order")
	}
	return &order, nil
}

// ExistsByPONumber reports whether another order already uses poNumber
func (r *PurchaseOrderRepository) ExistsByPONumber(ctx context.Context, poNumber string, excludeID uint) (bool, error) {
	defer r.metrics.TrackDBOperation("po_number_exists")(time.Now())

	var count int64
	query := r.db.WithContext(ctx).Model(&model.PurchaseOrder{}).Where("po_number = ?", poNumber)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, translate(err, nil, "failed to check po number")
	}
	return count > 0, nil
}

// Create inserts a purchase order
func (r *PurchaseOrderRepository) Create(ctx context.Context, order *model.PurchaseOrder) error {
	defer r.metrics.TrackDBOperation("create_purchase_order")(time.Now())

	return translate(r.db.WithContext(ctx).Omit("Vendor").Create(order).Error, nil, "failed to create purchase order")
}

// Update overwrites every column of an existing purchase order
func (r *PurchaseOrderRepository) Update(ctx context.Context, order *model.PurchaseOrder) error {
	defer r.metrics.TrackDBOperation("update_purchase_order")(time.Now())

	return translate(r.db.WithContext(ctx).Omit("Vendor").Save(order).Error, nil, "failed to update purchase order")
}

// Delete removes a purchase order
func (r *PurchaseOrderRepository) Delete(ctx context.Context, id uint) error {
	defer r.metrics.TrackDBOperation("delete_purchase_order")(time.Now())

	result := r.db.WithContext(ctx).Delete(&model.PurchaseOrder{}, id)
	if result.Error != nil {
		return translate(result.Error, nil, "failed to delete purchase order")
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("purchase order %d not found", id)
	}
	return nil
}
