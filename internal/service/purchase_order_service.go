package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/KRGANESH/vendor-management/internal/apperror"
	"github.com/KRGANESH/vendor-management/internal/model"
	"github.com/KRGANESH/vendor-management/internal/repository"
	"github.com/KRGANESH/vendor-management/pkg/logger"
	"github.com/KRGANESH/vendor-management/prometheus"
)

// PurchaseOrderInput holds the writable purchase order fields
type PurchaseOrderInput struct {
	PONumber           string
	VendorID           uint
	OrderDate          time.Time
	DeliveryDate       time.Time
	Items              datatypes.JSON
	Quantity           int
	Status             model.Status
	QualityRating      *float64
	IssueDate          time.Time
	AcknowledgmentDate *time.Time
}

func (in PurchaseOrderInput) apply(order *model.PurchaseOrder) {
	order.PONumber = in.PONumber
	order.VendorID = in.VendorID
	order.OrderDate = in.OrderDate
	order.DeliveryDate = in.DeliveryDate
	order.Items = in.Items
	order.Quantity = in.Quantity
	order.Status = in.Status
	order.QualityRating = in.QualityRating
	order.IssueDate = in.IssueDate
	order.AcknowledgmentDate = in.AcknowledgmentDate
}

// PurchaseOrderService manages purchase orders and keeps vendor metrics in
// step with every create and update
type PurchaseOrderService struct {
	orders  *repository.PurchaseOrderRepository
	vendors *repository.VendorRepository
	engine  MetricsEngine
	metrics *prometheus.Metrics
}

func NewPurchaseOrderService(repos *repository.Repositories, engine MetricsEngine, metrics *prometheus.Metrics) *PurchaseOrderService {
	return &PurchaseOrderService{
		orders:  repos.PurchaseOrder,
		vendors: repos.Vendor,
		engine:  engine,
		metrics: metrics,
	}
}

// List returns purchase orders, optionally for one vendor only
func (s *PurchaseOrderService) List(ctx context.Context, vendorID *uint) ([]model.PurchaseOrder, error) {
	return s.orders.FindAll(ctx, vendorID)
}

// Get returns one purchase order
func (s *PurchaseOrderService) Get(ctx context.Context, id uint) (*model.PurchaseOrder, error) {
	return s.orders.FindByID(ctx, id)
}

// Create persists a purchase order and recomputes its vendor's metrics
func (s *PurchaseOrderService) Create(ctx context.Context, input PurchaseOrderInput) (*model.PurchaseOrder, error) {
	if err := s.check(ctx, input, 0); err != nil {
		return nil, err
	}

	order := &model.PurchaseOrder{}
	input.apply(order)
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.metrics.RecordPurchaseOrderOperation("create")
	logger.FromContext(ctx).Info("Purchase order created",
		zap.Uint("purchase_order_id", order.ID),
		zap.String("po_number", order.PONumber),
		zap.Uint("vendor_id", order.VendorID),
	)

	s.recompute(ctx, order)
	return order, nil
}

// Update overwrites a purchase order and recomputes its vendor's metrics. When
// the order moved to another vendor the previous vendor is recomputed as well.
// Unlike Create, the status must be given.
func (s *PurchaseOrderService) Update(ctx context.Context, id uint, input PurchaseOrderInput) (*model.PurchaseOrder, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Status == "" {
		return nil, apperror.Validation("status is required")
	}
	if err := s.check(ctx, input, id); err != nil {
		return nil, err
	}

	previousVendor := order.VendorID
	input.apply(order)
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.metrics.RecordPurchaseOrderOperation("update")
	logger.FromContext(ctx).Info("Purchase order updated",
		zap.Uint("purchase_order_id", order.ID),
		zap.String("status", string(order.Status)),
	)

	s.recompute(ctx, order)
	if previousVendor != order.VendorID {
		if _, err := s.engine.Recalculate(ctx, previousVendor); err != nil {
			logger.FromContext(ctx).Error("Failed to recalculate previous vendor",
				zap.Uint("vendor_id", previousVendor),
				zap.Error(err),
			)
		}
	}
	return order, nil
}

// Delete removes a purchase order. Vendor metrics are left as they are until
// the next save or recalculation.
func (s *PurchaseOrderService) Delete(ctx context.Context, id uint) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}

	s.metrics.RecordPurchaseOrderOperation("delete")
	logger.FromContext(ctx).Info("Purchase order deleted", zap.Uint("purchase_order_id", id))
	return nil
}

// check rejects input that cannot be persisted before anything is written
func (s *PurchaseOrderService) check(ctx context.Context, input PurchaseOrderInput, excludeID uint) error {
	if input.Status != "" && !input.Status.Valid() {
		return apperror.Validation("invalid status %q", input.Status)
	}

	if _, err := s.vendors.FindByID(ctx, input.VendorID); err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return apperror.Validation("vendor %d does not exist", input.VendorID)
		}
		return err
	}

	exists, err := s.orders.ExistsByPONumber(ctx, input.PONumber, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return apperror.Conflict("purchase order with this po number already exists")
	}
	return nil
}

// recompute runs the metrics engine for a saved order. Failures are logged
// and never undo the save.
func (s *PurchaseOrderService) recompute(ctx context.Context, order *model.PurchaseOrder) {
	log := logger.FromContext(ctx)

	result, err := s.engine.OnPurchaseOrderSaved(ctx, order)
	if err != nil {
		log.Error("Failed to recompute vendor metrics",
			zap.Uint("vendor_id", order.VendorID),
			zap.Uint("purchase_order_id", order.ID),
			zap.Error(err),
		)
		return
	}

	log.Debug("Vendor metrics recomputed",
		zap.Uint("vendor_id", order.VendorID),
		zap.Bool("applied", result.Applied()),
		zap.Int("snapshots", len(result.Snapshots)),
	)
}
