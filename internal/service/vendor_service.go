package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/KRGANESH/vendor-management/internal/apperror"
	"github.com/KRGANESH/vendor-management/internal/model"
	"github.com/KRGANESH/vendor-management/internal/performance"
	"github.com/KRGANESH/vendor-management/internal/repository"
	"github.com/KRGANESH/vendor-management/pkg/logger"
	"github.com/KRGANESH/vendor-management/prometheus"
)

// VendorInput holds the editable vendor profile fields
type VendorInput struct {
	Name           string
	ContactDetails string
	Address        string
	VendorCode     string
}

// PerformanceView is the cached metric set of a vendor
type PerformanceView struct {
	VendorID uint   `json:"vendor_id"`
	Vendor   string `json:"vendor"`
	model.PerformanceMetrics
}

// VendorService manages vendors and exposes their performance
type VendorService struct {
	vendors     *repository.VendorRepository
	performance *repository.PerformanceRepository
	engine      MetricsEngine
	metrics     *prometheus.Metrics
}

func NewVendorService(repos *repository.Repositories, engine MetricsEngine, metrics *prometheus.Metrics) *VendorService {
	return &VendorService{
		vendors:     repos.Vendor,
		performance: repos.Performance,
		engine:      engine,
		metrics:     metrics,
	}
}

// List returns every vendor
func (s *VendorService) List(ctx context.Context) ([]model.Vendor, error) {
	return s.vendors.FindAll(ctx)
}

// Get returns one vendor
func (s *VendorService) Get(ctx context.Context, id uint) (*model.Vendor, error) {
	return s.vendors.FindByID(ctx, id)
}

// Create registers a vendor. Its metrics start at zero.
func (s *VendorService) Create(ctx context.Context, input VendorInput) (*model.Vendor, error) {
	exists, err := s.vendors.ExistsByCode(ctx, input.VendorCode, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.Conflict("vendor with this vendor code already exists")
	}

	vendor := &model.Vendor{
		Name:           input.Name,
		ContactDetails: input.ContactDetails,
		Address:        input.Address,
		VendorCode:     input.VendorCode,
	}
	if err := s.vendors.Create(ctx, vendor); err != nil {
		return nil, err
	}

	s.metrics.RecordVendorOperation("create")
	logger.FromContext(ctx).Info("Vendor created",
		zap.Uint("vendor_id", vendor.ID),
		zap.String("vendor_code", vendor.VendorCode),
	)
	return vendor, nil
}

// Update changes the profile fields of a vendor. Metric fields are never written here.
func (s *VendorService) Update(ctx context.Context, id uint, input VendorInput) (*model.Vendor, error) {
	if _, err := s.vendors.FindByID(ctx, id); err != nil {
		return nil, err
	}

	exists, err := s.vendors.ExistsByCode(ctx, input.VendorCode, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.Conflict("vendor with this vendor code already exists")
	}

	vendor := &model.Vendor{
		ID:             id,
		Name:           input.Name,
		ContactDetails: input.ContactDetails,
		Address:        input.Address,
		VendorCode:     input.VendorCode,
	}
	if err := s.vendors.Update(ctx, vendor); err != nil {
		return nil, err
	}

	s.metrics.RecordVendorOperation("update")
	logger.FromContext(ctx).Info("Vendor updated", zap.Uint("vendor_id", id))
	return vendor, nil
}

// Delete removes a vendor with its purchase orders and history
func (s *VendorService) Delete(ctx context.Context, id uint) error {
	if err := s.vendors.Delete(ctx, id); err != nil {
		return err
	}

	s.metrics.RecordVendorOperation("delete")
	logger.FromContext(ctx).Info("Vendor deleted", zap.Uint("vendor_id", id))
	return nil
}

// Performance returns the cached metrics of a vendor as stored
func (s *VendorService) Performance(ctx context.Context, id uint) (*PerformanceView, error) {
	vendor, err := s.vendors.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PerformanceView{
		VendorID:           vendor.ID,
		Vendor:             vendor.Name,
		PerformanceMetrics: vendor.PerformanceMetrics,
	}, nil
}

// History returns the snapshots of a vendor, newest first
func (s *VendorService) History(ctx context.Context, id uint) ([]model.HistoricalPerformance, error) {
	if _, err := s.vendors.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.performance.FindHistory(ctx, id)
}

// Recalculate forces a full recomputation of a vendor's metrics
func (s *VendorService) Recalculate(ctx context.Context, id uint) (*performance.Result, error) {
	result, err := s.engine.Recalculate(ctx, id)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordVendorOperation("recalculate")
	return result, nil
}
