package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/KRGANESH/vendor-management/internal/apperror"
	"github.com/KRGANESH/vendor-management/prometheus"
)

// Repositories groups the stores backed by one database handle
type Repositories struct {
	Vendor        *VendorRepository
	PurchaseOrder *PurchaseOrderRepository
	Performance   *PerformanceRepository
}

// NewRepositories creates every repository. metrics may be nil.
func NewRepositories(db *gorm.DB, metrics *prometheus.Metrics) *Repositories {
	return &Repositories{
		Vendor:        NewVendorRepository(db, metrics),
		PurchaseOrder: NewPurchaseOrderRepository(db, metrics),
		Performance:   NewPerformanceRepository(db, metrics),
	}
}

// translate classifies a gorm error. Application errors raised by model hooks
// pass through unchanged.
func translate(err error, notFound *apperror.Error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil:
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.Conflict("%s: duplicate key", message)
	default:
		return apperror.StoreUnavailable(err, message)
	}
}
