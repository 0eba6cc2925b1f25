package service

import (
	"context"

	"github.com/KRGANESH/vendor-management/internal/model"
	"github.com/KRGANESH/vendor-management/internal/performance"
)

// MetricsEngine is the part of performance.Engine the services call
type MetricsEngine interface {
	OnPurchaseOrderSaved(ctx context.Context, order *model.PurchaseOrder) (*performance.Result, error)
	Recalculate(ctx context.Context, vendorID uint) (*performance.Result, error)
}
