package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/KRGANESH/vendor-management/internal/apperror"
	"github.com/KRGANESH/vendor-management/internal/service"
	"github.com/KRGANESH/vendor-management/pkg/logger"
	"github.com/KRGANESH/vendor-management/pkg/validate"
)

// Handler serves the vendor and purchase order API
type Handler struct {
	vendors *service.VendorService
	orders  *service.PurchaseOrderService
}

func New(vendors *service.VendorService, orders *service.PurchaseOrderService) *Handler {
	return &Handler{vendors: vendors, orders: orders}
}

// Register mounts every route on e
func (h *Handler) Register(e *echo.Echo) {
	if e.Validator == nil {
		e.Validator = validate.New()
	}

	e.GET("/", h.ListVendors)
	e.GET("/health", Hello)

	vendors := e.Group("/vendors")
	vendors.GET("/", h.ListVendors)
	vendors.POST("/create_vendor/", h.CreateVendor)
	vendors.GET("/:id/", h.GetVendor)
	vendors.PUT("/:id/update_vendor/", h.UpdateVendor)
	vendors.DELETE("/:id/delete_vendor", h.DeleteVendor)
	vendors.GET("/:id/performance/", h.GetVendorPerformance)
	vendors.GET("/:id/historical_performance/", h.GetHistoricalPerformance)
	vendors.POST("/:id/performance/recalculate", h.RecalculatePerformance)

	orders := e.Group("/purchase_orders")
	orders.GET("/", h.ListPurchaseOrders)
	orders.POST("/create_order", h.CreatePurchaseOrder)
	orders.GET("/:id/get_purchase_order_details", h.GetPurchaseOrder)
	orders.PUT("/:id/update_purchase_order", h.UpdatePurchaseOrder)
	orders.DELETE("/:id/delete_purchase_order", h.DeletePurchaseOrder)
}

// bind decodes and validates the request body
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperror.Validation("Invalid request data")
	}
	return c.Validate(req)
}

// parseID reads a positive numeric path parameter
func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperror.Validation("invalid %s", name)
	}
	return uint(id), nil
}

// respondError writes err with the status of its kind
func respondError(c echo.Context, err error, msg string) error {
	status := apperror.HTTPStatus(err)
	log := logger.FromEcho(c)
	if status >= http.StatusInternalServerError {
		log.Error(msg, zap.Error(err))
	} else {
		log.Warn(msg, zap.Int("status", status), zap.Error(err))
	}
	return c.JSON(status, echo.Map{
		"error": apperror.PublicMessage(err),
	})
}
