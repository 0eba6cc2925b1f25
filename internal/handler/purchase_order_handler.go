package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/KRGANESH/vendor-management/internal/apperror"
	"github.com/KRGANESH/vendor-management/internal/model"
	"github.com/KRGANESH/vendor-management/internal/service"
	"github.com/KRGANESH/vendor-management/pkg/logger"
)

// PurchaseOrderRequest defines the structure for purchase order creation/update requests
type PurchaseOrderRequest struct {
	PONumber           string          `json:"po_number" validate:"required,max=20"`
	Vendor             uint            `json:"vendor" validate:"required"`
	OrderDate          time.Time       `json:"order_date" validate:"required"`
	DeliveryDate       time.Time       `json:"delivery_date" validate:"required"`
	Items              json.RawMessage `json:"items" validate:"required"`
	Quantity           *int            `json:"quantity" validate:"required,gte=0"`
	Status             string          `json:"status" validate:"omitempty,oneof=pending completed canceled"`
	QualityRating      *float64        `json:"quality_rating" validate:"omitempty,gte=0,lte=5"`
	IssueDate          time.Time       `json:"issue_date" validate:"required"`
	AcknowledgmentDate *time.Time      `json:"acknowledgment_date"`
}

func (r PurchaseOrderRequest) input() service.PurchaseOrderInput {
	return service.PurchaseOrderInput{
		PONumber:           r.PONumber,
		VendorID:           r.Vendor,
		OrderDate:          r.OrderDate,
		DeliveryDate:       r.DeliveryDate,
		Items:              datatypes.JSON(r.Items),
		Quantity:           *r.Quantity,
		Status:             model.Status(r.Status),
		QualityRating:      r.QualityRating,
		IssueDate:          r.IssueDate,
		AcknowledgmentDate: r.AcknowledgmentDate,
	}
}

// PurchaseOrderUpdateRequest replaces every field of an order, status included
type PurchaseOrderUpdateRequest struct {
	PurchaseOrderRequest
	Status string `json:"status" validate:"required,oneof=pending completed canceled"`
}

func (r PurchaseOrderUpdateRequest) input() service.PurchaseOrderInput {
	in := r.PurchaseOrderRequest.input()
	in.Status = model.Status(r.Status)
	return in
}

// ListPurchaseOrders returns purchase orders, optionally filtered by ?vendor_id=
func (h *Handler) ListPurchaseOrders(c echo.Context) error {
	var vendorID *uint
	if raw := c.QueryParam("vendor_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return respondError(c, apperror.Validation("invalid vendor_id"), "Invalid vendor filter")
		}
		v := uint(id)
		vendorID = &v
	}

	orders, err := h.orders.List(c.Request().Context(), vendorID)
	if err != nil {
		return respondError(c, err, "Failed to list purchase orders")
	}
	return c.JSON(http.StatusOK, orders)
}

// CreatePurchaseOrder persists an order and refreshes the vendor's metrics
func (h *Handler) CreatePurchaseOrder(c echo.Context) error {
	var req PurchaseOrderRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "Invalid purchase order request")
	}

	logger.FromEcho(c).Info("Purchase order creation request",
		zap.String("po_number", req.PONumber),
		zap.Uint("vendor_id", req.Vendor),
	)

	order, err := h.orders.Create(c.Request().Context(), req.input())
	if err != nil {
		return respondError(c, err, "Failed to create purchase order")
	}
	return c.JSON(http.StatusCreated, order)
}

// GetPurchaseOrder returns one purchase order
func (h *Handler) GetPurchaseOrder(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid purchase order id")
	}

	order, err := h.orders.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to get purchase order")
	}
	return c.JSON(http.StatusOK, order)
}

// UpdatePurchaseOrder overwrites an order and refreshes the vendor's metrics
func (h *Handler) UpdatePurchaseOrder(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid purchase order id")
	}

	var req PurchaseOrderUpdateRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "Invalid purchase order request")
	}

	order, err := h.orders.Update(c.Request().Context(), id, req.input())
	if err != nil {
		return respondError(c, err, "Failed to update purchase order")
	}
	return c.JSON(http.StatusOK, order)
}

// DeletePurchaseOrder removes an order. Vendor metrics are not recomputed.
func (h *Handler) DeletePurchaseOrder(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid purchase order id")
	}

	if err := h.orders.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err, "Failed to delete purchase order")
	}
	return c.NoContent(http.StatusNoContent)
}
