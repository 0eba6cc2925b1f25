package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/KRGANESH/vendor-management/internal/service"
	"github.com/KRGANESH/vendor-management/pkg/logger"
)

// VendorRequest defines the structure for vendor creation/update requests.
// Performance metrics are not accepted.
type VendorRequest struct {
	Name           string `json:"name" validate:"required,max=255"`
	ContactDetails string `json:"contact_details" validate:"required"`
	Address        string `json:"address" validate:"required"`
	VendorCode     string `json:"vendor_code" validate:"required,max=20"`
}

func (r VendorRequest) input() service.VendorInput {
	return service.VendorInput{
		Name:           r.Name,
		ContactDetails: r.ContactDetails,
		Address:        r.Address,
		VendorCode:     r.VendorCode,
	}
}

// ListVendors returns every vendor
func (h *Handler) ListVendors(c echo.Context) error {
	vendors, err := h.vendors.List(c.Request().Context())
	if err != nil {
		return respondError(c, err, "Failed to list vendors")
	}
	return c.JSON(http.StatusOK, vendors)
}

// CreateVendor registers a new vendor
func (h *Handler) CreateVendor(c echo.Context) error {
	var req VendorRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "Invalid vendor request")
	}

	logger.FromEcho(c).Info("Vendor creation request",
		zap.String("name", req.Name),
		zap.String("vendor_code", req.VendorCode),
	)

	vendor, err := h.vendors.Create(c.Request().Context(), req.input())
	if err != nil {
		return respondError(c, err, "Failed to create vendor")
	}
	return c.JSON(http.StatusCreated, vendor)
}

// GetVendor returns one vendor
func (h *Handler) GetVendor(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid vendor id")
	}

	vendor, err := h.vendors.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to get vendor")
	}
	return c.JSON(http.StatusOK, vendor)
}

// UpdateVendor changes the profile of a vendor
func (h *Handler) UpdateVendor(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid vendor id")
	}

	var req VendorRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "Invalid vendor request")
	}

	vendor, err := h.vendors.Update(c.Request().Context(), id, req.input())
	if err != nil {
		return respondError(c, err, "Failed to update vendor")
	}
	return c.JSON(http.StatusOK, vendor)
}

// DeleteVendor removes a vendor with its purchase orders and history
func (h *Handler) DeleteVendor(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid vendor id")
	}

	if err := h.vendors.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err, "Failed to delete vendor")
	}
	return c.NoContent(http.StatusNoContent)
}
