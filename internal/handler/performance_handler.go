package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/KRGANESH/vendor-management/internal/model"
	"github.com/KRGANESH/vendor-management/internal/performance"
)

// RuleOutcome reports one metric of a recalculation
type RuleOutcome struct {
	Metric  model.MetricField   `json:"metric"`
	Outcome performance.Outcome `json:"outcome"`
}

// RecalculationResponse is returned by a forced recalculation
type RecalculationResponse struct {
	VendorID  uint                     `json:"vendor_id"`
	Metrics   model.PerformanceMetrics `json:"metrics"`
	Rules     []RuleOutcome            `json:"rules"`
	Snapshots int                      `json:"snapshots"`
}

// GetVendorPerformance returns the cached metrics of a vendor as stored
func (h *Handler) GetVendorPerformance(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid vendor id")
	}

	view, err := h.vendors.Performance(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to get vendor performance")
	}
	return c.JSON(http.StatusOK, view)
}

// GetHistoricalPerformance returns the snapshots of a vendor, newest first
func (h *Handler) GetHistoricalPerformance(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid vendor id")
	}

	history, err := h.vendors.History(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to get historical performance")
	}
	return c.JSON(http.StatusOK, history)
}

// RecalculatePerformance recomputes every metric of a vendor
func (h *Handler) RecalculatePerformance(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid vendor id")
	}

	result, err := h.vendors.Recalculate(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to recalculate vendor performance")
	}

	resp := RecalculationResponse{
		VendorID:  result.VendorID,
		Metrics:   result.Metrics,
		Rules:     make([]RuleOutcome, 0, len(result.Rules)),
		Snapshots: len(result.Snapshots),
	}
	for _, rr := range result.Rules {
		resp.Rules = append(resp.Rules, RuleOutcome{Metric: rr.Field, Outcome: rr.Outcome})
	}
	return c.JSON(http.StatusOK, resp)
}
