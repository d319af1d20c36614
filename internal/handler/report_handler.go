package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pos-service/internal/pos"
	"pos-service/pkg/logger"
)

// ReportHandler exposes the dashboard and report endpoints
type ReportHandler struct {
	reports *pos.ReportService
}

// NewReportHandler builds a report handler
func NewReportHandler(reports *pos.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Summary handles GET /api/dashboard/summary?range=today|week|month|year
func (h *ReportHandler) Summary(c echo.Context) error {
	log := logger.FromEcho(c)

	summary, err := h.reports.Summary(c.Request().Context(), c.QueryParam("range"))
	if err != nil {
		return writeError(c, log, err, "")
	}
	// The dashboard payload is the summary object itself, without the
	// success envelope the other endpoints use.
	return c.JSON(http.StatusOK, summary)
}

// Sales handles GET /api/reports/sales?startDate&endDate
func (h *ReportHandler) Sales(c echo.Context) error {
	log := logger.FromEcho(c)

	report, err := h.reports.SalesBetween(c.Request().Context(), c.QueryParam("startDate"), c.QueryParam("endDate"))
	if err != nil {
		return writeError(c, log, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "summary": report.Summary, "sales": report.Sales})
}

// Products handles GET /api/reports/products?type=low-stock|top-selling|all
func (h *ReportHandler) Products(c echo.Context) error {
	log := logger.FromEcho(c)

	products, err := h.reports.Products(c.Request().Context(), c.QueryParam("type"))
	if err != nil {
		return writeError(c, log, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "products": products})
}
