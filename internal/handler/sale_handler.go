package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pos-service/internal/pos"
	"pos-service/pkg/logger"
)

// SaleHandler exposes the checkout endpoint
type SaleHandler struct {
	checkout *pos.CheckoutService
}

// NewSaleHandler builds a sale handler
func NewSaleHandler(checkout *pos.CheckoutService) *SaleHandler {
	return &SaleHandler{checkout: checkout}
}

// Create handles POST /api/sales. The whole checkout runs server-side in
// one transaction: stock validation and decrement, ledger movements,
// member discount and points, and the sale record.
func (h *SaleHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req pos.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid checkout payload", zap.Error(err))
		return fail(c, http.StatusBadRequest, "Invalid request data")
	}

	receipt, err := h.checkout.Checkout(c.Request().Context(), req)
	if err != nil {
		return writeError(c, log, err, "Product not found")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":        true,
		"sale":           receipt.Sale,
		"memberDiscount": receipt.MemberDiscount,
		"pointsEarned":   receipt.PointsEarned,
	})
}
