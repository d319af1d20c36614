package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pos-service/internal/pos"
	"pos-service/pkg/logger"
)

// ProductHandler exposes the catalog and stock endpoints
type ProductHandler struct {
	catalog *pos.CatalogService
}

// NewProductHandler builds a product handler
func NewProductHandler(catalog *pos.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

func paramID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, pos.Invalid("Invalid id")
	}
	return uint(id), nil
}

// List handles GET /api/products
func (h *ProductHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	products, err := h.catalog.List(c.Request().Context())
	if err != nil {
		return writeError(c, log, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "products": products})
}

// Create handles POST /api/products
func (h *ProductHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req pos.CreateProductInput
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid product payload", zap.Error(err))
		return fail(c, http.StatusBadRequest, "Invalid request data")
	}

	product, err := h.catalog.Create(c.Request().Context(), req)
	if err != nil {
		return writeError(c, log, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "product": product})
}

// Update handles PUT /api/products/:id
func (h *ProductHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := paramID(c)
	if err != nil {
		return writeError(c, log, err, "")
	}

	var req pos.UpdateProductInput
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid product payload", zap.Uint("product_id", id), zap.Error(err))
		return fail(c, http.StatusBadRequest, "Invalid request data")
	}

	product, err := h.catalog.Update(c.Request().Context(), id, req)
	if err != nil {
		return writeError(c, log, err, "Product not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "product": product})
}

// Delete handles DELETE /api/products/:id
func (h *ProductHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := paramID(c)
	if err != nil {
		return writeError(c, log, err, "")
	}

	if err := h.catalog.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, log, err, "Product not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// AdjustStock handles POST /api/products/:id/stock
func (h *ProductHandler) AdjustStock(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := paramID(c)
	if err != nil {
		return writeError(c, log, err, "")
	}

	var req struct {
		Type   string `json:"type"`
		Amount int    `json:"amount"`
		Note   string `json:"note"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid type or amount")
	}

	product, err := h.catalog.AdjustStock(c.Request().Context(), id, req.Type, req.Amount, req.Note)
	if err != nil {
		if pos.IsInsufficientStock(err) {
			return fail(c, http.StatusBadRequest, "Stock not enough")
		}
		return writeError(c, log, err, "Product not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "product": product})
}

// Movements handles GET /api/stock-movements
func (h *ProductHandler) Movements(c echo.Context) error {
	log := logger.FromEcho(c)

	movements, err := h.catalog.Movements(c.Request().Context())
	if err != nil {
		return writeError(c, log, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "stockMovements": movements})
}

type barcodeRequest struct {
	Barcode string `json:"barcode"`
}

// Scan handles POST /api/products/scan (lookup only, stock check flow)
func (h *ProductHandler) Scan(c echo.Context) error {
	log := logger.FromEcho(c)

	var req barcodeRequest
	if err := c.Bind(&req); err != nil || req.Barcode == "" {
		return fail(c, http.StatusBadRequest, "Barcode is required")
	}

	product, err := h.catalog.FindByBarcode(c.Request().Context(), req.Barcode)
	if err != nil {
		return writeError(c, log, err, "Product not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "product": product, "message": "Product found"})
}

// ScanIn handles POST /api/products/scan-in (receive one unit, create
// the product if the barcode is unknown)
func (h *ProductHandler) ScanIn(c echo.Context) error {
	log := logger.FromEcho(c)

	var req barcodeRequest
	if err := c.Bind(&req); err != nil || req.Barcode == "" {
		return fail(c, http.StatusBadRequest, "Barcode is required")
	}

	product, created, err := h.catalog.ScanIn(c.Request().Context(), req.Barcode)
	if err != nil {
		return writeError(c, log, err, "")
	}
	message := "Stock updated"
	if created {
		message = "Product created"
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "product": product, "message": message})
}

// Find handles POST /api/products/find (lookup only)
func (h *ProductHandler) Find(c echo.Context) error {
	log := logger.FromEcho(c)

	var req barcodeRequest
	if err := c.Bind(&req); err != nil || req.Barcode == "" {
		return fail(c, http.StatusBadRequest, "Barcode is required")
	}

	product, err := h.catalog.FindByBarcode(c.Request().Context(), req.Barcode)
	if err != nil {
		return writeError(c, log, err, "Product not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "product": product})
}

// UpdateStock handles POST /api/products/update-stock (bulk decrement,
// all-or-nothing)
func (h *ProductHandler) UpdateStock(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		Items []pos.StockLine `json:"items"`
	}
	if err := c.Bind(&req); err != nil || req.Items == nil {
		return fail(c, http.StatusBadRequest, "Invalid items")
	}

	if err := h.catalog.BulkDecrement(c.Request().Context(), req.Items); err != nil {
		return writeError(c, log, err, "Product not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
