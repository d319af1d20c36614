package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pos-service/internal/pos"
	"pos-service/internal/store"
)

// fail writes the error envelope every endpoint shares
func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"success": false, "message": message})
}

// writeError maps domain errors onto HTTP statuses. notFoundMessage
// overrides the message for ErrNotFound so each endpoint keeps its
// established wording.
func writeError(c echo.Context, log *zap.Logger, err error, notFoundMessage string) error {
	switch {
	case pos.IsValidation(err), pos.IsInsufficientStock(err), pos.IsInsufficientPayment(err):
		return fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		if notFoundMessage == "" {
			notFoundMessage = "Not found"
		}
		return fail(c, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, pos.ErrUnauthorized):
		return fail(c, http.StatusUnauthorized, err.Error())
	default:
		log.Error("Request failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
}
