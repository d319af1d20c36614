package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pos-service/internal/pos"
	"pos-service/pkg/logger"
)

// MemberHandler exposes the member registry endpoints
type MemberHandler struct {
	members *pos.MemberService
}

// NewMemberHandler builds a member handler
func NewMemberHandler(members *pos.MemberService) *MemberHandler {
	return &MemberHandler{members: members}
}

// List handles GET /api/members
func (h *MemberHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	members, err := h.members.List(c.Request().Context())
	if err != nil {
		return writeError(c, log, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "members": members})
}

// Create handles POST /api/members
func (h *MemberHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid member payload", zap.Error(err))
		return fail(c, http.StatusBadRequest, "Invalid request data")
	}

	member, err := h.members.Create(c.Request().Context(), req.Name, req.Phone)
	if err != nil {
		return writeError(c, log, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "member": member})
}

// Transactions handles GET /api/members/:id/transactions
func (h *MemberHandler) Transactions(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := paramID(c)
	if err != nil {
		return writeError(c, log, err, "")
	}

	transactions, err := h.members.Transactions(c.Request().Context(), id)
	if err != nil {
		return writeError(c, log, err, "Member not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "transactions": transactions})
}
