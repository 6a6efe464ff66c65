package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/consola-pro/internal/application/dto"
	"github.com/tu-usuario/consola-pro/internal/application/inbox"
)

// AlertHandler bandeja de alertas del usuario.
type AlertHandler struct {
	inbox *inbox.Inbox
}

// NewAlertHandler construye el handler de alertas.
func NewAlertHandler(ib *inbox.Inbox) *AlertHandler {
	return &AlertHandler{inbox: ib}
}

// List devuelve las alertas no vencidas del usuario, más recientes primero.
func (h *AlertHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	out, err := h.inbox.List(c.Context(), GetTenantID(c), GetSession(c).UserID, page)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errInternal(err))
	}
	return c.JSON(out)
}

// MarkRead marca como leída la proyección del propio usuario. Idempotente:
// repetir la marca responde igual.
func (h *AlertHandler) MarkRead(c *fiber.Ctx) error {
	alertID := c.Params("id")
	if alertID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	if err := h.inbox.MarkRead(c.Context(), GetTenantID(c), alertID, GetSession(c).UserID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errInternal(err))
	}
	return c.SendStatus(fiber.StatusNoContent)
}
