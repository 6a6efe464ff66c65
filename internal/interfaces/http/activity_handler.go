package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/consola-pro/internal/application/activity"
	"github.com/tu-usuario/consola-pro/internal/application/dto"
)

// ActivityHandler lecturas del log de actividad.
type ActivityHandler struct {
	log *activity.Log
}

// NewActivityHandler construye el handler de actividad.
func NewActivityHandler(log *activity.Log) *ActivityHandler {
	return &ActivityHandler{log: log}
}

// List devuelve los registros del tenant, más recientes primero.
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	out, err := h.log.List(c.Context(), GetTenantID(c), page)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errInternal(err))
	}
	return c.JSON(out)
}
