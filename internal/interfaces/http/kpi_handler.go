package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/consola-pro/internal/application/kpi"
)

// KpiHandler lecturas de la caché de KPIs.
type KpiHandler struct {
	cache *kpi.Cache
}

// NewKpiHandler construye el handler de KPIs.
func NewKpiHandler(cache *kpi.Cache) *KpiHandler {
	return &KpiHandler{cache: cache}
}

// List devuelve las entradas vigentes del tenant.
func (h *KpiHandler) List(c *fiber.Ctx) error {
	out, err := h.cache.List(c.Context(), GetTenantID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errInternal(err))
	}
	return c.JSON(out)
}
