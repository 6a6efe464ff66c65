package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/consola-pro/internal/application/dto"
	"github.com/tu-usuario/consola-pro/internal/domain"
)

// Provisioner contrato mínimo sobre el router de datastores: estado
// observable del aprovisionamiento y reintento manual.
type Provisioner interface {
	ProvisionState(tenantID string) string
	RetryProvision(ctx context.Context, tenantID string) error
}

// AdminHandler operaciones administrativas por tenant.
type AdminHandler struct {
	provisioner Provisioner
}

// NewAdminHandler construye el handler administrativo.
func NewAdminHandler(p Provisioner) *AdminHandler {
	return &AdminHandler{provisioner: p}
}

// ProvisionState devuelve el estado del aprovisionamiento del datastore.
func (h *AdminHandler) ProvisionState(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	return c.JSON(dto.ProvisionStateResponse{
		TenantID: tenantID,
		State:    h.provisioner.ProvisionState(tenantID),
	})
}

// RetryProvision reintenta un aprovisionamiento fallido. Solo tiene sentido
// desde el estado failed; en otro estado responde 409.
func (h *AdminHandler) RetryProvision(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if err := h.provisioner.RetryProvision(c.Context(), tenantID); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "el aprovisionamiento no está en estado failed"})
		}
		if errors.Is(err, domain.ErrNotProvisioned) {
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "PROVISION_FAILED", Message: "el reintento volvió a fallar"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errInternal(err))
	}
	return c.JSON(dto.ProvisionStateResponse{TenantID: tenantID, State: h.provisioner.ProvisionState(tenantID)})
}
