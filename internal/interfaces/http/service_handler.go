package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/consola-pro/internal/application/activity"
	"github.com/tu-usuario/consola-pro/internal/application/dto"
	"github.com/tu-usuario/consola-pro/internal/application/inbox"
	"github.com/tu-usuario/consola-pro/internal/application/kpi"
	"github.com/tu-usuario/consola-pro/internal/domain"
)

// configInvalidator contrato mínimo sobre el store de configuración para
// invalidación remota.
type configInvalidator interface {
	Invalidate(tenantID string)
	InvalidateAll()
}

// ServiceHandler ingesta servicio-a-servicio: escribe en los almacenes del
// tenant declarado en X-Tenant-ID bajo el secreto compartido.
type ServiceHandler struct {
	activity *activity.Log
	inbox    *inbox.Inbox
	kpis     *kpi.Cache
	configs  configInvalidator
}

// NewServiceHandler construye el handler interno.
func NewServiceHandler(act *activity.Log, ib *inbox.Inbox, kpis *kpi.Cache, configs configInvalidator) *ServiceHandler {
	return &ServiceHandler{activity: act, inbox: ib, kpis: kpis, configs: configs}
}

// RecordActivity escribe en el log de actividad.
func (h *ServiceHandler) RecordActivity(c *fiber.Ctx) error {
	var in dto.RecordActivityRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.activity.Record(c.Context(), GetTenantID(c), in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "module y action son requeridos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errInternal(err))
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ActivityResponse{
		ID:        rec.ID,
		Module:    rec.Module,
		Action:    rec.Action,
		Detail:    rec.Detail,
		UserID:    rec.UserID,
		CreatedAt: rec.CreatedAt,
	})
}

// CreateAlert crea una alerta y la reparte a sus destinatarios.
func (h *ServiceHandler) CreateAlert(c *fiber.Ctx) error {
	var in dto.CreateAlertRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	alert, err := h.inbox.CreateAndFanout(c.Context(), GetTenantID(c), in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "module y title son requeridos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errInternal(err))
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AlertResponse{
		ID:        alert.ID,
		Module:    alert.Module,
		Title:     alert.Title,
		Body:      alert.Body,
		Severity:  alert.Severity,
		Type:      alert.Type,
		Pinned:    alert.Pinned,
		ExpiresAt: alert.ExpiresAt,
		CreatedAt: alert.CreatedAt,
	})
}

// UpsertKpi escribe una entrada de KPI bajo su clave compuesta.
func (h *ServiceHandler) UpsertKpi(c *fiber.Ctx) error {
	var in dto.KpiWriteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	entry, err := h.kpis.Upsert(c.Context(), GetTenantID(c), in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "module y key son requeridos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errInternal(err))
	}
	return c.JSON(dto.KpiResponse{
		Module:    entry.Module,
		Key:       entry.Key,
		Value:     entry.Value,
		Unit:      entry.Unit,
		Change:    entry.Change,
		ExpiresAt: entry.ExpiresAt,
		UpdatedAt: entry.UpdatedAt,
	})
}

// PurgeKpis elimina bajo demanda las entradas vencidas del tenant.
func (h *ServiceHandler) PurgeKpis(c *fiber.Ctx) error {
	purged, err := h.kpis.PurgeExpired(c.Context(), GetTenantID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errInternal(err))
	}
	return c.JSON(fiber.Map{"purged": purged})
}

// InvalidateTenant vacía la entrada cacheada de configuración del tenant.
func (h *ServiceHandler) InvalidateTenant(c *fiber.Ctx) error {
	h.configs.Invalidate(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

// InvalidateAllTenants vacía toda la caché de configuración.
func (h *ServiceHandler) InvalidateAllTenants(c *fiber.Ctx) error {
	h.configs.InvalidateAll()
	return c.SendStatus(fiber.StatusNoContent)
}
