package http

import (
	"bufio"
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/consola-pro/internal/application/dto"
	"github.com/tu-usuario/consola-pro/internal/application/frames"
	"github.com/tu-usuario/consola-pro/internal/domain/entity"
)

// FrameHandler ingesta de mensajes de frames y difusión de tema.
type FrameHandler struct {
	bus *frames.Bus
}

// NewFrameHandler construye el handler de frames.
func NewFrameHandler(bus *frames.Bus) *FrameHandler {
	return &FrameHandler{bus: bus}
}

// PostMessage recibe un sobre de frame. Responde 202 siempre: el descarte
// por origen o forma es silencioso y la persistencia corre en segundo
// plano, el frame nunca espera.
func (h *FrameHandler) PostMessage(c *fiber.Ctx) error {
	var msg entity.FrameMessage
	if err := c.BodyParser(&msg); err != nil {
		// Cuerpo no parseable equivale a forma inválida: descarte silencioso.
		return c.SendStatus(fiber.StatusAccepted)
	}
	h.bus.Dispatch(c.Context(), GetTenantID(c), c.Get("Origin"), msg)
	return c.SendStatus(fiber.StatusAccepted)
}

// Events transmite los cambios de tema del tenant como server-sent events.
// Fire-and-forget hacia los frames: sin acuse de recibo, el stream termina
// cuando el cliente corta o el contexto muere.
func (h *FrameHandler) Events(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)

	// El Done() del RequestCtx de fasthttp solo cierra al apagar el
	// servidor, no al cortar el cliente: el cancel explícito al salir del
	// stream writer es lo que termina la suscripción.
	ctx, cancel := context.WithCancel(c.Context())

	themes, err := h.bus.SubscribeTheme(ctx, tenantID)
	if err != nil {
		cancel()
		return c.Status(fiber.StatusInternalServerError).JSON(errInternal(err))
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		for theme := range themes {
			if _, err := fmt.Fprintf(w, "event: theme\ndata: %s\n\n", theme); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	})
	return nil
}

// PostTheme difunde un cambio de tema a todos los frames del tenant.
func (h *FrameHandler) PostTheme(c *fiber.Ctx) error {
	var in dto.ThemeChangeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Theme != "light" && in.Theme != "dark" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "theme debe ser light o dark"})
	}
	if err := h.bus.BroadcastTheme(c.Context(), GetTenantID(c), in.Theme); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errInternal(err))
	}
	return c.SendStatus(fiber.StatusAccepted)
}
