package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/consola-pro/internal/application/dto"
	"github.com/tu-usuario/consola-pro/internal/application/embed"
	"github.com/tu-usuario/consola-pro/internal/domain"
)

// EmbedHandler emite URLs de embebido con token para aplicaciones partner.
type EmbedHandler struct {
	issuer *embed.TokenIssuer
}

// NewEmbedHandler construye el handler de embebido.
func NewEmbedHandler(issuer *embed.TokenIssuer) *EmbedHandler {
	return &EmbedHandler{issuer: issuer}
}

// GetEmbedURL devuelve URL + token para la aplicación partner del tenant.
// El tema viaja como query opcional para que el frame arranque ya pintado.
func (h *EmbedHandler) GetEmbedURL(c *fiber.Ctx) error {
	out, err := h.issuer.BuildEmbedURL(c.Context(), GetSession(c), c.Params("partner"), c.Query("theme"))
	if err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) || errors.Is(err, domain.ErrUnknownPartner) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "aplicación partner desconocida"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errInternal(err))
	}
	return c.JSON(out)
}
