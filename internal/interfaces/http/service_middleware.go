package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/consola-pro/internal/application/dto"
	"github.com/tu-usuario/consola-pro/internal/application/tenantcfg"
)

// HeaderServiceKey cabecera del secreto compartido servicio-a-servicio.
const HeaderServiceKey = "X-Service-Key"

// serviceKeyValidator contrato mínimo sobre el validador de confianza.
type serviceKeyValidator interface {
	IsValidServiceKey(key string) bool
}

// ServiceAuth protege los endpoints internos con el secreto compartido.
// La comparación es en tiempo constante y acepta la clave anterior durante
// la ventana de rotación.
func ServiceAuth(validator serviceKeyValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !validator.IsValidServiceKey(c.Get(HeaderServiceKey)) {
			// 401 uniforme: no distingue clave ausente de clave errónea.
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "clave de servicio inválida"})
		}
		return c.Next()
	}
}

// ServiceTenant exige el X-Tenant-ID explícito en las rutas de ingesta.
// El tenant declarado se acepta sin atadura criptográfica a la clave:
// cualquier servicio con la clave puede escribir en cualquier tenant.
// Supuesto de confianza asumido del perímetro interno.
func ServiceTenant(production bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID := c.Get(HeaderTenantID)
		if tenantID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "X-Tenant-ID requerido"})
		}
		if !tenantcfg.ValidID(tenantID, production) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "tenant inválido"})
		}
		c.Locals(LocalTenantID, tenantID)
		return c.Next()
	}
}
