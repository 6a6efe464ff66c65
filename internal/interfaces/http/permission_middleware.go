package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/consola-pro/internal/application/dto"
	"github.com/tu-usuario/consola-pro/internal/domain/authz"
)

// RequirePermission exige que el rol de la sesión tenga (entidad, acción)
// en la matriz. La denegación es un 403 uniforme, sin detalle de la regla
// que falló.
func RequirePermission(matrix *authz.Matrix, ent, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := GetSession(c)
		if claims == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "sesión requerida"})
		}
		// La elevación de superadmin omite la matriz, pero solo dentro del
		// tenant de la propia sesión: el resolver ya cortó cualquier cruce.
		if claims.SuperAdmin {
			return c.Next()
		}
		if !matrix.HasPermission(claims.Role, ent, action) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "permiso denegado"})
		}
		return c.Next()
	}
}
