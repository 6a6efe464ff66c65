package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/consola-pro/internal/application/tenantcfg"
	"github.com/tu-usuario/consola-pro/internal/domain/entity"
	"github.com/tu-usuario/consola-pro/pkg/jwt"
)

// Locals keys en Fiber.
const (
	LocalTenantID = "tenant_id"
	LocalSession  = "session"
)

// HeaderTenantID cabecera con el tenant resuelto, visible para las capas
// siguientes de la petición.
const HeaderTenantID = "X-Tenant-ID"

// SessionCookie nombre de la cookie de sesión de la consola.
const SessionCookie = "console_session"

// reservedSegments primeros segmentos de ruta que nunca son un tenant: el
// resolver los deja pasar intactos.
var reservedSegments = map[string]struct{}{
	"login":       {},
	"logout":      {},
	"auth":        {},
	"api":         {},
	"internal":    {},
	"static":      {},
	"assets":      {},
	"favicon.ico": {},
	"health":      {},
	"metrics":     {},
	"terms":       {},
	"privacy":     {},
	"legal":       {},
}

// ReservedSegment indica si el segmento está en la lista de reservados.
func ReservedSegment(seg string) bool {
	_, ok := reservedSegments[seg]
	return ok
}

// tenantConfigGetter contrato mínimo del resolver sobre el store de
// configuración.
type tenantConfigGetter interface {
	Get(ctx context.Context, tenantID string) (*entity.TenantConfig, error)
}

// TenantResolver resuelve el tenant desde el primer segmento de la ruta.
// Candidato inválido o desconocido redirige a /login?error=invalid_tenant;
// una sesión atada a otro tenant redirige a
// /login?error=tenant_mismatch&tenant={segmento}. En éxito fija la cabecera
// X-Tenant-ID y el local del tenant.
func TenantResolver(tenants tenantConfigGetter, jwtSecret string, production bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		candidate := c.Params("tenant")
		if ReservedSegment(candidate) {
			return c.Next()
		}
		if !tenantcfg.ValidID(candidate, production) {
			return c.Redirect("/login?error=invalid_tenant", fiber.StatusFound)
		}
		cfg, err := tenants.Get(c.Context(), candidate)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(errInternal(err))
		}
		if cfg == nil || cfg.Suspended() {
			return c.Redirect("/login?error=invalid_tenant", fiber.StatusFound)
		}

		// Una sesión válida atada a otro tenant nunca cruza la frontera,
		// superadmin incluido: la elevación vale dentro del propio tenant.
		if claims := sessionFromRequest(c, jwtSecret); claims != nil {
			if claims.TenantID != candidate {
				return c.Redirect("/login?error=tenant_mismatch&tenant="+candidate, fiber.StatusFound)
			}
		}

		c.Request().Header.Set(HeaderTenantID, candidate)
		c.Locals(LocalTenantID, candidate)
		return c.Next()
	}
}

// RootRedirect maneja GET /: sin sesión va a /login, con sesión al tenant
// de los claims.
func RootRedirect(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := sessionFromRequest(c, jwtSecret)
		if claims == nil {
			return c.Redirect("/login", fiber.StatusFound)
		}
		return c.Redirect("/"+claims.TenantID+"/", fiber.StatusFound)
	}
}

// sessionFromRequest extrae los claims de sesión de la cookie o del Bearer.
// nil si no hay token o no valida; aquí la ausencia no es un error.
func sessionFromRequest(c *fiber.Ctx, jwtSecret string) *jwt.SessionClaims {
	token := c.Cookies(SessionCookie)
	if token == "" {
		token = bearerToken(c)
	}
	if token == "" {
		return nil
	}
	claims, err := jwt.ParseSession(jwtSecret, token)
	if err != nil {
		return nil
	}
	return claims
}

// GetTenantID devuelve el tenant resuelto (después del TenantResolver).
func GetTenantID(c *fiber.Ctx) string {
	v := c.Locals(LocalTenantID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
