package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/consola-pro/internal/application/auth"
	"github.com/tu-usuario/consola-pro/internal/application/dto"
	"github.com/tu-usuario/consola-pro/internal/domain"
	"github.com/tu-usuario/consola-pro/internal/domain/authz"
)

// AuthHandler maneja login, logout y el mapa de permisos de la sesión.
type AuthHandler struct {
	uc     *auth.SessionIssuer
	matrix *authz.Matrix
	secure bool // cookies Secure solo en producción
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.SessionIssuer, matrix *authz.Matrix, secure bool) *AuthHandler {
	return &AuthHandler{uc: uc, matrix: matrix, secure: secure}
}

// Login autentica credenciales y emite la sesión. Fija la cookie y además
// devuelve el token en el cuerpo para clientes que prefieren Bearer.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Email == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "email y password son requeridos"})
	}
	out, err := h.uc.Authenticate(c.Context(), in)
	if err != nil {
		// Credencial mala y usuario inexistente responden igual.
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
		}
		if errors.Is(err, domain.ErrForbidden) || errors.Is(err, domain.ErrNoMembership) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "cuenta inactiva o sin membresía"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errInternal(err))
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    out.Token,
		Expires:  time.Now().Add(24 * time.Hour),
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return c.JSON(out)
}

// Logout borra la cookie de sesión. El token sigue siendo válido hasta su
// expiración: no hay lista de revocación.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return c.SendStatus(fiber.StatusNoContent)
}

// Permissions devuelve el mapa entidad → acciones del rol de la sesión,
// para que la consola pinte u oculte controles.
func (h *AuthHandler) Permissions(c *fiber.Ctx) error {
	claims := GetSession(c)
	perms := make(map[string][]string, len(authz.AllEntities))
	for _, ent := range authz.AllEntities {
		if actions := h.matrix.EntityPermissions(claims.Role, ent); len(actions) > 0 {
			perms[ent] = actions
		}
	}
	return c.JSON(dto.PermissionsResponse{Role: claims.Role, Permissions: perms})
}

// errInternal cuerpo uniforme de error interno; el detalle queda en logs.
func errInternal(_ error) dto.ErrorResponse {
	return dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
}
