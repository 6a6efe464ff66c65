package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrTenantNotFound = errors.New("tenant no encontrado")
	ErrUserNotFound   = errors.New("usuario no encontrado")
	ErrNoMembership   = errors.New("el usuario no pertenece a ningún tenant")
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrDuplicate      = errors.New("recurso duplicado")
	ErrUnauthorized   = errors.New("no autorizado")
	ErrForbidden      = errors.New("acceso denegado")
	ErrConflict       = errors.New("conflicto con el estado actual")
	ErrNotProvisioned = errors.New("el esquema del tenant no está aprovisionado")
	ErrUnknownPartner = errors.New("aplicación partner desconocida")
)
