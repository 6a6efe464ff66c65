package dto

import "time"

// LoginRequest credenciales de inicio de sesión.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse token de sesión + datos del usuario y su membresía activa.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse representación segura del usuario (sin hash).
type UserResponse struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Role       string     `json:"role"`
	TenantID   string     `json:"tenant_id"`
	SuperAdmin bool       `json:"super_admin,omitempty"`
	LastActive *time.Time `json:"last_active,omitempty"`
}

// PermissionsResponse mapa entidad → acciones permitidas del rol de la sesión.
type PermissionsResponse struct {
	Role        string              `json:"role"`
	Permissions map[string][]string `json:"permissions"`
}
