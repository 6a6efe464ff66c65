package entity

import "time"

// Roles válidos dentro de un tenant. Conjunto cerrado y plano: no hay
// herencia entre roles, cada regla de permiso lista explícitamente los
// roles que la satisfacen.
const (
	RoleAdmin    = "admin"
	RoleGestor   = "gestor"
	RoleAnalista = "analista"
	RoleLector   = "lector"
)

// AllRoles conjunto completo de roles, útil para enumeraciones y validación.
var AllRoles = []string{RoleAdmin, RoleGestor, RoleAnalista, RoleLector}

// ValidRole indica si el rol pertenece al conjunto cerrado.
func ValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User representa una identidad del almacén de identidades (colaborador
// externo al núcleo; aquí solo su contrato de datos).
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Status       string // active, inactive, suspended
	IsSuperAdmin bool   // flag de administrador elevado, viaja en los claims
	LastActiveAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Active indica si la cuenta puede iniciar sesión.
func (u *User) Active() bool { return u.Status == "active" }

// Membership asocia un usuario con un tenant y fija su rol dentro de él.
// Una fila por par (UserID, TenantID); un usuario puede tener varias
// membresías pero exactamente una se activa por sesión.
type Membership struct {
	ID        string
	UserID    string
	TenantID  string
	Role      string // ver constantes Role*
	IsDefault bool   // membresía preferida al iniciar sesión
	Active    bool
	JoinedAt  time.Time
}
