package entity

import "time"

// ActivityRecord registro del log de actividad con alcance de tenant.
type ActivityRecord struct {
	ID        string
	TenantID  string
	Module    string // aplicación partner o "dashboard"
	Action    string
	Detail    string
	UserID    string // opcional: vacío en escrituras servicio-a-servicio sin usuario
	CreatedAt time.Time
}
