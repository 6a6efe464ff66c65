package entity

import "time"

// Severidades y tipos de alerta admitidos.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Alert alerta con alcance de tenant. ExpiresAt es expiración lógica: las
// lecturas filtran filas vencidas, no se borran automáticamente.
type Alert struct {
	ID        string
	TenantID  string
	Module    string // aplicación partner (o "dashboard") que originó la alerta
	Title     string
	Body      string
	Severity  string // info, warning, critical
	Type      string // libre: system, campaign, policy, ...
	Pinned    bool   // propiedad expuesta al caller, no clave de orden
	ExpiresAt *time.Time // nil = sin vencimiento
	CreatedAt time.Time
}

// Expired indica si la alerta está vencida respecto a ref.
func (a *Alert) Expired(ref time.Time) bool {
	return a.ExpiresAt != nil && a.ExpiresAt.Before(ref)
}

// AlertRead proyección de lectura por destinatario: una alerta se
// materializa en N filas, una por usuario, con estado leído/no-leído
// independiente que solo ese usuario muta.
type AlertRead struct {
	AlertID string
	UserID  string
	Read    bool
	ReadAt  *time.Time
}
