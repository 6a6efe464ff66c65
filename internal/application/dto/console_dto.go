package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateAlertRequest creación de alerta (frames o servicio-a-servicio).
type CreateAlertRequest struct {
	Module           string   `json:"module"`
	Title            string   `json:"title"`
	Body             string   `json:"body,omitempty"`
	Severity         string   `json:"severity,omitempty"` // info por defecto
	Type             string   `json:"type,omitempty"`
	Pinned           bool     `json:"pinned,omitempty"`
	ExpiresInMinutes int      `json:"expiresInMinutes,omitempty"` // 0 = sin vencimiento
	TargetUserIDs    []string `json:"targetUserIds,omitempty"`    // vacío = todos los miembros activos
}

// AlertResponse alerta con el estado de lectura del usuario que consulta.
type AlertResponse struct {
	ID        string     `json:"id"`
	Module    string     `json:"module"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	Severity  string     `json:"severity"`
	Type      string     `json:"type,omitempty"`
	Pinned    bool       `json:"pinned"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

// KpiWriteRequest contrato de escritura de KPI: clave lógica "{module}:{key}".
type KpiWriteRequest struct {
	Module           string           `json:"module"`
	Key              string           `json:"key"`
	Value            decimal.Decimal  `json:"value"`
	Unit             string           `json:"unit,omitempty"`
	Change           *decimal.Decimal `json:"change,omitempty"`
	ExpiresInMinutes int              `json:"expiresInMinutes,omitempty"` // 60 por defecto
}

// KpiResponse entrada de KPI no vencida.
type KpiResponse struct {
	Module    string           `json:"module"`
	Key       string           `json:"key"`
	Value     decimal.Decimal  `json:"value"`
	Unit      string           `json:"unit,omitempty"`
	Change    *decimal.Decimal `json:"change,omitempty"`
	ExpiresAt time.Time        `json:"expires_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// RecordActivityRequest escritura en el log de actividad.
type RecordActivityRequest struct {
	Module string `json:"module"`
	Action string `json:"action"`
	Detail string `json:"detail,omitempty"`
	UserID string `json:"user_id,omitempty"`
}

// ActivityResponse registro del log de actividad.
type ActivityResponse struct {
	ID        string    `json:"id"`
	Module    string    `json:"module"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EmbedURLResponse contrato de embebido: URL final + token firmado.
type EmbedURLResponse struct {
	Partner string `json:"partner"`
	URL     string `json:"url"`
	Token   string `json:"token"`
}

// ThemeChangeRequest difusión de cambio de tema hacia los frames.
type ThemeChangeRequest struct {
	Theme string `json:"theme"` // light | dark
}

// ProvisionStateResponse estado observable del aprovisionamiento por tenant.
type ProvisionStateResponse struct {
	TenantID string `json:"tenant_id"`
	State    string `json:"state"` // unknown | checking | ready | failed
}
