package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// KpiEntry entrada de la caché de KPIs. La clave lógica es compuesta:
// "{module}:{key}". ExpiresAt es expiración lógica (filtrada en lectura).
type KpiEntry struct {
	TenantID  string
	Module    string
	Key       string
	Value     decimal.Decimal
	Unit      string           // opcional, p.ej. "pt", "%"
	Change    *decimal.Decimal // variación respecto al período anterior, opcional
	ExpiresAt time.Time
	UpdatedAt time.Time
}

// CompositeKey devuelve la clave lógica "{module}:{key}".
func (k *KpiEntry) CompositeKey() string {
	return k.Module + ":" + k.Key
}

// Expired indica si la entrada está vencida respecto a ref.
func (k *KpiEntry) Expired(ref time.Time) bool {
	return k.ExpiresAt.Before(ref)
}
