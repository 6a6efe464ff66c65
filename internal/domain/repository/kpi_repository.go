package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/consola-pro/internal/domain/entity"
)

// KpiRepository caché de KPIs con alcance de tenant y expiración lógica.
type KpiRepository interface {
	// Upsert escribe la entrada por su clave compuesta "{module}:{key}".
	// Idempotente en identidad: dos escrituras de la misma clave dejan una
	// sola fila, con la expiración de la escritura más reciente.
	Upsert(ctx context.Context, tenantID string, entry *entity.KpiEntry) error
	// List devuelve solo entradas no vencidas respecto a ref.
	List(ctx context.Context, tenantID string, ref time.Time) ([]entity.KpiEntry, error)
	Get(ctx context.Context, tenantID, module, key string) (*entity.KpiEntry, error)
	// PurgeExpired elimina bajo demanda las filas vencidas; devuelve cuántas.
	PurgeExpired(ctx context.Context, tenantID string, ref time.Time) (int64, error)
}

// ActivityRepository log de actividad con alcance de tenant.
type ActivityRepository interface {
	Create(ctx context.Context, tenantID string, rec *entity.ActivityRecord) error
	List(ctx context.Context, tenantID string, limit, offset int) ([]entity.ActivityRecord, error)
}
