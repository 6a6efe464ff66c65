package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/consola-pro/internal/domain/entity"
)

// AlertWithRead alerta junto con la proyección de lectura del usuario que
// consulta. La proyección define el destinatario: sin fila, el usuario no
// ve la alerta.
type AlertWithRead struct {
	Alert  entity.Alert
	Read   bool
	ReadAt *time.Time
}

// AlertRepository almacén de alertas con alcance de tenant.
type AlertRepository interface {
	Create(ctx context.Context, tenantID string, alert *entity.Alert) error
	// ListForUser excluye alertas con expiración lógica vencida y ordena
	// por fecha de creación descendente. El flag pinned se expone, no
	// altera el orden.
	ListForUser(ctx context.Context, tenantID, userID string, limit, offset int) ([]AlertWithRead, error)
	GetByID(ctx context.Context, tenantID, alertID string) (*entity.Alert, error)
}

// AlertReadRepository proyecciones de lectura por destinatario.
type AlertReadRepository interface {
	// CreateProjections materializa una fila no-leída por destinatario.
	CreateProjections(ctx context.Context, tenantID, alertID string, userIDs []string) error
	// MarkRead marca la proyección del propio usuario; idempotente bajo
	// repetición (la primera marca fija ReadAt, las siguientes no lo mueven).
	MarkRead(ctx context.Context, tenantID, alertID, userID string, at time.Time) error
}
