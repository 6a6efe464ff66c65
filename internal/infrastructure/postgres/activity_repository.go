package postgres

import (
	"context"
	"fmt"

	"github.com/tu-usuario/consola-pro/internal/domain/entity"
	"github.com/tu-usuario/consola-pro/internal/domain/repository"
)

var _ repository.ActivityRepository = (*ActivityRepo)(nil)

// ActivityRepo bitácora de actividad en el datastore del tenant.
type ActivityRepo struct {
	router *Router
}

// NewActivityRepository construye el adaptador de actividad.
func NewActivityRepository(router *Router) *ActivityRepo {
	return &ActivityRepo{router: router}
}

// Create registra un evento de actividad.
func (r *ActivityRepo) Create(ctx context.Context, tenantID string, rec *entity.ActivityRecord) error {
	q, err := r.router.GetClient(ctx, tenantID)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `
		INSERT INTO activity_log (id, tenant_id, module, action, detail, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, tenantID, rec.Module, rec.Action, rec.Detail, rec.UserID, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// List devuelve los eventos del tenant, más recientes primero.
func (r *ActivityRepo) List(ctx context.Context, tenantID string, limit, offset int) ([]entity.ActivityRecord, error) {
	q, err := r.router.GetClient(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, `
		SELECT id, tenant_id, module, action, detail, user_id, created_at
		FROM activity_log
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var out []entity.ActivityRecord
	for rows.Next() {
		var rec entity.ActivityRecord
		if err := rows.Scan(&rec.ID, &rec.TenantID, &rec.Module, &rec.Action, &rec.Detail, &rec.UserID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
