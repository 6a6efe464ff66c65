package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/consola-pro/internal/domain/entity"
	"github.com/tu-usuario/consola-pro/internal/domain/repository"
)

var _ repository.KpiRepository = (*KpiRepo)(nil)

// KpiRepo caché de indicadores respaldada en el datastore del tenant.
type KpiRepo struct {
	router *Router
}

// NewKpiRepository construye el adaptador de KPIs.
func NewKpiRepository(router *Router) *KpiRepo {
	return &KpiRepo{router: router}
}

// Upsert inserta o refresca una entrada; la clave es (tenant, módulo, clave)
// y un upsert extiende el vencimiento.
func (r *KpiRepo) Upsert(ctx context.Context, tenantID string, entry *entity.KpiEntry) error {
	q, err := r.router.GetClient(ctx, tenantID)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `
		INSERT INTO kpi_cache (tenant_id, module, key, value, unit, change, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tenant_id, module, key) DO UPDATE SET
			value = EXCLUDED.value,
			unit = EXCLUDED.unit,
			change = EXCLUDED.change,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at`,
		tenantID, entry.Module, entry.Key, entry.Value, entry.Unit,
		entry.Change, entry.ExpiresAt, entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert kpi %s: %w", entry.CompositeKey(), err)
	}
	return nil
}

// List devuelve las entradas vigentes a la fecha de referencia. El filtro de
// vencimiento es lógico: las filas vencidas quedan hasta la purga.
func (r *KpiRepo) List(ctx context.Context, tenantID string, ref time.Time) ([]entity.KpiEntry, error) {
	q, err := r.router.GetClient(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, `
		SELECT tenant_id, module, key, value, unit, change, expires_at, updated_at
		FROM kpi_cache
		WHERE tenant_id = $1 AND expires_at > $2
		ORDER BY module, key`, tenantID, ref)
	if err != nil {
		return nil, fmt.Errorf("list kpis: %w", err)
	}
	defer rows.Close()

	var out []entity.KpiEntry
	for rows.Next() {
		var e entity.KpiEntry
		if err := rows.Scan(&e.TenantID, &e.Module, &e.Key, &e.Value, &e.Unit, &e.Change, &e.ExpiresAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan kpi: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get obtiene una entrada por clave compuesta aunque esté vencida.
// (nil, nil) si no existe.
func (r *KpiRepo) Get(ctx context.Context, tenantID, module, key string) (*entity.KpiEntry, error) {
	q, err := r.router.GetClient(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	var e entity.KpiEntry
	err = q.QueryRow(ctx, `
		SELECT tenant_id, module, key, value, unit, change, expires_at, updated_at
		FROM kpi_cache
		WHERE tenant_id = $1 AND module = $2 AND key = $3`, tenantID, module, key).Scan(
		&e.TenantID, &e.Module, &e.Key, &e.Value, &e.Unit, &e.Change, &e.ExpiresAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get kpi: %w", err)
	}
	return &e, nil
}

// PurgeExpired elimina las filas vencidas del tenant y devuelve cuántas.
func (r *KpiRepo) PurgeExpired(ctx context.Context, tenantID string, ref time.Time) (int64, error) {
	q, err := r.router.GetClient(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	tag, err := q.Exec(ctx, `
		DELETE FROM kpi_cache WHERE tenant_id = $1 AND expires_at <= $2`, tenantID, ref)
	if err != nil {
		return 0, fmt.Errorf("purge kpis: %w", err)
	}
	return tag.RowsAffected(), nil
}
