// Package kpi implementa la caché de KPIs con expiración lógica.
package kpi

import (
	"context"
	"time"

	"github.com/tu-usuario/consola-pro/internal/application/dto"
	"github.com/tu-usuario/consola-pro/internal/domain"
	"github.com/tu-usuario/consola-pro/internal/domain/entity"
	"github.com/tu-usuario/consola-pro/internal/domain/repository"
)

// DefaultTTLMinutes vigencia por defecto de una entrada de KPI.
const DefaultTTLMinutes = 60

// Cache casos de uso de la caché de KPIs.
type Cache struct {
	repo repository.KpiRepository
}

// New construye el caso de uso.
func New(repo repository.KpiRepository) *Cache {
	return &Cache{repo: repo}
}

// Upsert escribe la entrada bajo su clave compuesta "{module}:{key}".
// Idempotente en identidad; la expiración se extiende a la marca de la
// escritura más reciente + TTL (60 minutos si no se indica).
func (c *Cache) Upsert(ctx context.Context, tenantID string, req dto.KpiWriteRequest) (*entity.KpiEntry, error) {
	if req.Module == "" || req.Key == "" {
		return nil, domain.ErrInvalidInput
	}
	ttl := req.ExpiresInMinutes
	if ttl <= 0 {
		ttl = DefaultTTLMinutes
	}

	now := time.Now()
	entry := &entity.KpiEntry{
		TenantID:  tenantID,
		Module:    req.Module,
		Key:       req.Key,
		Value:     req.Value,
		Unit:      req.Unit,
		Change:    req.Change,
		ExpiresAt: now.Add(time.Duration(ttl) * time.Minute),
		UpdatedAt: now,
	}
	if err := c.repo.Upsert(ctx, tenantID, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// List devuelve las entradas vigentes del tenant (filtro en lectura; las
// filas vencidas quedan en el almacén hasta una purga explícita).
func (c *Cache) List(ctx context.Context, tenantID string) ([]dto.KpiResponse, error) {
	rows, err := c.repo.List(ctx, tenantID, time.Now())
	if err != nil {
		return nil, err
	}
	out := make([]dto.KpiResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.KpiResponse{
			Module:    r.Module,
			Key:       r.Key,
			Value:     r.Value,
			Unit:      r.Unit,
			Change:    r.Change,
			ExpiresAt: r.ExpiresAt,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return out, nil
}

// PurgeExpired elimina bajo demanda las filas vencidas. No hay barrido
// periódico: los despliegues lo invocan desde cron vía el endpoint de
// servicio.
func (c *Cache) PurgeExpired(ctx context.Context, tenantID string) (int64, error) {
	return c.repo.PurgeExpired(ctx, tenantID, time.Now())
}
