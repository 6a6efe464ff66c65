// Package activity implementa el log de actividad con alcance de tenant.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tu-usuario/consola-pro/internal/application/dto"
	"github.com/tu-usuario/consola-pro/internal/domain"
	"github.com/tu-usuario/consola-pro/internal/domain/entity"
	"github.com/tu-usuario/consola-pro/internal/domain/repository"
	"github.com/tu-usuario/consola-pro/pkg/logger"
)

// Log casos de uso del log de actividad.
type Log struct {
	repo  repository.ActivityRepository
	cache repository.ReadCache
	log   *logger.Logger
}

// New construye el caso de uso.
func New(repo repository.ActivityRepository, cache repository.ReadCache, log *logger.Logger) *Log {
	return &Log{repo: repo, cache: cache, log: log}
}

// cachePrefix incluye el separador final para que "camp-a" no alcance las
// claves de un tenant "camp-ab".
func cachePrefix(tenantID string) string { return "activity:" + tenantID + ":" }

// Record persiste un registro e invalida la caché de lectura para que las
// vistas dependientes refetcheen.
func (l *Log) Record(ctx context.Context, tenantID string, req dto.RecordActivityRequest) (*entity.ActivityRecord, error) {
	if req.Module == "" || req.Action == "" {
		return nil, domain.ErrInvalidInput
	}
	rec := &entity.ActivityRecord{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Module:    req.Module,
		Action:    req.Action,
		Detail:    req.Detail,
		UserID:    req.UserID,
		CreatedAt: time.Now(),
	}
	if err := l.repo.Create(ctx, tenantID, rec); err != nil {
		return nil, err
	}
	if err := l.cache.InvalidatePrefix(ctx, cachePrefix(tenantID)); err != nil {
		l.log.Debug().Err(err).Str("tenant", tenantID).Msg("invalidación de caché de actividad falló")
	}
	return rec, nil
}

// List devuelve los registros más recientes primero, sirviendo de la caché
// de lectura cuando hay hit.
func (l *Log) List(ctx context.Context, tenantID string, page dto.PageRequest) ([]dto.ActivityResponse, error) {
	page.DefaultPage()
	key := fmt.Sprintf("%s%d:%d", cachePrefix(tenantID), page.Limit, page.Offset)

	if payload, err := l.cache.Get(ctx, key); err == nil && payload != nil {
		var cached []dto.ActivityResponse
		if err := json.Unmarshal(payload, &cached); err == nil {
			return cached, nil
		}
	}

	rows, err := l.repo.List(ctx, tenantID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ActivityResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ActivityResponse{
			ID:        r.ID,
			Module:    r.Module,
			Action:    r.Action,
			Detail:    r.Detail,
			UserID:    r.UserID,
			CreatedAt: r.CreatedAt,
		})
	}

	if payload, err := json.Marshal(out); err == nil {
		if err := l.cache.Set(ctx, key, payload, time.Minute); err != nil {
			l.log.Debug().Err(err).Msg("caché de actividad no disponible")
		}
	}
	return out, nil
}
