// Package inbox implementa la bandeja de alertas con fan-out por destinatario.
package inbox

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

// FanoutRunner ejecuta la creación de la alerta y sus proyecciones dentro
// de una única transacción sobre el almacén del tenant.
type FanoutRunner interface {
	RunFanout(ctx context.Context, tenantID string, fn func(alerts repository.AlertRepository, reads repository.AlertReadRepository) error) error
}

// Inbox casos de uso de la bandeja de alertas.
type Inbox struct {
	runner  FanoutRunner
	alerts  repository.AlertRepository
	members repository.MembershipRepository
	cache   repository.ReadCache
	log     *logger.Logger
}

// New construye la bandeja.
func New(runner FanoutRunner, alerts repository.AlertRepository, members repository.MembershipRepository, cache repository.ReadCache, log *logger.Logger) *Inbox {
	return &Inbox{runner: runner, alerts: alerts, members: members, cache: cache, log: log}
}

// cachePrefix incluye el separador final para que "camp-a" no alcance las
// claves de un tenant "camp-ab".
func cachePrefix(tenantID string) string { return "alerts:" + tenantID + ":" }

// CreateAndFanout persiste la alerta y materializa una proyección de lectura
// por destinatario en la misma transacción. Sin lista explícita de destinos,
// el conjunto por defecto son todos los miembros activos del tenant.
func (i *Inbox) CreateAndFanout(ctx context.Context, tenantID string, req dto.CreateAlertRequest) (*entity.Alert, error) {
	if req.Title == "" || req.Module == "" {
		return nil, domain.ErrInvalidInput
	}
	severity := req.Severity
	if severity == "" {
		severity = entity.SeverityInfo
	}

	now := time.Now()
	alert := &entity.Alert{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Module:    req.Module,
		Title:     req.Title,
		Body:      req.Body,
		Severity:  severity,
		Type:      req.Type,
		Pinned:    req.Pinned,
		CreatedAt: now,
	}
	if req.ExpiresInMinutes > 0 {
		exp := now.Add(time.Duration(req.ExpiresInMinutes) * time.Minute)
		alert.ExpiresAt = &exp
	}

	targets := req.TargetUserIDs
	if len(targets) == 0 {
		var err error
		targets, err = i.members.ListActiveUserIDs(ctx, tenantID)
		if err != nil {
			return nil, fmt.Errorf("resolver destinatarios: %w", err)
		}
	}

	err := i.runner.RunFanout(ctx, tenantID, func(alerts repository.AlertRepository, reads repository.AlertReadRepository) error {
		if err := alerts.Create(ctx, tenantID, alert); err != nil {
			return err
		}
		return reads.CreateProjections(ctx, tenantID, alert.ID, targets)
	})
	if err != nil {
		return nil, err
	}

	i.invalidate(ctx, tenantID)
	return alert, nil
}

// MarkRead marca la proyección del propio usuario. Idempotente: repetir la
// marca no mueve ReadAt ni produce error.
func (i *Inbox) MarkRead(ctx context.Context, tenantID, alertID, userID string) error {
	err := i.runner.RunFanout(ctx, tenantID, func(_ repository.AlertRepository, reads repository.AlertReadRepository) error {
		return reads.MarkRead(ctx, tenantID, alertID, userID, time.Now())
	})
	if err != nil {
		return err
	}
	i.invalidate(ctx, tenantID)
	return nil
}

// List devuelve las alertas no vencidas del usuario, más recientes primero,
// sirviendo de la caché de lectura cuando hay hit.
func (i *Inbox) List(ctx context.Context, tenantID, userID string, page dto.PageRequest) ([]dto.AlertResponse, error) {
	page.DefaultPage()
	key := fmt.Sprintf("%s%s:%d:%d", cachePrefix(tenantID), userID, page.Limit, page.Offset)

	if payload, err := i.cache.Get(ctx, key); err == nil && payload != nil {
		var cached []dto.AlertResponse
		if err := json.Unmarshal(payload, &cached); err == nil {
			return cached, nil
		}
	}

	rows, err := i.alerts.ListForUser(ctx, tenantID, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AlertResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.AlertResponse{
			ID:        r.Alert.ID,
			Module:    r.Alert.Module,
			Title:     r.Alert.Title,
			Body:      r.Alert.Body,
			Severity:  r.Alert.Severity,
			Type:      r.Alert.Type,
			Pinned:    r.Alert.Pinned,
			ExpiresAt: r.Alert.ExpiresAt,
			CreatedAt: r.Alert.CreatedAt,
			Read:      r.Read,
			ReadAt:    r.ReadAt,
		})
	}

	if payload, err := json.Marshal(out); err == nil {
		if err := i.cache.Set(ctx, key, payload, time.Minute); err != nil {
			i.log.Debug().Err(err).Msg("caché de alertas no disponible")
		}
	}
	return out, nil
}

// invalidate vacía la caché de lectura del tenant; un fallo aquí solo se
// registra, la fuente de verdad ya quedó escrita.
func (i *Inbox) invalidate(ctx context.Context, tenantID string) {
	if err := i.cache.InvalidatePrefix(ctx, cachePrefix(tenantID)); err != nil {
		i.log.Debug().Err(err).Str("tenant", tenantID).Msg("invalidación de caché de alertas falló")
	}
}
