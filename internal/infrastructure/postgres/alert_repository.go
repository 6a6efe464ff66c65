package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/consola-pro/internal/domain"
	"github.com/tu-usuario/consola-pro/internal/domain/entity"
	"github.com/tu-usuario/consola-pro/internal/domain/repository"
)

var (
	_ repository.AlertRepository     = (*AlertRepo)(nil)
	_ repository.AlertReadRepository = (*AlertReadRepo)(nil)
)

// AlertRepo almacén de alertas; resuelve el pool del tenant vía el router
// en cada operación.
type AlertRepo struct {
	router *Router
}

// NewAlertRepository construye el adaptador de alertas.
func NewAlertRepository(router *Router) *AlertRepo {
	return &AlertRepo{router: router}
}

// Create persiste una alerta.
func (r *AlertRepo) Create(ctx context.Context, tenantID string, alert *entity.Alert) error {
	q, err := r.router.GetClient(ctx, tenantID)
	if err != nil {
		return err
	}
	return insertAlert(ctx, q, alert)
}

// ListForUser lista alertas no vencidas con el estado de lectura del
// usuario, más recientes primero. El pin se expone, no ordena.
func (r *AlertRepo) ListForUser(ctx context.Context, tenantID, userID string, limit, offset int) ([]repository.AlertWithRead, error) {
	q, err := r.router.GetClient(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return listAlertsForUser(ctx, q, tenantID, userID, limit, offset)
}

// GetByID obtiene una alerta. (nil, nil) si no existe.
func (r *AlertRepo) GetByID(ctx context.Context, tenantID, alertID string) (*entity.Alert, error) {
	q, err := r.router.GetClient(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return getAlertByID(ctx, q, tenantID, alertID)
}

// AlertReadRepo proyecciones de lectura por destinatario.
type AlertReadRepo struct {
	router *Router
}

// NewAlertReadRepository construye el adaptador de proyecciones.
func NewAlertReadRepository(router *Router) *AlertReadRepo {
	return &AlertReadRepo{router: router}
}

// CreateProjections materializa una fila no-leída por destinatario.
func (r *AlertReadRepo) CreateProjections(ctx context.Context, tenantID, alertID string, userIDs []string) error {
	q, err := r.router.GetClient(ctx, tenantID)
	if err != nil {
		return err
	}
	return insertProjections(ctx, q, alertID, userIDs)
}

// MarkRead marca la proyección del propio usuario; la primera marca fija
// read_at, las repeticiones no lo mueven.
func (r *AlertReadRepo) MarkRead(ctx context.Context, tenantID, alertID, userID string, at time.Time) error {
	q, err := r.router.GetClient(ctx, tenantID)
	if err != nil {
		return err
	}
	return markRead(ctx, q, alertID, userID, at)
}

// Helpers sobre queryer, compartidos con las variantes atadas a transacción.

func insertAlert(ctx context.Context, q queryer, alert *entity.Alert) error {
	_, err := q.Exec(ctx, `
		INSERT INTO alerts (id, tenant_id, module, title, body, severity, type, pinned, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		alert.ID, alert.TenantID, alert.Module, alert.Title, alert.Body,
		alert.Severity, alert.Type, alert.Pinned, alert.ExpiresAt, alert.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert alert %s: %w", alert.ID, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func insertProjections(ctx context.Context, q queryer, alertID string, userIDs []string) error {
	for _, userID := range userIDs {
		_, err := q.Exec(ctx, `
			INSERT INTO alert_reads (alert_id, user_id, read)
			VALUES ($1, $2, false)
			ON CONFLICT (alert_id, user_id) DO NOTHING`, alertID, userID)
		if err != nil {
			return fmt.Errorf("insert projection %s/%s: %w", alertID, userID, err)
		}
	}
	return nil
}

func markRead(ctx context.Context, q queryer, alertID, userID string, at time.Time) error {
	_, err := q.Exec(ctx, `
		UPDATE alert_reads
		SET read = true, read_at = COALESCE(read_at, $3)
		WHERE alert_id = $1 AND user_id = $2`, alertID, userID, at)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

func listAlertsForUser(ctx context.Context, q queryer, tenantID, userID string, limit, offset int) ([]repository.AlertWithRead, error) {
	rows, err := q.Query(ctx, `
		SELECT a.id, a.tenant_id, a.module, a.title, a.body, a.severity, a.type,
		       a.pinned, a.expires_at, a.created_at, ar.read, ar.read_at
		FROM alerts a
		JOIN alert_reads ar ON ar.alert_id = a.id AND ar.user_id = $2
		WHERE a.tenant_id = $1
		  AND (a.expires_at IS NULL OR a.expires_at > now())
		ORDER BY a.created_at DESC
		LIMIT $3 OFFSET $4`, tenantID, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var out []repository.AlertWithRead
	for rows.Next() {
		var a repository.AlertWithRead
		if err := rows.Scan(
			&a.Alert.ID, &a.Alert.TenantID, &a.Alert.Module, &a.Alert.Title, &a.Alert.Body,
			&a.Alert.Severity, &a.Alert.Type, &a.Alert.Pinned, &a.Alert.ExpiresAt, &a.Alert.CreatedAt,
			&a.Read, &a.ReadAt,
		); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func getAlertByID(ctx context.Context, q queryer, tenantID, alertID string) (*entity.Alert, error) {
	var a entity.Alert
	err := q.QueryRow(ctx, `
		SELECT id, tenant_id, module, title, body, severity, type, pinned, expires_at, created_at
		FROM alerts WHERE tenant_id = $1 AND id = $2`, tenantID, alertID).Scan(
		&a.ID, &a.TenantID, &a.Module, &a.Title, &a.Body, &a.Severity, &a.Type,
		&a.Pinned, &a.ExpiresAt, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alert: %w", err)
	}
	return &a, nil
}
