package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/consola-pro/internal/application/inbox"
	"github.com/tu-usuario/consola-pro/internal/domain/entity"
	"github.com/tu-usuario/consola-pro/internal/domain/repository"
)

var _ inbox.FanoutRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción sobre el datastore
// del tenant, resuelto vía el router.
type TxRunner struct {
	router *Router
}

// NewTxRunner construye el runner.
func NewTxRunner(router *Router) *TxRunner {
	return &TxRunner{router: router}
}

// RunFanout inicia una transacción, ejecuta fn con repos atados a la tx y
// hace Commit o Rollback.
func (r *TxRunner) RunFanout(ctx context.Context, tenantID string, fn func(
	alerts repository.AlertRepository,
	reads repository.AlertReadRepository,
) error) error {
	pool, err := r.router.GetClient(ctx, tenantID)
	if err != nil {
		return err
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&txAlertRepo{tx: tx}, &txAlertReadRepo{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txAlertRepo variante de AlertRepo atada a la transacción en curso.
type txAlertRepo struct {
	tx queryer
}

func (r *txAlertRepo) Create(ctx context.Context, _ string, alert *entity.Alert) error {
	return insertAlert(ctx, r.tx, alert)
}

func (r *txAlertRepo) ListForUser(ctx context.Context, tenantID, userID string, limit, offset int) ([]repository.AlertWithRead, error) {
	return listAlertsForUser(ctx, r.tx, tenantID, userID, limit, offset)
}

func (r *txAlertRepo) GetByID(ctx context.Context, tenantID, alertID string) (*entity.Alert, error) {
	return getAlertByID(ctx, r.tx, tenantID, alertID)
}

// txAlertReadRepo variante de AlertReadRepo atada a la transacción en curso.
type txAlertReadRepo struct {
	tx queryer
}

func (r *txAlertReadRepo) CreateProjections(ctx context.Context, _ string, alertID string, userIDs []string) error {
	return insertProjections(ctx, r.tx, alertID, userIDs)
}

func (r *txAlertReadRepo) MarkRead(ctx context.Context, _ string, alertID, userID string, at time.Time) error {
	return markRead(ctx, r.tx, alertID, userID, at)
}
