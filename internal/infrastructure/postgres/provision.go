package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Script idempotente del esquema por tenant; cada sentencia es
// "create if not exists".
//
//go:embed tenant_schema.sql
var tenantSchemaSQL string

// Esquema de la base de control: identidades y membresías.
//
//go:embed control_schema.sql
var controlSchemaSQL string

// EnsureControlSchema aplica el esquema de la base de control al arrancar.
// Idempotente, igual que el script por tenant.
func EnsureControlSchema(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if _, err := pool.Exec(ctx, controlSchemaSQL); err != nil {
		return fmt.Errorf("aplicar esquema de control: %w", err)
	}
	return nil
}

// sentinelTable su existencia marca un almacén ya aprovisionado.
const sentinelTable = "console_schema_version"

// ensureProvisioned ejecuta la máquina de estados de aprovisionamiento:
// unknown → checking → ready | failed. Un tenant ya visitado (ready o
// failed) no repite el chequeo de existencia en cada petición; failed queda
// observable y reintentable vía RetryProvision en lugar de atascarse hasta
// reiniciar el proceso.
//
// Los fallos se registran y el tenant queda marcado igualmente para evitar
// tormentas de reintentos, aunque el almacén pueda quedar a medio migrar:
// eso aflorará como errores de consulta aguas abajo.
func (r *Router) ensureProvisioned(ctx context.Context, tenantID, dsn string) {
	r.mu.Lock()
	switch r.provision[tenantID] {
	case ProvisionReady, ProvisionFailed, ProvisionChecking:
		r.mu.Unlock()
		return
	}
	r.provision[tenantID] = ProvisionChecking
	r.mu.Unlock()

	state := ProvisionReady
	if err := r.provisionOnce(ctx, dsn); err != nil {
		state = ProvisionFailed
		r.log.Error().Err(err).Str("tenant", tenantID).Msg("aprovisionamiento de esquema falló")
	}

	r.mu.Lock()
	r.provision[tenantID] = state
	r.mu.Unlock()
	if r.metrics != nil {
		r.metrics.ProvisionAttempt(state)
	}
}

// provisionOnce abre una conexión administrativa efímera (nunca el pool de
// tráfico), comprueba la tabla centinela y, si falta, aplica el script.
func (r *Router) provisionOnce(ctx context.Context, dsn string) error {
	if dsn == "" {
		// Modo shared-store: el almacén es el de control.
		dsn = r.shared.Config().ConnString()
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("conexión administrativa: %w", err)
	}
	defer conn.Close(context.Background())

	var exists bool
	err = conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`, sentinelTable).Scan(&exists)
	if err != nil {
		return fmt.Errorf("chequeo de centinela: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := conn.Exec(ctx, tenantSchemaSQL); err != nil {
		return fmt.Errorf("aplicar esquema: %w", err)
	}
	return nil
}
