package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tu-usuario/consola-pro/internal/domain/entity"
	"github.com/tu-usuario/consola-pro/internal/domain/repository"
)

var _ repository.MembershipRepository = (*MembershipRepo)(nil)

// MembershipRepo adaptador de membresías sobre la base de control.
type MembershipRepo struct {
	pool *pgxpool.Pool
}

// NewMembershipRepository construye el adaptador de membresías.
func NewMembershipRepository(pool *pgxpool.Pool) *MembershipRepo {
	return &MembershipRepo{pool: pool}
}

// ListByUser devuelve todas las membresías del usuario (activas o no; la
// precedencia la aplica el caso de uso).
func (r *MembershipRepo) ListByUser(ctx context.Context, userID string) ([]entity.Membership, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, tenant_id, role, is_default, active, joined_at
		FROM memberships WHERE user_id = $1
		ORDER BY joined_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	return scanMemberships(rows)
}

// ListActiveUserIDs devuelve los miembros activos del tenant; conjunto
// destino por defecto del fan-out de alertas.
func (r *MembershipRepo) ListActiveUserIDs(ctx context.Context, tenantID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id FROM memberships
		WHERE tenant_id = $1 AND active`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list active members: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanMemberships(rows pgx.Rows) ([]entity.Membership, error) {
	var out []entity.Membership
	for rows.Next() {
		var m entity.Membership
		if err := rows.Scan(&m.ID, &m.UserID, &m.TenantID, &m.Role, &m.IsDefault, &m.Active, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
