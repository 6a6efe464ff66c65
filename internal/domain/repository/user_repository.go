package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/consola-pro/internal/domain/entity"
)

// UserRepository puerto del almacén de identidades (colaborador externo al
// núcleo). Los métodos de lectura devuelven (nil, nil) cuando no hay fila.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// TouchLastActive actualiza la marca de última actividad como efecto
	// colateral de una autenticación exitosa.
	TouchLastActive(ctx context.Context, userID string, at time.Time) error
}

// MembershipRepository puerto de membresías (userID, tenantID) → rol.
type MembershipRepository interface {
	ListByUser(ctx context.Context, userID string) ([]entity.Membership, error)
	// ListActiveUserIDs devuelve los IDs de los miembros activos de un
	// tenant; es el conjunto destino por defecto del fan-out de alertas.
	ListActiveUserIDs(ctx context.Context, tenantID string) ([]string, error)
}
