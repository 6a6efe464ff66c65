package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tu-usuario/consola-pro/internal/application/dto"
	"github.com/tu-usuario/consola-pro/internal/domain"
	"github.com/tu-usuario/consola-pro/internal/domain/entity"
	"github.com/tu-usuario/consola-pro/internal/domain/repository"
	"github.com/tu-usuario/consola-pro/pkg/jwt"
	"github.com/tu-usuario/consola-pro/pkg/logger"
)

// JWTConfig configuración para la emisión de tokens de sesión.
type JWTConfig struct {
	Secret   string
	ExpHours int
	Issuer   string
}

// SessionIssuer autentica credenciales contra el almacén de identidades,
// selecciona la membresía activa y emite los claims de sesión.
type SessionIssuer struct {
	users       repository.UserRepository
	memberships repository.MembershipRepository
	jwtCfg      JWTConfig
	log         *logger.Logger
}

// NewSessionIssuer construye el caso de uso de autenticación.
func NewSessionIssuer(users repository.UserRepository, memberships repository.MembershipRepository, jwtCfg JWTConfig, log *logger.Logger) *SessionIssuer {
	return &SessionIssuer{users: users, memberships: memberships, jwtCfg: jwtCfg, log: log}
}

// Authenticate verifica email/password y emite la sesión.
//
// Selección de membresía: un usuario puede pertenecer a varios tenants;
// exactamente una membresía se activa ahora, con esta precedencia: la
// marcada como default, si no la de incorporación más antigua. Rol y tenant
// quedan congelados en los claims para toda la vida de la sesión (sin
// re-evaluación en vivo). La expiración es una ventana absoluta de 24h.
func (uc *SessionIssuer) Authenticate(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.Active() {
		return nil, domain.ErrForbidden
	}

	membership, err := uc.selectMembership(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	claims := jwt.SessionClaims{
		UserID:     user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Role:       membership.Role, // instantánea, no se re-evalúa
		TenantID:   membership.TenantID,
		SuperAdmin: user.IsSuperAdmin,
	}
	token, err := jwt.GenerateSession(uc.jwtCfg.Secret, uc.jwtCfg.Issuer, uc.jwtCfg.ExpHours, claims)
	if err != nil {
		return nil, err
	}

	// Efecto colateral de un login exitoso; si falla no se aborta la sesión.
	now := time.Now()
	if err := uc.users.TouchLastActive(ctx, user.ID, now); err != nil {
		uc.log.Warn().Err(err).Str("user", user.ID).Msg("no se pudo actualizar last_active")
	}

	return &dto.LoginResponse{
		Token: token,
		User: dto.UserResponse{
			ID:         user.ID,
			Email:      user.Email,
			Name:       user.Name,
			Role:       membership.Role,
			TenantID:   membership.TenantID,
			SuperAdmin: user.IsSuperAdmin,
			LastActive: &now,
		},
	}, nil
}

// selectMembership aplica la precedencia default > más antigua sobre las
// membresías activas del usuario.
func (uc *SessionIssuer) selectMembership(ctx context.Context, userID string) (*entity.Membership, error) {
	all, err := uc.memberships.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var selected *entity.Membership
	for i := range all {
		m := &all[i]
		if !m.Active {
			continue
		}
		if m.IsDefault {
			return m, nil
		}
		if selected == nil || m.JoinedAt.Before(selected.JoinedAt) {
			selected = m
		}
	}
	if selected == nil {
		return nil, domain.ErrNoMembership
	}
	return selected, nil
}
