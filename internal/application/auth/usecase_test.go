package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tu-usuario/consola-pro/internal/application/auth"
	"github.com/tu-usuario/consola-pro/internal/application/dto"
	"github.com/tu-usuario/consola-pro/internal/domain"
	"github.com/tu-usuario/consola-pro/internal/domain/entity"
	"github.com/tu-usuario/consola-pro/pkg/jwt"
	"github.com/tu-usuario/consola-pro/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos de identidad
// ──────────────────────────────────────────────────────────────────────────────

type usersFake struct {
	byEmail map[string]*entity.User
	touched []string
}

func (f *usersFake) GetByID(ctx context.Context, id string) (*entity.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *usersFake) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return f.byEmail[email], nil
}

func (f *usersFake) TouchLastActive(ctx context.Context, userID string, at time.Time) error {
	f.touched = append(f.touched, userID)
	return nil
}

type membershipsFake struct {
	byUser map[string][]entity.Membership
}

func (f *membershipsFake) ListByUser(ctx context.Context, userID string) ([]entity.Membership, error) {
	return f.byUser[userID], nil
}

func (f *membershipsFake) ListActiveUserIDs(ctx context.Context, tenantID string) ([]string, error) {
	return nil, nil
}

const (
	testSecret   = "secreto-de-tests"
	testPassword = "clave-muy-segura"
)

func hash(t *testing.T) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newIssuer(t *testing.T, users *usersFake, members *membershipsFake) *auth.SessionIssuer {
	t.Helper()
	return auth.NewSessionIssuer(users, members, auth.JWTConfig{
		Secret:   testSecret,
		ExpHours: 24,
		Issuer:   "consola-pro-test",
	}, logger.Nop())
}

// Caso 1: login correcto con una sola membresía → claims con instantánea de
// rol y tenant, y efecto colateral en last_active.
func TestAuthenticate_EmiteSesionYActualizaLastActive(t *testing.T) {
	users := &usersFake{byEmail: map[string]*entity.User{
		"ana@camp-a.example": {ID: "u1", Email: "ana@camp-a.example", Name: "Ana", PasswordHash: hash(t), Status: "active"},
	}}
	members := &membershipsFake{byUser: map[string][]entity.Membership{
		"u1": {{UserID: "u1", TenantID: "camp-a", Role: entity.RoleGestor, Active: true, JoinedAt: time.Now()}},
	}}

	out, err := newIssuer(t, users, members).Authenticate(context.Background(),
		dto.LoginRequest{Email: "ana@camp-a.example", Password: testPassword})
	require.NoError(t, err)

	claims, err := jwt.ParseSession(testSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "camp-a", claims.TenantID)
	assert.Equal(t, entity.RoleGestor, claims.Role)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute,
		"la sesión es una ventana absoluta de 24h")
	assert.Equal(t, []string{"u1"}, users.touched)
}

// Caso 2: precedencia de membresías: la default gana aunque otra sea más
// antigua; sin default gana la de incorporación más antigua.
func TestAuthenticate_PrecedenciaDeMembresias(t *testing.T) {
	antigua := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	reciente := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	users := &usersFake{byEmail: map[string]*entity.User{
		"eva@multi.example": {ID: "u2", Email: "eva@multi.example", PasswordHash: hash(t), Status: "active"},
	}}

	// Con default: camp-b gana a pesar de ser la más reciente.
	members := &membershipsFake{byUser: map[string][]entity.Membership{
		"u2": {
			{UserID: "u2", TenantID: "camp-a", Role: entity.RoleAdmin, Active: true, JoinedAt: antigua},
			{UserID: "u2", TenantID: "camp-b", Role: entity.RoleLector, Active: true, JoinedAt: reciente, IsDefault: true},
		},
	}}
	out, err := newIssuer(t, users, members).Authenticate(context.Background(),
		dto.LoginRequest{Email: "eva@multi.example", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, "camp-b", out.User.TenantID)
	assert.Equal(t, entity.RoleLector, out.User.Role)

	// Sin default: gana la más antigua.
	members.byUser["u2"][1].IsDefault = false
	out, err = newIssuer(t, users, members).Authenticate(context.Background(),
		dto.LoginRequest{Email: "eva@multi.example", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, "camp-a", out.User.TenantID)
}

// Caso 3: rechazos por password incorrecto, cuenta inactiva y sin membresías.
func TestAuthenticate_Rechazos(t *testing.T) {
	users := &usersFake{byEmail: map[string]*entity.User{
		"ana@camp-a.example":      {ID: "u1", PasswordHash: hash(t), Status: "active"},
		"inactivo@camp-a.example": {ID: "u3", PasswordHash: hash(t), Status: "suspended"},
	}}
	members := &membershipsFake{byUser: map[string][]entity.Membership{
		"u1": {{UserID: "u1", TenantID: "camp-a", Role: entity.RoleLector, Active: false, JoinedAt: time.Now()}},
	}}
	issuer := newIssuer(t, users, members)

	_, err := issuer.Authenticate(context.Background(), dto.LoginRequest{Email: "nadie@x.example", Password: testPassword})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = issuer.Authenticate(context.Background(), dto.LoginRequest{Email: "ana@camp-a.example", Password: "otra"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = issuer.Authenticate(context.Background(), dto.LoginRequest{Email: "inactivo@camp-a.example", Password: testPassword})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Membresía única pero inactiva → sin tenant que activar.
	_, err = issuer.Authenticate(context.Background(), dto.LoginRequest{Email: "ana@camp-a.example", Password: testPassword})
	assert.ErrorIs(t, err, domain.ErrNoMembership)
}
