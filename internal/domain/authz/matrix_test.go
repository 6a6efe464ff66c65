package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/consola-pro/internal/domain/authz"
	"github.com/tu-usuario/consola-pro/internal/domain/entity"
)

// Caso 1: cada resultado true del espacio completo debe trazar a una regla
// explícita; todo lo demás es default-deny. Enumeramos (rol, entidad,
// acción) completo y contrastamos contra la tabla esperada.
func TestHasPermission_DefaultDenyEnEspacioCompleto(t *testing.T) {
	m := authz.New()

	// Réplica declarativa de la tabla: (entidad, acción) → roles permitidos.
	expected := map[[2]string][]string{
		{authz.EntityCampaigns, authz.ActionRead}:    {entity.RoleAdmin, entity.RoleGestor, entity.RoleAnalista, entity.RoleLector},
		{authz.EntityCampaigns, authz.ActionCreate}:  {entity.RoleAdmin, entity.RoleGestor},
		{authz.EntityCampaigns, authz.ActionUpdate}:  {entity.RoleAdmin, entity.RoleGestor},
		{authz.EntityCampaigns, authz.ActionDelete}:  {entity.RoleAdmin, entity.RoleGestor},
		{authz.EntityCampaigns, authz.ActionPublish}: {entity.RoleAdmin, entity.RoleGestor},
		{authz.EntityCampaigns, authz.ActionExport}:  {entity.RoleAdmin, entity.RoleGestor, entity.RoleAnalista},
		{authz.EntityPolicies, authz.ActionRead}:     {entity.RoleAdmin, entity.RoleGestor, entity.RoleAnalista},
		{authz.EntityPolicies, authz.ActionCreate}:   {entity.RoleAdmin},
		{authz.EntityPolicies, authz.ActionUpdate}:   {entity.RoleAdmin},
		{authz.EntityPolicies, authz.ActionDelete}:   {entity.RoleAdmin},
		{authz.EntityContent, authz.ActionRead}:      {entity.RoleAdmin, entity.RoleGestor, entity.RoleAnalista, entity.RoleLector},
		{authz.EntityContent, authz.ActionCreate}:    {entity.RoleAdmin, entity.RoleGestor},
		{authz.EntityContent, authz.ActionUpdate}:    {entity.RoleAdmin, entity.RoleGestor},
		{authz.EntityContent, authz.ActionDelete}:    {entity.RoleAdmin, entity.RoleGestor},
		{authz.EntityContent, authz.ActionPublish}:   {entity.RoleAdmin, entity.RoleGestor},
		{authz.EntityMessages, authz.ActionRead}:     {entity.RoleAdmin, entity.RoleGestor, entity.RoleAnalista, entity.RoleLector},
		{authz.EntityMessages, authz.ActionCreate}:   {entity.RoleAdmin, entity.RoleGestor},
		{authz.EntityMessages, authz.ActionUpdate}:   {entity.RoleAdmin, entity.RoleGestor},
		{authz.EntityMessages, authz.ActionDelete}:   {entity.RoleAdmin},
		{authz.EntityAlerts, authz.ActionRead}:       {entity.RoleAdmin, entity.RoleGestor, entity.RoleAnalista, entity.RoleLector},
		{authz.EntityAlerts, authz.ActionCreate}:     {entity.RoleAdmin, entity.RoleGestor},
		{authz.EntityAlerts, authz.ActionDelete}:     {entity.RoleAdmin},
		{authz.EntityKpis, authz.ActionRead}:         {entity.RoleAdmin, entity.RoleGestor, entity.RoleAnalista, entity.RoleLector},
		{authz.EntityKpis, authz.ActionCreate}:       {entity.RoleAdmin, entity.RoleGestor},
		{authz.EntityMembers, authz.ActionRead}:      {entity.RoleAdmin, entity.RoleGestor},
		{authz.EntityMembers, authz.ActionCreate}:    {entity.RoleAdmin},
		{authz.EntityMembers, authz.ActionUpdate}:    {entity.RoleAdmin},
		{authz.EntityMembers, authz.ActionDelete}:    {entity.RoleAdmin},
		{authz.EntityTenants, authz.ActionRead}:      {entity.RoleAdmin},
		{authz.EntityTenants, authz.ActionUpdate}:    {entity.RoleAdmin},
	}

	allowed := func(role, ent, action string) bool {
		for _, r := range expected[[2]string{ent, action}] {
			if r == role {
				return true
			}
		}
		return false
	}

	for _, role := range entity.AllRoles {
		for _, ent := range authz.AllEntities {
			for _, action := range authz.AllActions {
				got := m.HasPermission(role, ent, action)
				assert.Equalf(t, allowed(role, ent, action), got,
					"(%s, %s, %s): todo true debe trazar a una regla explícita", role, ent, action)
			}
		}
	}
}

// Caso 2: un rol desconocido nunca obtiene permiso, ni siquiera en reglas
// abiertas a todos los roles del conjunto cerrado.
func TestHasPermission_RolDesconocidoSiempreDenegado(t *testing.T) {
	m := authz.New()
	for _, ent := range authz.AllEntities {
		for _, action := range authz.AllActions {
			assert.False(t, m.HasPermission("superusuario", ent, action))
		}
	}
}

// Caso 3: un rol sin create sobre messages es denegado.
func TestHasPermission_LectorNoPuedeCrearMessages(t *testing.T) {
	m := authz.New()
	assert.False(t, m.HasPermission(entity.RoleLector, authz.EntityMessages, authz.ActionCreate))
	assert.False(t, m.HasPermission(entity.RoleAnalista, authz.EntityMessages, authz.ActionCreate))
	assert.True(t, m.HasPermission(entity.RoleGestor, authz.EntityMessages, authz.ActionCreate))
}

// Caso 4: overlay de aprobación: gestor puede borrar campañas pero con
// visto bueno; admin borra sin aprobación; un rol sin permiso no "necesita
// aprobación" (primero se deniega).
func TestNeedsApproval_Overlay(t *testing.T) {
	m := authz.New()

	require.True(t, m.HasPermission(entity.RoleGestor, authz.EntityCampaigns, authz.ActionDelete))
	assert.True(t, m.NeedsApproval(entity.RoleGestor, authz.EntityCampaigns, authz.ActionDelete))
	assert.False(t, m.NeedsApproval(entity.RoleAdmin, authz.EntityCampaigns, authz.ActionDelete))
	assert.False(t, m.NeedsApproval(entity.RoleLector, authz.EntityCampaigns, authz.ActionDelete),
		"sin permiso no hay nada que aprobar")
}

// Caso 5: EntityPermissions devuelve exactamente las acciones con regla.
func TestEntityPermissions_AccionesPorRol(t *testing.T) {
	m := authz.New()

	assert.Equal(t, []string{"read"}, m.EntityPermissions(entity.RoleLector, authz.EntityCampaigns))
	assert.ElementsMatch(t,
		[]string{"create", "read", "update", "delete", "publish", "export"},
		m.EntityPermissions(entity.RoleAdmin, authz.EntityCampaigns))
	assert.Empty(t, m.EntityPermissions(entity.RoleLector, authz.EntityTenants))
}
