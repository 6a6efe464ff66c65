package authz

import (
	"sort"

	"github.com/tu-usuario/consola-pro/internal/domain/entity"
)

// Entidades sobre las que opera la matriz de autorización.
const (
	EntityCampaigns = "campaigns"
	EntityPolicies  = "policies"
	EntityContent   = "content"
	EntityMessages  = "messages"
	EntityAlerts    = "alerts"
	EntityKpis      = "kpis"
	EntityMembers   = "members"
	EntityTenants   = "tenants"
)

// Acciones posibles sobre una entidad.
const (
	ActionCreate  = "create"
	ActionRead    = "read"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionExport  = "export"
	ActionPublish = "publish"
)

// AllEntities y AllActions enumeran el espacio completo (entidad, acción);
// los tests recorren el producto cartesiano para verificar default-deny.
var (
	AllEntities = []string{
		EntityCampaigns, EntityPolicies, EntityContent, EntityMessages,
		EntityAlerts, EntityKpis, EntityMembers, EntityTenants,
	}
	AllActions = []string{
		ActionCreate, ActionRead, ActionUpdate, ActionDelete,
		ActionExport, ActionPublish,
	}
)

type ruleKey struct {
	entity string
	action string
}

type roleSet map[string]struct{}

func roles(names ...string) roleSet {
	s := make(roleSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Bundles de roles con nombre para construir la tabla sin repetir listas.
// OJO: los roles son planos, sin herencia: "admin" debe aparecer
// explícitamente en cada bundle que deba satisfacer. Un rol nuevo exige
// revisar cada regla a mano; es un riesgo de mantenimiento asumido.
var (
	soloAdmin = roles(entity.RoleAdmin)
	gestion   = roles(entity.RoleAdmin, entity.RoleGestor)
	analisis  = roles(entity.RoleAdmin, entity.RoleGestor, entity.RoleAnalista)
	todos     = roles(entity.RoleAdmin, entity.RoleGestor, entity.RoleAnalista, entity.RoleLector)
)

// Matrix tabla estática (entidad, acción) → roles permitidos, más el overlay
// de aprobación. Ausencia de regla ⇒ denegar (default-deny). Construida una
// vez, de solo lectura: segura para cualquier número de handlers concurrentes.
type Matrix struct {
	rules    map[ruleKey]roleSet
	approval map[ruleKey]roleSet
}

// New construye la matriz de autorización de la consola.
func New() *Matrix {
	m := &Matrix{
		rules:    make(map[ruleKey]roleSet),
		approval: make(map[ruleKey]roleSet),
	}

	m.allow(EntityCampaigns, ActionRead, todos)
	m.allow(EntityCampaigns, ActionCreate, gestion)
	m.allow(EntityCampaigns, ActionUpdate, gestion)
	m.allow(EntityCampaigns, ActionDelete, gestion)
	m.allow(EntityCampaigns, ActionPublish, gestion)
	m.allow(EntityCampaigns, ActionExport, analisis)

	m.allow(EntityPolicies, ActionRead, analisis)
	m.allow(EntityPolicies, ActionCreate, soloAdmin)
	m.allow(EntityPolicies, ActionUpdate, soloAdmin)
	m.allow(EntityPolicies, ActionDelete, soloAdmin)

	m.allow(EntityContent, ActionRead, todos)
	m.allow(EntityContent, ActionCreate, gestion)
	m.allow(EntityContent, ActionUpdate, gestion)
	m.allow(EntityContent, ActionDelete, gestion)
	m.allow(EntityContent, ActionPublish, gestion)

	m.allow(EntityMessages, ActionRead, todos)
	m.allow(EntityMessages, ActionCreate, gestion)
	m.allow(EntityMessages, ActionUpdate, gestion)
	m.allow(EntityMessages, ActionDelete, soloAdmin)

	m.allow(EntityAlerts, ActionRead, todos)
	m.allow(EntityAlerts, ActionCreate, gestion)
	m.allow(EntityAlerts, ActionDelete, soloAdmin)

	m.allow(EntityKpis, ActionRead, todos)
	m.allow(EntityKpis, ActionCreate, gestion)

	m.allow(EntityMembers, ActionRead, gestion)
	m.allow(EntityMembers, ActionCreate, soloAdmin)
	m.allow(EntityMembers, ActionUpdate, soloAdmin)
	m.allow(EntityMembers, ActionDelete, soloAdmin)

	m.allow(EntityTenants, ActionRead, soloAdmin)
	m.allow(EntityTenants, ActionUpdate, soloAdmin)

	// Overlay de aprobación: combinaciones permitidas pero que el caller
	// debe enrutar por un paso de visto bueno. La matriz solo marca el
	// flag, no implementa el workflow.
	m.requireApproval(EntityCampaigns, ActionDelete, entity.RoleGestor)
	m.requireApproval(EntityCampaigns, ActionPublish, entity.RoleGestor)
	m.requireApproval(EntityContent, ActionDelete, entity.RoleGestor)

	return m
}

func (m *Matrix) allow(ent, action string, rs roleSet) {
	m.rules[ruleKey{ent, action}] = rs
}

func (m *Matrix) requireApproval(ent, action string, roleNames ...string) {
	m.approval[ruleKey{ent, action}] = roles(roleNames...)
}

// HasPermission busca la regla (entidad, acción) y verifica el rol.
// Sin regla que coincida devuelve false: default-deny.
func (m *Matrix) HasPermission(role, ent, action string) bool {
	rs, ok := m.rules[ruleKey{ent, action}]
	if !ok {
		return false
	}
	_, ok = rs[role]
	return ok
}

// NeedsApproval consulta el overlay: true si la combinación está permitida
// pero requiere un visto bueno posterior.
func (m *Matrix) NeedsApproval(role, ent, action string) bool {
	if !m.HasPermission(role, ent, action) {
		return false
	}
	rs, ok := m.approval[ruleKey{ent, action}]
	if !ok {
		return false
	}
	_, ok = rs[role]
	return ok
}

// EntityPermissions devuelve las acciones permitidas para (rol, entidad),
// ordenadas; se usa para decidir qué affordances exponer al caller.
func (m *Matrix) EntityPermissions(role, ent string) []string {
	var actions []string
	for _, action := range AllActions {
		if m.HasPermission(role, ent, action) {
			actions = append(actions, action)
		}
	}
	sort.Strings(actions)
	return actions
}
