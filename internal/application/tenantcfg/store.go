// Package tenantcfg carga y cachea la configuración declarativa por tenant.
package tenantcfg

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tu-usuario/consola-pro/internal/cache"
	"github.com/tu-usuario/consola-pro/internal/domain/entity"
	"github.com/tu-usuario/consola-pro/pkg/logger"
)

// Convenciones de nombre de tenant id. En producción solo se admite el slug
// estricto; en development también los ids demo-* (fixtures locales).
var (
	slugPattern = regexp.MustCompile(`^[a-z][a-z0-9]{2,29}(-[a-z0-9]+)*$`)
	devPrefix   = "demo-"
)

// ValidID valida el candidato según el entorno.
func ValidID(id string, production bool) bool {
	if !slugPattern.MatchString(id) {
		return false
	}
	if production && strings.HasPrefix(id, devPrefix) {
		return false
	}
	return true
}

// DevID indica si el id sigue la convención de desarrollo (demo-*).
func DevID(id string) bool { return strings.HasPrefix(id, devPrefix) }

// DefinitionSource origen de las definiciones declarativas de tenants.
// Load devuelve (nil, nil) cuando no existe definición para el id.
type DefinitionSource interface {
	Load(ctx context.Context, tenantID string) (*entity.TenantConfig, error)
}

// Store caché TTL sobre el origen de definiciones. La ausencia es un valor
// normal (nil, nil), no un error: el caller decide cómo reaccionar.
//
// Las cargas concurrentes del mismo tenant NO se deduplican (sin
// single-flight): son idempotentes y baratas, y último-escritor-gana es un
// resultado aceptable en una carrera. Simplificación deliberada.
type Store struct {
	source     DefinitionSource
	cache      *cache.TTLCache[*entity.TenantConfig]
	production bool
	log        *logger.Logger
}

// NewStore construye el store con su caché inyectada (TTL ≈ 5 minutos).
func NewStore(source DefinitionSource, ttl time.Duration, production bool, log *logger.Logger) *Store {
	return &Store{
		source:     source,
		cache:      cache.NewTTL[*entity.TenantConfig](ttl),
		production: production,
		log:        log,
	}
}

// Get devuelve la configuración del tenant o (nil, nil) si no existe.
// En entornos no productivos, los ids demo-* sin definición real reciben
// una configuración por defecto sintetizada para soportar pruebas locales.
func (s *Store) Get(ctx context.Context, tenantID string) (*entity.TenantConfig, error) {
	if cfg, ok := s.cache.Get(tenantID); ok {
		return cfg, nil
	}

	cfg, err := s.source.Load(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("cargar definición de %s: %w", tenantID, err)
	}
	if cfg == nil {
		if !s.production && DevID(tenantID) {
			cfg = synthesizeDevConfig(tenantID)
			s.log.Debug().Str("tenant", tenantID).Msg("configuración de desarrollo sintetizada")
		} else {
			return nil, nil
		}
	}

	s.cache.Set(tenantID, cfg)
	return cfg, nil
}

// Invalidate fuerza la recarga del tenant en el próximo Get (acción de
// administrador, sin reinicio de proceso).
func (s *Store) Invalidate(tenantID string) {
	s.cache.Delete(tenantID)
}

// InvalidateAll vacía la caché completa.
func (s *Store) InvalidateAll() {
	s.cache.Clear()
}

// Close libera la caché (ciclo de vida explícito).
func (s *Store) Close() {
	s.cache.Close()
}

// synthesizeDevConfig configuración mínima para fixtures demo-*: almacén
// compartido, sin partners y sin límites.
func synthesizeDevConfig(tenantID string) *entity.TenantConfig {
	return &entity.TenantConfig{
		ID:          tenantID,
		DisplayName: tenantID,
		Features:    map[string]bool{"alerts": true, "kpis": true, "activity": true},
		Datastore:   entity.DatastoreConfig{Shared: true},
		Branding:    entity.Branding{DefaultTheme: "light"},
		ActivatedAt: time.Now(),
	}
}
