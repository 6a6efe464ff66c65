package postgres

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tu-usuario/consola-pro/internal/domain"
	"github.com/tu-usuario/consola-pro/internal/domain/entity"
	"github.com/tu-usuario/consola-pro/pkg/logger"
)

// SecretResolver resuelve la credencial del almacén de un tenant a partir
// de su referencia declarada.
type SecretResolver interface {
	Resolve(ctx context.Context, secretRef string) (string, error)
}

// FallbackResolver devuelve siempre el secreto compartido de respaldo.
// Punto de integración incompleto con el gestor de secretos: declarado,
// no disimulado.
type FallbackResolver struct {
	Password string
}

// Resolve ignora la referencia y entrega el fallback.
func (r *FallbackResolver) Resolve(ctx context.Context, secretRef string) (string, error) {
	return r.Password, nil
}

type configGetter interface {
	Get(ctx context.Context, tenantID string) (*entity.TenantConfig, error)
}

type provisionMetrics interface {
	ProvisionAttempt(outcome string)
}

// RouterConfig parámetros del enrutador de almacenes.
type RouterConfig struct {
	SharedStore bool  // modo almacén único (desarrollo o flag explícito)
	MaxConns    int32 // tamaño máximo de cada pool por tenant
}

// Router resuelve y cachea un cliente de almacén por tenant, con
// aprovisionamiento perezoso del esquema.
//
// El mapa tenant→pool es estado mutable del proceso construido e inyectado
// explícitamente; no hay desalojo parcial, solo el drenaje completo de
// DisconnectAll en el apagado. Las primeras llamadas concurrentes para el
// mismo tenant NO se deduplican: dos peticiones en carrera pueden abrir el
// pool y correr el script de creación a la vez, redundante pero seguro
// porque todo el DDL es idempotente.
type Router struct {
	cfg     RouterConfig
	shared  *pgxpool.Pool // pool de control; también el cliente del modo shared
	tenants configGetter
	secrets SecretResolver
	metrics provisionMetrics
	log     *logger.Logger

	mu        sync.RWMutex
	pools     map[string]*pgxpool.Pool
	provision map[string]string // estado por tenant: unknown|checking|ready|failed
}

// Estados observables del aprovisionamiento por tenant.
const (
	ProvisionUnknown  = "unknown"
	ProvisionChecking = "checking"
	ProvisionReady    = "ready"
	ProvisionFailed   = "failed"
)

// NewRouter construye el enrutador sobre el pool compartido/control.
func NewRouter(shared *pgxpool.Pool, tenants configGetter, secrets SecretResolver, metrics provisionMetrics, cfg RouterConfig, log *logger.Logger) *Router {
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 10
	}
	return &Router{
		cfg:       cfg,
		shared:    shared,
		tenants:   tenants,
		secrets:   secrets,
		metrics:   metrics,
		log:       log,
		pools:     make(map[string]*pgxpool.Pool),
		provision: make(map[string]string),
	}
}

// GetClient devuelve el pool del tenant. Dos llamadas secuenciales para el
// mismo tenant devuelven la misma instancia cacheada.
func (r *Router) GetClient(ctx context.Context, tenantID string) (*pgxpool.Pool, error) {
	if r.cfg.SharedStore {
		r.ensureProvisioned(ctx, tenantID, "")
		return r.shared, nil
	}

	r.mu.RLock()
	pool, ok := r.pools[tenantID]
	r.mu.RUnlock()
	if ok {
		return pool, nil
	}

	cfg, err := r.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		// Ruta de acceso a datos: aquí la ausencia sí corta la petición.
		return nil, domain.ErrTenantNotFound
	}
	if cfg.Datastore.Shared {
		r.ensureProvisioned(ctx, tenantID, "")
		return r.shared, nil
	}

	dsn, err := r.tenantDSN(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// El aprovisionamiento usa una conexión administrativa efímera, nunca
	// el pool que servirá tráfico.
	r.ensureProvisioned(ctx, tenantID, dsn)

	pool, err = r.newPool(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pool para %s: %w", tenantID, err)
	}

	r.mu.Lock()
	// Carrera en el primer acceso: si otro goroutine ya cacheó, nos
	// quedamos con el suyo y cerramos el nuestro.
	if existing, ok := r.pools[tenantID]; ok {
		r.mu.Unlock()
		pool.Close()
		return existing, nil
	}
	r.pools[tenantID] = pool
	r.mu.Unlock()

	r.log.Info().Str("tenant", tenantID).Msg("pool de almacén creado")
	return pool, nil
}

// ProvisionState devuelve el estado observable del aprovisionamiento.
func (r *Router) ProvisionState(tenantID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.provision[tenantID]; ok {
		return s
	}
	return ProvisionUnknown
}

// RetryProvision reintenta el aprovisionamiento de un tenant en estado
// failed (el guard "una vez por proceso" deja de ser terminal).
func (r *Router) RetryProvision(ctx context.Context, tenantID string) error {
	if r.ProvisionState(tenantID) != ProvisionFailed {
		return domain.ErrConflict
	}
	r.mu.Lock()
	delete(r.provision, tenantID)
	r.mu.Unlock()

	if r.cfg.SharedStore {
		r.ensureProvisioned(ctx, tenantID, "")
	} else {
		cfg, err := r.tenants.Get(ctx, tenantID)
		if err != nil {
			return err
		}
		if cfg == nil {
			return domain.ErrTenantNotFound
		}
		if cfg.Datastore.Shared {
			r.ensureProvisioned(ctx, tenantID, "")
		} else {
			dsn, err := r.tenantDSN(ctx, cfg)
			if err != nil {
				return err
			}
			r.ensureProvisioned(ctx, tenantID, dsn)
		}
	}
	if r.ProvisionState(tenantID) == ProvisionFailed {
		return domain.ErrNotProvisioned
	}
	return nil
}

// DisconnectAll drena todos los pools cacheados para un apagado ordenado.
// El pool compartido lo cierra su dueño (main), no el router.
func (r *Router) DisconnectAll() {
	r.mu.Lock()
	pools := r.pools
	r.pools = make(map[string]*pgxpool.Pool)
	r.mu.Unlock()

	for tenantID, pool := range pools {
		pool.Close()
		r.log.Info().Str("tenant", tenantID).Msg("pool drenado")
	}
}

// tenantDSN arma el DSN del tenant resolviendo la credencial vía el
// resolutor de secretos.
func (r *Router) tenantDSN(ctx context.Context, cfg *entity.TenantConfig) (string, error) {
	ds := cfg.Datastore
	password, err := r.secrets.Resolve(ctx, ds.SecretRef)
	if err != nil {
		return "", fmt.Errorf("resolver secreto de %s: %w", cfg.ID, err)
	}
	sslmode := ds.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(ds.User, password),
		Host:     fmt.Sprintf("%s:%d", ds.Host, ds.Port),
		Path:     "/" + ds.DBName,
		RawQuery: "sslmode=" + sslmode,
	}
	return u.String(), nil
}

// newPool crea un pool acotado con el codec NUMERIC→decimal registrado en
// cada conexión.
func (r *Router) newPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	poolConfig.MaxConns = r.cfg.MaxConns
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping almacén: %w", err)
	}
	return pool, nil
}

// NewControlPool crea el pool de la base de control (identidades,
// membresías y modo shared-store), con el codec decimal registrado.
func NewControlPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = maxConns
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}
