package entity

import "time"

// TenantConfig es la definición declarativa de un tenant. El ID es la clave
// de aislamiento: estable, globalmente único e inmutable durante toda la vida
// del tenant.
type TenantConfig struct {
	ID          string
	DisplayName string
	Features    map[string]bool
	Datastore   DatastoreConfig
	Branding    Branding
	Partners    []PartnerApp
	Limits      UsageLimits
	ActivatedAt time.Time
	SuspendedAt *time.Time // nil = activo
}

// DatastoreConfig coordenadas del almacén de datos del tenant.
// Si Shared es true el tenant usa el pool compartido del proceso.
type DatastoreConfig struct {
	Host      string
	Port      int
	DBName    string
	User      string
	SecretRef string // referencia para el resolutor de secretos (integración incompleta)
	SSLMode   string
	Shared    bool
}

// Branding apariencia del tenant dentro de la consola.
type Branding struct {
	PrimaryColor string
	LogoURL      string
	DefaultTheme string // light | dark
}

// PartnerApp aplicación partner embebida en un frame de la consola.
type PartnerApp struct {
	Name          string // identificador usado como "source" en los mensajes
	BaseURL       string
	EmbedPath     string // ruta fija de embebido, p.ej. /embed
	AllowedOrigin string // origen exacto permitido para mensajes cross-frame
}

// UsageLimits límites de uso declarados por tenant.
type UsageLimits struct {
	MaxUsers        int
	MaxAlertsPerDay int
}

// Suspended indica si el tenant está suspendido en este momento.
func (t *TenantConfig) Suspended() bool {
	return t.SuspendedAt != nil && !t.SuspendedAt.After(time.Now())
}

// Partner busca una aplicación partner por nombre. Devuelve nil si no existe.
func (t *TenantConfig) Partner(name string) *PartnerApp {
	for i := range t.Partners {
		if t.Partners[i].Name == name {
			return &t.Partners[i]
		}
	}
	return nil
}

// AllowedOrigins devuelve los orígenes permitidos para mensajes de frames.
func (t *TenantConfig) AllowedOrigins() []string {
	origins := make([]string, 0, len(t.Partners))
	for _, p := range t.Partners {
		if p.AllowedOrigin != "" {
			origins = append(origins, p.AllowedOrigin)
		}
	}
	return origins
}
