package tenantcfg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/tu-usuario/consola-pro/internal/domain/entity"
)

// FileSource lee definiciones declarativas desde <dir>/<tenantID>.yaml.
// Es el origen usado en todos los entornos actuales; la interfaz
// DefinitionSource deja el hueco para un origen remoto.
type FileSource struct {
	dir string
}

// NewFileSource construye el origen de archivos.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// fileDefinition forma del YAML declarativo de un tenant.
type fileDefinition struct {
	DisplayName string          `mapstructure:"display_name"`
	Features    map[string]bool `mapstructure:"features"`
	Datastore   struct {
		Host      string `mapstructure:"host"`
		Port      int    `mapstructure:"port"`
		DBName    string `mapstructure:"dbname"`
		User      string `mapstructure:"user"`
		SecretRef string `mapstructure:"secret_ref"`
		SSLMode   string `mapstructure:"sslmode"`
		Shared    bool   `mapstructure:"shared"`
	} `mapstructure:"datastore"`
	Branding struct {
		PrimaryColor string `mapstructure:"primary_color"`
		LogoURL      string `mapstructure:"logo_url"`
		DefaultTheme string `mapstructure:"default_theme"`
	} `mapstructure:"branding"`
	Partners []struct {
		Name          string `mapstructure:"name"`
		BaseURL       string `mapstructure:"base_url"`
		EmbedPath     string `mapstructure:"embed_path"`
		AllowedOrigin string `mapstructure:"allowed_origin"`
	} `mapstructure:"partners"`
	Limits struct {
		MaxUsers        int `mapstructure:"max_users"`
		MaxAlertsPerDay int `mapstructure:"max_alerts_per_day"`
	} `mapstructure:"limits"`
	ActivatedAt time.Time  `mapstructure:"activated_at"`
	SuspendedAt *time.Time `mapstructure:"suspended_at"`
}

// Load lee la definición del tenant. Devuelve (nil, nil) si el archivo no
// existe; un YAML ilegible sí es error.
func (s *FileSource) Load(ctx context.Context, tenantID string) (*entity.TenantConfig, error) {
	path := filepath.Join(s.dir, tenantID+".yaml")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("leer %s: %w", path, err)
	}

	var def fileDefinition
	if err := v.Unmarshal(&def); err != nil {
		return nil, fmt.Errorf("decodificar %s: %w", path, err)
	}

	cfg := &entity.TenantConfig{
		ID:          tenantID,
		DisplayName: def.DisplayName,
		Features:    def.Features,
		Datastore: entity.DatastoreConfig{
			Host:      def.Datastore.Host,
			Port:      def.Datastore.Port,
			DBName:    def.Datastore.DBName,
			User:      def.Datastore.User,
			SecretRef: def.Datastore.SecretRef,
			SSLMode:   def.Datastore.SSLMode,
			Shared:    def.Datastore.Shared,
		},
		Branding: entity.Branding{
			PrimaryColor: def.Branding.PrimaryColor,
			LogoURL:      def.Branding.LogoURL,
			DefaultTheme: def.Branding.DefaultTheme,
		},
		Limits: entity.UsageLimits{
			MaxUsers:        def.Limits.MaxUsers,
			MaxAlertsPerDay: def.Limits.MaxAlertsPerDay,
		},
		ActivatedAt: def.ActivatedAt,
		SuspendedAt: def.SuspendedAt,
	}
	if cfg.DisplayName == "" {
		cfg.DisplayName = tenantID
	}
	if cfg.Branding.DefaultTheme == "" {
		cfg.Branding.DefaultTheme = "light"
	}
	for _, p := range def.Partners {
		embedPath := p.EmbedPath
		if embedPath == "" {
			embedPath = "/embed"
		}
		cfg.Partners = append(cfg.Partners, entity.PartnerApp{
			Name:          p.Name,
			BaseURL:       p.BaseURL,
			EmbedPath:     embedPath,
			AllowedOrigin: p.AllowedOrigin,
		})
	}
	return cfg, nil
}
