// Package embed emite los embed tokens y construye las URLs de embebido de
// las aplicaciones partner. Un frame de otro origen no puede leer la cookie
// de sesión del host: recibe los hechos de identidad como credencial
// portadora explícita y verificable, acotada solo por su TTL corto.
package embed

import (
	"context"
	"net/url"
	"strings"

	"github.com/tu-usuario/consola-pro/internal/application/dto"
	"github.com/tu-usuario/consola-pro/internal/domain"
	"github.com/tu-usuario/consola-pro/internal/domain/entity"
	"github.com/tu-usuario/consola-pro/pkg/jwt"
)

// Config firma y vigencia de los embed tokens.
type Config struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// configGetter contrato mínimo sobre el store de configuración; evita el
// acoplamiento directo con tenantcfg.
type configGetter interface {
	Get(ctx context.Context, tenantID string) (*entity.TenantConfig, error)
}

// TokenIssuer emisor de embed tokens.
type TokenIssuer struct {
	cfg     Config
	tenants configGetter
}

// NewTokenIssuer construye el emisor.
func NewTokenIssuer(cfg Config, tenants configGetter) *TokenIssuer {
	return &TokenIssuer{cfg: cfg, tenants: tenants}
}

// IssueToken emite el token firmado a partir de los claims de sesión.
// Sin revocación: la ventana de riesgo es el TTL (≈ 1h).
func (i *TokenIssuer) IssueToken(session *jwt.SessionClaims) (string, error) {
	return jwt.GenerateEmbed(i.cfg.Secret, i.cfg.Issuer, i.cfg.ExpMinutes, jwt.EmbedClaims{
		UserID:   session.UserID,
		Email:    session.Email,
		Name:     session.Name,
		Role:     session.Role,
		TenantID: session.TenantID,
	})
}

// BuildEmbedURL resuelve la aplicación partner del tenant y arma la URL de
// embebido: base + ruta fija + query token/tenant/theme.
func (i *TokenIssuer) BuildEmbedURL(ctx context.Context, session *jwt.SessionClaims, partnerName, theme string) (*dto.EmbedURLResponse, error) {
	cfg, err := i.tenants.Get(ctx, session.TenantID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, domain.ErrTenantNotFound
	}
	partner := cfg.Partner(partnerName)
	if partner == nil {
		return nil, domain.ErrUnknownPartner
	}

	token, err := i.IssueToken(session)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("token", token)
	q.Set("tenant", session.TenantID)
	if theme != "" {
		q.Set("theme", theme)
	}

	base := strings.TrimRight(partner.BaseURL, "/")
	return &dto.EmbedURLResponse{
		Partner: partner.Name,
		URL:     base + partner.EmbedPath + "?" + q.Encode(),
		Token:   token,
	}, nil
}
