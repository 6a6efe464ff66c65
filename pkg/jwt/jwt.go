package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// EmbedSource valor fijo del claim "source" de los embed tokens: identifica
// al host como emisor frente a las aplicaciones partner.
const EmbedSource = "dashboard"

// SessionClaims claims de sesión de la consola. Role y TenantID son una
// instantánea de la membresía activa al momento del login: un cambio de rol
// posterior NO altera una sesión ya emitida. La expiración es una ventana
// absoluta desde la emisión.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"` // "admin" | "gestor" | "analista" | "lector"
	TenantID   string `json:"tenant_id"`
	SuperAdmin bool   `json:"super_admin,omitempty"`
}

// EmbedClaims claims del token corto para aplicaciones partner embebidas.
// Sin estado y sin revocación: el riesgo se acota solo por el TTL.
type EmbedClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	TenantID string `json:"tenant_id"`
	Source   string `json:"source"` // siempre "dashboard"
}

// GenerateSession genera el JWT de sesión firmado (HS256).
func GenerateSession(secret, issuer string, expHours int, claims SessionClaims) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expHours) * time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseSession valida el token de sesión y devuelve los claims.
// Retorna error si el token es inválido, expirado o tiene firma incorrecta.
func ParseSession(secret, tokenString string) (*SessionClaims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, keyFunc(secret))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	return claims, nil
}

// GenerateEmbed genera el embed token firmado para una aplicación partner.
// Source se fija siempre a "dashboard", venga lo que venga en claims.
func GenerateEmbed(secret, issuer string, expMinutes int, claims EmbedClaims) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret de embed vacío")
	}
	now := time.Now()
	claims.Source = EmbedSource
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseEmbed valida un embed token (lo usan los tests y el endpoint de
// verificación de partners).
func ParseEmbed(secret, tokenString string) (*EmbedClaims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret de embed vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &EmbedClaims{}, keyFunc(secret))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*EmbedClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	return claims, nil
}

func keyFunc(secret string) jwt.Keyfunc {
	return func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}
}
