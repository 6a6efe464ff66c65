package repository

import (
	"context"
	"time"
)

// ReadCache caché de lectura para payloads de listados (actividad, alertas).
// Get devuelve (nil, nil) en miss. Los fallos de la caché nunca deben
// bloquear una petición: el caller degrada a leer del almacén.
type ReadCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	// InvalidatePrefix borra todas las claves bajo el prefijo dado.
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// ThemeBroadcaster canal de difusión host→frames del cambio de tema.
// Fire-and-forget: no hay acuse de recibo.
type ThemeBroadcaster interface {
	BroadcastTheme(ctx context.Context, tenantID, theme string) error
	// SubscribeTheme entrega temas publicados para el tenant hasta que el
	// contexto se cancela.
	SubscribeTheme(ctx context.Context, tenantID string) (<-chan string, error)
}
