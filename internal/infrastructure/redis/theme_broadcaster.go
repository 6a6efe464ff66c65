package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tu-usuario/consola-pro/internal/domain/repository"
	"github.com/tu-usuario/consola-pro/pkg/logger"
)

var _ repository.ThemeBroadcaster = (*ThemeBroadcaster)(nil)

// ThemeBroadcaster difunde cambios de tema host→frames vía pub/sub.
// Fire-and-forget: publicar sin suscriptores no es un error.
type ThemeBroadcaster struct {
	client *redis.Client
	log    *logger.Logger
}

// NewThemeBroadcaster construye el difusor.
func NewThemeBroadcaster(client *redis.Client, log *logger.Logger) *ThemeBroadcaster {
	return &ThemeBroadcaster{client: client, log: log}
}

func themeChannel(tenantID string) string {
	return "consola:theme:" + tenantID
}

// BroadcastTheme publica el tema en el canal del tenant.
func (b *ThemeBroadcaster) BroadcastTheme(ctx context.Context, tenantID, theme string) error {
	if err := b.client.Publish(ctx, themeChannel(tenantID), theme).Err(); err != nil {
		return fmt.Errorf("publish theme: %w", err)
	}
	return nil
}

// SubscribeTheme entrega temas publicados para el tenant hasta que el
// contexto se cancela. El canal devuelto se cierra al cancelar.
func (b *ThemeBroadcaster) SubscribeTheme(ctx context.Context, tenantID string) (<-chan string, error) {
	sub := b.client.Subscribe(ctx, themeChannel(tenantID))
	// Confirma la suscripción antes de devolver el canal.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe theme: %w", err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
