// Package redis implementa la caché de lectura y la difusión de tema
// sobre Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tu-usuario/consola-pro/internal/domain/repository"
)

var _ repository.ReadCache = (*ReadCache)(nil)

// cacheMetrics contadores opcionales de hit/miss.
type cacheMetrics interface {
	ReadCacheHit()
	ReadCacheMiss()
}

// ReadCache caché de lectura de payloads de listados. Los fallos de Redis
// se devuelven al caller, que degrada a leer del almacén.
type ReadCache struct {
	client  *redis.Client
	metrics cacheMetrics
}

// NewReadCache construye la caché. metrics puede ser nil.
func NewReadCache(client *redis.Client, metrics cacheMetrics) *ReadCache {
	return &ReadCache{client: client, metrics: metrics}
}

// Get devuelve el payload cacheado o (nil, nil) en miss.
func (c *ReadCache) Get(ctx context.Context, key string) ([]byte, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			if c.metrics != nil {
				c.metrics.ReadCacheMiss()
			}
			return nil, nil
		}
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	if c.metrics != nil {
		c.metrics.ReadCacheHit()
	}
	return payload, nil
}

// Set escribe el payload con la vigencia dada.
func (c *ReadCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// InvalidatePrefix borra todas las claves bajo el prefijo dado usando SCAN
// incremental para no bloquear el servidor.
func (c *ReadCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache del: %w", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan %s: %w", prefix, err)
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("cache del: %w", err)
		}
	}
	return nil
}
