// Package cache implementa una caché TTL en memoria, construida e inyectada
// explícitamente (sin estado global de proceso) y con ciclo de vida propio.
package cache

import (
	"sync"
	"time"
)

type item[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache caché clave→valor con expiración por entrada. La expiración se
// evalúa en lectura; Close vacía el estado. Segura para uso concurrente.
type TTLCache[V any] struct {
	mu    sync.RWMutex
	items map[string]item[V]
	ttl   time.Duration
	now   func() time.Time
}

// NewTTL construye la caché con el TTL por defecto para Set.
func NewTTL[V any](ttl time.Duration) *TTLCache[V] {
	return &TTLCache[V]{
		items: make(map[string]item[V]),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get devuelve el valor y true si existe y no está vencido. Una entrada
// vencida se elimina perezosamente en la siguiente escritura o Purge.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || c.now().After(it.expiresAt) {
		var zero V
		return zero, false
	}
	return it.value, true
}

// Set escribe el valor con el TTL por defecto. Último escritor gana.
func (c *TTLCache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL escribe el valor con un TTL específico.
func (c *TTLCache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	c.items[key] = item[V]{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Delete invalida una entrada concreta.
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Clear invalida todas las entradas.
func (c *TTLCache[V]) Clear() {
	c.mu.Lock()
	c.items = make(map[string]item[V])
	c.mu.Unlock()
}

// Keys devuelve las claves no vencidas (para drenajes y diagnóstico).
func (c *TTLCache[V]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	now := c.now()
	keys := make([]string, 0, len(c.items))
	for k, it := range c.items {
		if now.Before(it.expiresAt) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Purge elimina las entradas vencidas y devuelve cuántas quitó.
func (c *TTLCache[V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for k, it := range c.items {
		if now.After(it.expiresAt) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

// Close libera el estado de la caché. Tras Close la caché queda vacía pero
// sigue siendo utilizable; el nombre existe para el ciclo de vida explícito.
func (c *TTLCache[V]) Close() {
	c.Clear()
}
