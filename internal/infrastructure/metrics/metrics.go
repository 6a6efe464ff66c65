// Package metrics expone los contadores Prometheus de la consola.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ConsoleMetrics contadores del núcleo: bus de frames, aprovisionamiento y
// caché de lectura.
type ConsoleMetrics struct {
	frameMessages     *prometheus.CounterVec
	provisionAttempts *prometheus.CounterVec
	readCacheHits     prometheus.Counter
	readCacheMisses   prometheus.Counter
}

// New inicializa y registra los contadores en el registry por defecto.
func New() *ConsoleMetrics {
	return &ConsoleMetrics{
		frameMessages: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consola",
			Subsystem: "frames",
			Name:      "messages_total",
			Help:      "Mensajes de frames recibidos por tipo y resultado.",
		}, []string{"type", "outcome"}), // outcome: accepted, bad_origin, bad_shape, handler_error, ignored
		provisionAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consola",
			Subsystem: "datastore",
			Name:      "provision_attempts_total",
			Help:      "Intentos de aprovisionamiento de esquema por resultado.",
		}, []string{"outcome"}), // outcome: ready, failed, skipped
		readCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "consola",
			Subsystem: "readcache",
			Name:      "hits_total",
			Help:      "Hits de la caché de lectura.",
		}),
		readCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "consola",
			Subsystem: "readcache",
			Name:      "misses_total",
			Help:      "Misses de la caché de lectura.",
		}),
	}
}

// FrameMessage cuenta un mensaje de frame despachado.
func (m *ConsoleMetrics) FrameMessage(msgType, outcome string) {
	m.frameMessages.WithLabelValues(msgType, outcome).Inc()
}

// ProvisionAttempt cuenta un intento de aprovisionamiento.
func (m *ConsoleMetrics) ProvisionAttempt(outcome string) {
	m.provisionAttempts.WithLabelValues(outcome).Inc()
}

// ReadCacheHit / ReadCacheMiss cuentan accesos a la caché de lectura.
func (m *ConsoleMetrics) ReadCacheHit()  { m.readCacheHits.Inc() }
func (m *ConsoleMetrics) ReadCacheMiss() { m.readCacheMisses.Inc() }
