package entity

import "encoding/json"

// Tipos de mensaje del protocolo de frames. Unión discriminada: el bus hace
// switch exhaustivo sobre estos valores.
type FrameMessageType string

const (
	FrameActivity   FrameMessageType = "ACTIVITY"
	FrameAlert      FrameMessageType = "ALERT"
	FrameKpiUpdate  FrameMessageType = "KPI_UPDATE"
	FrameReady      FrameMessageType = "READY"
	FrameError      FrameMessageType = "ERROR"
	FrameNavigation FrameMessageType = "NAVIGATION"
)

// FrameProtocolVersion versión vigente del protocolo de mensajes de frames.
// Version 0 en el sobre se interpreta como 1 (sobres anteriores al campo);
// versiones mayores se descartan como desconocidas.
const FrameProtocolVersion = 1

// FrameMessage sobre de un mensaje cross-origin enviado por una aplicación
// partner embebida. Transitorio: no se persiste tal cual, cada tipo se
// traduce en una escritura contra uno de los almacenes de ingesta.
type FrameMessage struct {
	Version int              `json:"version,omitempty"`
	Type    FrameMessageType `json:"type"`
	Source  string           `json:"source"`
	Payload json.RawMessage  `json:"payload,omitempty"`
}

// KnownType indica si el tipo pertenece a la unión del protocolo.
func (m FrameMessage) KnownType() bool {
	switch m.Type {
	case FrameActivity, FrameAlert, FrameKpiUpdate, FrameReady, FrameError, FrameNavigation:
		return true
	}
	return false
}

// ValidShape valida la forma mínima del sobre: tipo conocido, source no
// vacío y versión soportada. Un sobre inválido se descarta en silencio.
func (m FrameMessage) ValidShape() bool {
	if !m.KnownType() || m.Source == "" {
		return false
	}
	return m.Version == 0 || m.Version == FrameProtocolVersion
}
