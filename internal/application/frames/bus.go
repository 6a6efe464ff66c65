// Package frames implementa el bus de mensajes cross-origin de las
// aplicaciones partner embebidas. El host valida origen y forma del sobre,
// despacha cada tipo contra su almacén de ingesta y nunca propaga fallos de
// vuelta al frame que publicó.
package frames

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/consola-pro/internal/application/dto"
	"github.com/tu-usuario/consola-pro/internal/domain/entity"
	"github.com/tu-usuario/consola-pro/internal/domain/repository"
	"github.com/tu-usuario/consola-pro/pkg/logger"
)

// Resultados posibles de un despacho, usados como etiqueta de métrica.
const (
	OutcomeAccepted     = "accepted"
	OutcomeBadOrigin    = "bad_origin"
	OutcomeBadShape     = "bad_shape"
	OutcomeHandlerError = "handler_error"
	OutcomeIgnored      = "ignored" // READY / ERROR / NAVIGATION
)

// Metrics contadores del bus (implementados sobre Prometheus en infra).
type Metrics interface {
	FrameMessage(msgType, outcome string)
}

type configGetter interface {
	Get(ctx context.Context, tenantID string) (*entity.TenantConfig, error)
}

type activityRecorder interface {
	Record(ctx context.Context, tenantID string, req dto.RecordActivityRequest) (*entity.ActivityRecord, error)
}

type alertCreator interface {
	CreateAndFanout(ctx context.Context, tenantID string, req dto.CreateAlertRequest) (*entity.Alert, error)
}

type kpiUpserter interface {
	Upsert(ctx context.Context, tenantID string, req dto.KpiWriteRequest) (*entity.KpiEntry, error)
}

// Bus valida y despacha mensajes de frames hacia los almacenes de ingesta.
type Bus struct {
	tenants     configGetter
	activity    activityRecorder
	inbox       alertCreator
	kpis        kpiUpserter
	broadcaster repository.ThemeBroadcaster
	metrics     Metrics
	production  bool
	log         *logger.Logger

	// async separa la validación (síncrona) de los handlers (goroutine);
	// los tests lo apagan para observar efectos de forma determinista.
	async bool
}

// NewBus construye el bus.
func NewBus(tenants configGetter, activity activityRecorder, inbox alertCreator, kpis kpiUpserter, broadcaster repository.ThemeBroadcaster, metrics Metrics, production bool, log *logger.Logger) *Bus {
	return &Bus{
		tenants:     tenants,
		activity:    activity,
		inbox:       inbox,
		kpis:        kpis,
		broadcaster: broadcaster,
		metrics:     metrics,
		production:  production,
		log:         log,
		async:       true,
	}
}

// Dispatch valida origen y sobre; si pasan, el handler corre en segundo
// plano y el frame nunca espera la persistencia. Devuelve true si el
// mensaje fue aceptado; un false es un descarte silencioso deliberado
// (el ruido cross-frame ajeno es esperado y no debe aflorar errores).
func (b *Bus) Dispatch(ctx context.Context, tenantID, origin string, msg entity.FrameMessage) bool {
	if !msg.ValidShape() {
		b.metrics.FrameMessage(string(msg.Type), OutcomeBadShape)
		b.log.Debug().Str("tenant", tenantID).Str("type", string(msg.Type)).Msg("sobre de frame inválido, descartado")
		return false
	}
	ok, err := b.originAllowed(ctx, tenantID, origin)
	if err != nil || !ok {
		b.metrics.FrameMessage(string(msg.Type), OutcomeBadOrigin)
		b.log.Debug().Str("tenant", tenantID).Str("origin", origin).Msg("origen no permitido, descartado")
		return false
	}

	if b.async {
		// Desacoplado de la petición: el contexto del request muere al
		// responder 202, los handlers usan uno propio acotado.
		go func() {
			hctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			defer func() {
				if r := recover(); r != nil {
					b.metrics.FrameMessage(string(msg.Type), OutcomeHandlerError)
					b.log.Error().Interface("panic", r).Str("tenant", tenantID).Msg("pánico en handler de frame")
				}
			}()
			b.handle(hctx, tenantID, msg)
		}()
		return true
	}
	b.handle(ctx, tenantID, msg)
	return true
}

// originAllowed contrasta el origen contra la allow-list del tenant, con un
// carve-out para orígenes loopback fuera de producción.
func (b *Bus) originAllowed(ctx context.Context, tenantID, origin string) (bool, error) {
	if origin == "" {
		return false, nil
	}
	if !b.production && loopbackOrigin(origin) {
		return true, nil
	}
	cfg, err := b.tenants.Get(ctx, tenantID)
	if err != nil || cfg == nil {
		return false, err
	}
	for _, allowed := range cfg.AllowedOrigins() {
		if origin == allowed {
			return true, nil
		}
	}
	return false, nil
}

func loopbackOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// handle hace el switch exhaustivo sobre la unión de tipos del protocolo.
func (b *Bus) handle(ctx context.Context, tenantID string, msg entity.FrameMessage) {
	var err error
	outcome := OutcomeAccepted

	switch msg.Type {
	case entity.FrameActivity:
		err = b.handleActivity(ctx, tenantID, msg)
	case entity.FrameAlert:
		err = b.handleAlert(ctx, tenantID, msg)
	case entity.FrameKpiUpdate:
		err = b.handleKpi(ctx, tenantID, msg)
	case entity.FrameReady:
		// Informativo: el host puede retirar el indicador de carga del frame.
		outcome = OutcomeIgnored
		b.log.Debug().Str("tenant", tenantID).Str("source", msg.Source).Msg("frame listo")
	case entity.FrameError:
		outcome = OutcomeIgnored
		b.log.Warn().Str("tenant", tenantID).Str("source", msg.Source).RawJSON("payload", payloadOrNull(msg)).Msg("error reportado por frame")
	case entity.FrameNavigation:
		// Reservado por el protocolo; de momento no-op.
		outcome = OutcomeIgnored
	default:
		// Inalcanzable tras ValidShape; contado por si la unión crece.
		outcome = OutcomeBadShape
	}

	if err != nil {
		// Atrapado y registrado, jamás propagado a través del límite del frame.
		outcome = OutcomeHandlerError
		b.log.Error().Err(err).Str("tenant", tenantID).Str("type", string(msg.Type)).Msg("handler de frame falló")
	}
	b.metrics.FrameMessage(string(msg.Type), outcome)
}

// activityPayload / alertPayload / kpiPayload formas por tipo del sobre.
type activityPayload struct {
	Action string `json:"action"`
	Detail string `json:"detail,omitempty"`
	UserID string `json:"userId,omitempty"`
}

type alertPayload struct {
	Title            string   `json:"title"`
	Body             string   `json:"body,omitempty"`
	Severity         string   `json:"severity,omitempty"`
	Type             string   `json:"type,omitempty"`
	Pinned           bool     `json:"pinned,omitempty"`
	ExpiresInMinutes int      `json:"expiresInMinutes,omitempty"`
	TargetUserIDs    []string `json:"targetUserIds,omitempty"`
}

type kpiPayload struct {
	Key              string           `json:"key"`
	Value            decimal.Decimal  `json:"value"`
	Unit             string           `json:"unit,omitempty"`
	Change           *decimal.Decimal `json:"change,omitempty"`
	ExpiresInMinutes int              `json:"expiresInMinutes,omitempty"`
}

func (b *Bus) handleActivity(ctx context.Context, tenantID string, msg entity.FrameMessage) error {
	var p activityPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		return err
	}
	// Atribuido al partner emisor: module = source del sobre.
	_, err := b.activity.Record(ctx, tenantID, dto.RecordActivityRequest{
		Module: msg.Source,
		Action: p.Action,
		Detail: p.Detail,
		UserID: p.UserID,
	})
	return err
}

func (b *Bus) handleAlert(ctx context.Context, tenantID string, msg entity.FrameMessage) error {
	var p alertPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		return err
	}
	_, err := b.inbox.CreateAndFanout(ctx, tenantID, dto.CreateAlertRequest{
		Module:           msg.Source,
		Title:            p.Title,
		Body:             p.Body,
		Severity:         p.Severity,
		Type:             p.Type,
		Pinned:           p.Pinned,
		ExpiresInMinutes: p.ExpiresInMinutes,
		TargetUserIDs:    p.TargetUserIDs,
	})
	return err
}

func (b *Bus) handleKpi(ctx context.Context, tenantID string, msg entity.FrameMessage) error {
	var p kpiPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		return err
	}
	_, err := b.kpis.Upsert(ctx, tenantID, dto.KpiWriteRequest{
		Module:           msg.Source,
		Key:              p.Key,
		Value:            p.Value,
		Unit:             p.Unit,
		Change:           p.Change,
		ExpiresInMinutes: p.ExpiresInMinutes,
	})
	return err
}

// BroadcastTheme difunde un cambio de tema a todos los frames del tenant.
// Dirección host→frame, fire-and-forget, sin acuse: el único mensaje que el
// host empuja, nunca contenido ejecutable.
func (b *Bus) BroadcastTheme(ctx context.Context, tenantID, theme string) error {
	return b.broadcaster.BroadcastTheme(ctx, tenantID, theme)
}

// SubscribeTheme expone la suscripción para el endpoint de streaming.
func (b *Bus) SubscribeTheme(ctx context.Context, tenantID string) (<-chan string, error) {
	return b.broadcaster.SubscribeTheme(ctx, tenantID)
}

func payloadOrNull(msg entity.FrameMessage) []byte {
	if len(msg.Payload) == 0 {
		return []byte("null")
	}
	return msg.Payload
}
