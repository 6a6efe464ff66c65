package frames

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/consola-pro/internal/application/dto"
	"github.com/tu-usuario/consola-pro/internal/domain/entity"
	"github.com/tu-usuario/consola-pro/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type tenantsFake struct{ cfg *entity.TenantConfig }

func (f *tenantsFake) Get(ctx context.Context, id string) (*entity.TenantConfig, error) {
	if f.cfg != nil && f.cfg.ID == id {
		return f.cfg, nil
	}
	return nil, nil
}

type sinksFake struct {
	activities []dto.RecordActivityRequest
	alerts     []dto.CreateAlertRequest
	kpis       []dto.KpiWriteRequest
	failAlerts bool
}

func (f *sinksFake) Record(ctx context.Context, tenantID string, req dto.RecordActivityRequest) (*entity.ActivityRecord, error) {
	f.activities = append(f.activities, req)
	return &entity.ActivityRecord{}, nil
}

func (f *sinksFake) CreateAndFanout(ctx context.Context, tenantID string, req dto.CreateAlertRequest) (*entity.Alert, error) {
	if f.failAlerts {
		return nil, errors.New("almacén caído")
	}
	f.alerts = append(f.alerts, req)
	return &entity.Alert{}, nil
}

func (f *sinksFake) Upsert(ctx context.Context, tenantID string, req dto.KpiWriteRequest) (*entity.KpiEntry, error) {
	f.kpis = append(f.kpis, req)
	now := time.Now()
	ttl := req.ExpiresInMinutes
	if ttl <= 0 {
		ttl = 60
	}
	return &entity.KpiEntry{
		Module: req.Module, Key: req.Key, Value: req.Value,
		ExpiresAt: now.Add(time.Duration(ttl) * time.Minute), UpdatedAt: now,
	}, nil
}

type broadcasterFake struct{ themes []string }

func (f *broadcasterFake) BroadcastTheme(ctx context.Context, tenantID, theme string) error {
	f.themes = append(f.themes, tenantID+":"+theme)
	return nil
}

func (f *broadcasterFake) SubscribeTheme(ctx context.Context, tenantID string) (<-chan string, error) {
	ch := make(chan string)
	close(ch)
	return ch, nil
}

type metricsFake struct{ counts map[string]int }

func (f *metricsFake) FrameMessage(msgType, outcome string) {
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	f.counts[msgType+"/"+outcome]++
}

const (
	testTenant = "camp-a"
	testOrigin = "https://insights.partner.example"
)

func newTestBus(t *testing.T, production bool) (*Bus, *sinksFake, *metricsFake) {
	t.Helper()
	tenants := &tenantsFake{cfg: &entity.TenantConfig{
		ID: testTenant,
		Partners: []entity.PartnerApp{
			{Name: "Insights", BaseURL: "https://insights.partner.example", AllowedOrigin: testOrigin},
		},
	}}
	sinks := &sinksFake{}
	metrics := &metricsFake{}
	bus := NewBus(tenants, sinks, sinks, sinks, &broadcasterFake{}, metrics, production, logger.Nop())
	bus.async = false // efectos observables de forma determinista
	return bus, sinks, metrics
}

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

// Camino feliz: un frame allow-listado publica un KPI_UPDATE y la
// entrada Insights:trend_index queda escrita con expiración ≈ ahora + 60m.
func TestDispatch_KpiUpdateDesdeOrigenPermitido(t *testing.T) {
	bus, sinks, _ := newTestBus(t, true)

	change := decimal.NewFromFloat(8.5)
	ok := bus.Dispatch(context.Background(), testTenant, testOrigin, entity.FrameMessage{
		Type:   entity.FrameKpiUpdate,
		Source: "Insights",
		Payload: raw(t, map[string]any{
			"key": "trend_index", "value": 72, "unit": "pt", "change": 8.5,
		}),
	})

	require.True(t, ok)
	require.Len(t, sinks.kpis, 1)
	got := sinks.kpis[0]
	assert.Equal(t, "Insights", got.Module)
	assert.Equal(t, "trend_index", got.Key)
	assert.True(t, decimal.NewFromInt(72).Equal(got.Value))
	assert.Equal(t, "pt", got.Unit)
	require.NotNil(t, got.Change)
	assert.True(t, change.Equal(*got.Change))
}

// Un origen no allow-listado (y no loopback reconocido)
// produce cero efectos persistidos.
func TestDispatch_OrigenNoPermitidoSinEfectos(t *testing.T) {
	bus, sinks, metrics := newTestBus(t, true)

	for _, tipo := range []entity.FrameMessageType{entity.FrameActivity, entity.FrameAlert, entity.FrameKpiUpdate} {
		ok := bus.Dispatch(context.Background(), testTenant, "https://malicioso.example", entity.FrameMessage{
			Type: tipo, Source: "Insights", Payload: raw(t, map[string]any{"key": "x", "value": 1, "title": "t", "action": "a"}),
		})
		assert.False(t, ok, "tipo %s debe descartarse", tipo)
	}

	assert.Empty(t, sinks.activities)
	assert.Empty(t, sinks.alerts)
	assert.Empty(t, sinks.kpis)
	assert.Equal(t, 1, metrics.counts["KPI_UPDATE/bad_origin"])
}

// Carve-out loopback: permitido en desarrollo, nunca en producción.
func TestDispatch_LoopbackSoloEnDesarrollo(t *testing.T) {
	dev, devSinks, _ := newTestBus(t, false)
	ok := dev.Dispatch(context.Background(), testTenant, "http://localhost:5173", entity.FrameMessage{
		Type: entity.FrameActivity, Source: "Insights",
		Payload: raw(t, map[string]string{"action": "preview"}),
	})
	assert.True(t, ok)
	assert.Len(t, devSinks.activities, 1)

	prod, prodSinks, _ := newTestBus(t, true)
	ok = prod.Dispatch(context.Background(), testTenant, "http://localhost:5173", entity.FrameMessage{
		Type: entity.FrameActivity, Source: "Insights",
		Payload: raw(t, map[string]string{"action": "preview"}),
	})
	assert.False(t, ok)
	assert.Empty(t, prodSinks.activities)
}

// Sobres malformados: tipo desconocido, source vacío o versión futura se
// descartan en silencio (ruido cross-frame esperado).
func TestDispatch_SobreInvalidoDescartado(t *testing.T) {
	bus, sinks, metrics := newTestBus(t, true)

	casos := []entity.FrameMessage{
		{Type: "WEBPACK_HMR", Source: "devtools"},
		{Type: entity.FrameActivity, Source: ""},
		{Type: entity.FrameActivity, Source: "Insights", Version: 2},
	}
	for _, msg := range casos {
		assert.False(t, bus.Dispatch(context.Background(), testTenant, testOrigin, msg))
	}
	assert.Empty(t, sinks.activities)
	assert.Equal(t, 2, metrics.counts["ACTIVITY/bad_shape"])
}

// ACTIVITY atribuye el registro al source del sobre.
func TestDispatch_ActivitySeAtribuyeAlSource(t *testing.T) {
	bus, sinks, _ := newTestBus(t, true)

	ok := bus.Dispatch(context.Background(), testTenant, testOrigin, entity.FrameMessage{
		Version: 1,
		Type:    entity.FrameActivity,
		Source:  "Insights",
		Payload: raw(t, map[string]string{"action": "export", "detail": "informe semanal"}),
	})
	require.True(t, ok)
	require.Len(t, sinks.activities, 1)
	assert.Equal(t, "Insights", sinks.activities[0].Module)
	assert.Equal(t, "export", sinks.activities[0].Action)
}

// READY / ERROR / NAVIGATION son informativos: aceptados sin escrituras.
func TestDispatch_TiposInformativosSinEscrituras(t *testing.T) {
	bus, sinks, metrics := newTestBus(t, true)

	for _, tipo := range []entity.FrameMessageType{entity.FrameReady, entity.FrameError, entity.FrameNavigation} {
		assert.True(t, bus.Dispatch(context.Background(), testTenant, testOrigin, entity.FrameMessage{
			Type: tipo, Source: "Insights",
		}))
	}
	assert.Empty(t, sinks.activities)
	assert.Empty(t, sinks.alerts)
	assert.Empty(t, sinks.kpis)
	assert.Equal(t, 1, metrics.counts["READY/ignored"])
}

// Un fallo del handler se atrapa y cuenta; nunca cruza el límite del frame.
func TestDispatch_FalloDeHandlerNoSePropaga(t *testing.T) {
	bus, sinks, metrics := newTestBus(t, true)
	sinks.failAlerts = true

	ok := bus.Dispatch(context.Background(), testTenant, testOrigin, entity.FrameMessage{
		Type: entity.FrameAlert, Source: "Insights",
		Payload: raw(t, map[string]string{"title": "presupuesto agotado"}),
	})
	assert.True(t, ok, "el frame ve el mensaje aceptado aunque la persistencia falle")
	assert.Equal(t, 1, metrics.counts["ALERT/handler_error"])
}
