package http_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/consola-pro/internal/application/dto"
	"github.com/tu-usuario/consola-pro/internal/application/frames"
	"github.com/tu-usuario/consola-pro/internal/domain/entity"
	apphttp "github.com/tu-usuario/consola-pro/internal/interfaces/http"
	"github.com/tu-usuario/consola-pro/pkg/logger"
)

// Sumideros no-op: aquí solo interesa el contrato HTTP (202 siempre), los
// efectos del bus se prueban en su propio paquete.

type nopSinks struct{}

func (nopSinks) Record(context.Context, string, dto.RecordActivityRequest) (*entity.ActivityRecord, error) {
	return &entity.ActivityRecord{}, nil
}
func (nopSinks) CreateAndFanout(context.Context, string, dto.CreateAlertRequest) (*entity.Alert, error) {
	return &entity.Alert{}, nil
}
func (nopSinks) Upsert(context.Context, string, dto.KpiWriteRequest) (*entity.KpiEntry, error) {
	return &entity.KpiEntry{}, nil
}

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastTheme(context.Context, string, string) error { return nil }
func (nopBroadcaster) SubscribeTheme(context.Context, string) (<-chan string, error) {
	ch := make(chan string)
	close(ch)
	return ch, nil
}

type nopMetrics struct{}

func (nopMetrics) FrameMessage(string, string) {}

func buildFrameApp(t *testing.T) *fiber.App {
	t.Helper()
	tenants := &fakeTenants{known: map[string]*entity.TenantConfig{
		"camp-a": {ID: "camp-a", Partners: []entity.PartnerApp{
			{Name: "insights", BaseURL: "https://insights.ejemplo.com", AllowedOrigin: "https://insights.ejemplo.com"},
		}},
	}}
	bus := frames.NewBus(tenants, nopSinks{}, nopSinks{}, nopSinks{}, nopBroadcaster{}, nopMetrics{}, true, logger.Nop())
	handler := apphttp.NewFrameHandler(bus)

	app := fiber.New()
	app.Post("/camp-a/api/frames/messages", func(c *fiber.Ctx) error {
		c.Locals(apphttp.LocalTenantID, "camp-a")
		return c.Next()
	}, handler.PostMessage)
	return app
}

func postFrame(t *testing.T, app *fiber.App, origin, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/camp-a/api/frames/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// streamBroadcaster captura el contexto de suscripción y entrega un tema
// antes de cerrar el canal, simulando un stream que termina.
type streamBroadcaster struct {
	subCtx context.Context
}

func (b *streamBroadcaster) BroadcastTheme(context.Context, string, string) error { return nil }

func (b *streamBroadcaster) SubscribeTheme(ctx context.Context, _ string) (<-chan string, error) {
	b.subCtx = ctx
	ch := make(chan string, 1)
	ch <- "dark"
	close(ch)
	return ch, nil
}

// Al terminar el stream de eventos, el contexto de la suscripción queda
// cancelado: sin cancelación explícita, el Done() del RequestCtx de fasthttp
// no cierra hasta apagar el servidor y la suscripción quedaría viva.
func TestEvents_CancelaSuscripcionAlTerminarStream(t *testing.T) {
	tenants := &fakeTenants{known: map[string]*entity.TenantConfig{"camp-a": {ID: "camp-a"}}}
	bc := &streamBroadcaster{}
	bus := frames.NewBus(tenants, nopSinks{}, nopSinks{}, nopSinks{}, bc, nopMetrics{}, true, logger.Nop())
	handler := apphttp.NewFrameHandler(bus)

	app := fiber.New()
	app.Get("/camp-a/api/frames/events", func(c *fiber.Ctx) error {
		c.Locals(apphttp.LocalTenantID, "camp-a")
		return c.Next()
	}, handler.Events)

	req := httptest.NewRequest(http.MethodGet, "/camp-a/api/frames/events", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "event: theme\ndata: dark\n\n")

	require.NotNil(t, bc.subCtx)
	require.Eventually(t, func() bool { return bc.subCtx.Err() != nil },
		time.Second, 10*time.Millisecond,
		"el contexto de la suscripción debe cancelarse al cerrar el stream")
}

// El endpoint responde 202 con un sobre válido de origen permitido.
func TestPostMessage_SobreValido202(t *testing.T) {
	app := buildFrameApp(t)
	resp := postFrame(t, app, "https://insights.ejemplo.com",
		`{"type":"READY","source":"insights"}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

// El descarte es silencioso: origen no permitido y cuerpo basura responden
// exactamente igual que un sobre aceptado.
func TestPostMessage_DescarteSilencioso202(t *testing.T) {
	app := buildFrameApp(t)

	malOrigen := postFrame(t, app, "https://intruso.ejemplo.com",
		`{"type":"READY","source":"insights"}`)
	defer malOrigen.Body.Close()
	assert.Equal(t, http.StatusAccepted, malOrigen.StatusCode)

	basura := postFrame(t, app, "https://insights.ejemplo.com", `no-es-json`)
	defer basura.Body.Close()
	assert.Equal(t, http.StatusAccepted, basura.StatusCode)
}
