package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/consola-pro/internal/application/trust"
	apphttp "github.com/tu-usuario/consola-pro/internal/interfaces/http"
)

func buildServiceApp(validator *trust.ServiceValidator) *fiber.App {
	app := fiber.New()
	app.Post("/internal/service/ping",
		apphttp.ServiceAuth(validator),
		apphttp.ServiceTenant(true),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"tenant": apphttp.GetTenantID(c)})
		},
	)
	return app
}

func doServiceRequest(t *testing.T, app *fiber.App, key, tenant string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/internal/service/ping", nil)
	if key != "" {
		req.Header.Set(apphttp.HeaderServiceKey, key)
	}
	if tenant != "" {
		req.Header.Set(apphttp.HeaderTenantID, tenant)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// Clave vigente y tenant válido pasan.
func TestServiceAuth_ClaveVigente(t *testing.T) {
	app := buildServiceApp(trust.NewServiceValidator("clave-actual", ""))
	resp := doServiceRequest(t, app, "clave-actual", "camp-a")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// La clave anterior sigue valiendo durante la ventana de rotación.
func TestServiceAuth_ClaveAnteriorEnRotacion(t *testing.T) {
	app := buildServiceApp(trust.NewServiceValidator("clave-nueva", "clave-vieja"))
	resp := doServiceRequest(t, app, "clave-vieja", "camp-a")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// Clave errónea y clave ausente responden el mismo 401 uniforme.
func TestServiceAuth_ClaveInvalidaYAusente(t *testing.T) {
	app := buildServiceApp(trust.NewServiceValidator("clave-actual", ""))

	mala := doServiceRequest(t, app, "clave-equivocada", "camp-a")
	defer mala.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, mala.StatusCode)

	ausente := doServiceRequest(t, app, "", "camp-a")
	defer ausente.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, ausente.StatusCode)
}

// Sin X-Tenant-ID la ingesta se rechaza con 400.
func TestServiceTenant_SinTenant(t *testing.T) {
	app := buildServiceApp(trust.NewServiceValidator("clave-actual", ""))
	resp := doServiceRequest(t, app, "clave-actual", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// Un tenant sintácticamente inválido también se rechaza.
func TestServiceTenant_TenantInvalido(t *testing.T) {
	app := buildServiceApp(trust.NewServiceValidator("clave-actual", ""))
	resp := doServiceRequest(t, app, "clave-actual", "Camp_A")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
