package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tu-usuario/consola-pro/internal/application/activity"
	"github.com/tu-usuario/consola-pro/internal/application/auth"
	"github.com/tu-usuario/consola-pro/internal/application/embed"
	"github.com/tu-usuario/consola-pro/internal/application/frames"
	"github.com/tu-usuario/consola-pro/internal/application/inbox"
	"github.com/tu-usuario/consola-pro/internal/application/kpi"
	"github.com/tu-usuario/consola-pro/internal/application/tenantcfg"
	"github.com/tu-usuario/consola-pro/internal/domain/authz"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Tenants     *tenantcfg.Store
	Matrix      *authz.Matrix
	AuthUC      *auth.SessionIssuer
	Inbox       *inbox.Inbox
	Activity    *activity.Log
	Kpis        *kpi.Cache
	Embed       *embed.TokenIssuer
	Bus         *frames.Bus
	Provisioner Provisioner
	ServiceKeys serviceKeyValidator
	JWTSecret   string
	Production  bool
}

// Router registra las rutas de la consola.
func Router(app *fiber.App, deps RouterDeps) {
	authHandler := NewAuthHandler(deps.AuthUC, deps.Matrix, deps.Production)
	alertHandler := NewAlertHandler(deps.Inbox)
	activityHandler := NewActivityHandler(deps.Activity)
	kpiHandler := NewKpiHandler(deps.Kpis)
	embedHandler := NewEmbedHandler(deps.Embed)
	frameHandler := NewFrameHandler(deps.Bus)
	adminHandler := NewAdminHandler(deps.Provisioner)
	serviceHandler := NewServiceHandler(deps.Activity, deps.Inbox, deps.Kpis, deps.Tenants)

	// Público. Estas rutas son también los segmentos reservados que el
	// resolver de tenant deja pasar.
	app.Get("/", RootRedirect(deps.JWTSecret))
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/login", loginPage)
	app.Get("/legal/terms", legalTerms)
	app.Get("/legal/privacy", legalPrivacy)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", authHandler.Logout)

	// Interno servicio-a-servicio: secreto compartido, sin sesión.
	service := app.Group("/internal/service", ServiceAuth(deps.ServiceKeys))
	service.Post("/tenants/:id/invalidate", serviceHandler.InvalidateTenant)
	service.Post("/tenants/invalidate-all", serviceHandler.InvalidateAllTenants)

	ingestTenant := ServiceTenant(deps.Production)
	service.Post("/activity", ingestTenant, serviceHandler.RecordActivity)
	service.Post("/alerts", ingestTenant, serviceHandler.CreateAlert)
	service.Post("/kpis", ingestTenant, serviceHandler.UpsertKpi)
	service.Post("/kpis/purge", ingestTenant, serviceHandler.PurgeKpis)

	// Con alcance de tenant: resolución + sesión + permiso por ruta.
	tenant := app.Group("/:tenant", TenantResolver(deps.Tenants, deps.JWTSecret, deps.Production))
	api := tenant.Group("/api", AuthMiddleware(deps.JWTSecret))

	api.Get("/alerts", RequirePermission(deps.Matrix, authz.EntityAlerts, authz.ActionRead), alertHandler.List)
	api.Post("/alerts/:id/read", RequirePermission(deps.Matrix, authz.EntityAlerts, authz.ActionRead), alertHandler.MarkRead)
	api.Get("/activity", RequirePermission(deps.Matrix, authz.EntityCampaigns, authz.ActionRead), activityHandler.List)
	api.Get("/kpis", RequirePermission(deps.Matrix, authz.EntityKpis, authz.ActionRead), kpiHandler.List)
	api.Get("/permissions", authHandler.Permissions)
	api.Post("/frames/messages", frameHandler.PostMessage)
	api.Get("/frames/events", frameHandler.Events)
	api.Post("/theme", frameHandler.PostTheme)
	api.Get("/embed/:partner", embedHandler.GetEmbedURL)

	admin := api.Group("/admin", RequirePermission(deps.Matrix, authz.EntityTenants, authz.ActionUpdate))
	admin.Get("/provision", adminHandler.ProvisionState)
	admin.Post("/provision/retry", adminHandler.RetryProvision)
}

// Páginas públicas estáticas mínimas: la consola real las renderiza aparte,
// aquí solo existen como destinos de las redirecciones.

func loginPage(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString("<!doctype html><title>Consola</title><h1>Iniciar sesión</h1>")
}

func legalTerms(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString("<!doctype html><title>Términos</title><h1>Términos de servicio</h1>")
}

func legalPrivacy(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString("<!doctype html><title>Privacidad</title><h1>Política de privacidad</h1>")
}
