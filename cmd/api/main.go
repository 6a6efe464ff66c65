package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	goredis "github.com/redis/go-redis/v9"

	"github.com/tu-usuario/consola-pro/internal/application/activity"
	"github.com/tu-usuario/consola-pro/internal/application/auth"
	"github.com/tu-usuario/consola-pro/internal/application/embed"
	"github.com/tu-usuario/consola-pro/internal/application/frames"
	"github.com/tu-usuario/consola-pro/internal/application/inbox"
	"github.com/tu-usuario/consola-pro/internal/application/kpi"
	"github.com/tu-usuario/consola-pro/internal/application/tenantcfg"
	"github.com/tu-usuario/consola-pro/internal/application/trust"
	"github.com/tu-usuario/consola-pro/internal/domain/authz"
	"github.com/tu-usuario/consola-pro/internal/infrastructure/metrics"
	"github.com/tu-usuario/consola-pro/internal/infrastructure/postgres"
	infraredis "github.com/tu-usuario/consola-pro/internal/infrastructure/redis"
	httpRouter "github.com/tu-usuario/consola-pro/internal/interfaces/http"
	"github.com/tu-usuario/consola-pro/pkg/config"
	"github.com/tu-usuario/consola-pro/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando consola")

	production := cfg.App.Production()

	ctx := context.Background()
	controlPool, err := postgres.NewControlPool(ctx, cfg.DB.ConnectionString(), int32(cfg.Tenants.MaxConns))
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL de control")
	}
	defer controlPool.Close()

	if err := postgres.EnsureControlSchema(ctx, controlPool); err != nil {
		log.Fatal().Err(err).Msg("esquema de control")
	}

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	consoleMetrics := metrics.New()

	// Configuración de tenants: definiciones declarativas en disco con
	// caché TTL en memoria.
	tenantSource := tenantcfg.NewFileSource(cfg.Tenants.Dir)
	tenantStore := tenantcfg.NewStore(tenantSource,
		time.Duration(cfg.Tenants.ConfigTTLMinutes)*time.Minute, production, log)
	defer tenantStore.Close()

	router := postgres.NewRouter(controlPool, tenantStore,
		&postgres.FallbackResolver{Password: cfg.Tenants.FallbackPassword},
		consoleMetrics,
		postgres.RouterConfig{
			SharedStore: cfg.Tenants.SharedStore,
			MaxConns:    int32(cfg.Tenants.MaxConns),
		}, log)
	defer router.DisconnectAll()

	// Identidades y membresías viven en la base de control; el resto de
	// almacenes se enruta por tenant.
	userRepo := postgres.NewUserRepository(controlPool)
	membershipRepo := postgres.NewMembershipRepository(controlPool)
	alertRepo := postgres.NewAlertRepository(router)
	kpiRepo := postgres.NewKpiRepository(router)
	activityRepo := postgres.NewActivityRepository(router)
	txRunner := postgres.NewTxRunner(router)

	readCache := infraredis.NewReadCache(redisClient, consoleMetrics)
	broadcaster := infraredis.NewThemeBroadcaster(redisClient, log)

	matrix := authz.New()
	authUC := auth.NewSessionIssuer(userRepo, membershipRepo, auth.JWTConfig{
		Secret:   cfg.JWT.Secret,
		ExpHours: cfg.JWT.ExpHours,
		Issuer:   cfg.JWT.Issuer,
	}, log)
	inboxUC := inbox.New(txRunner, alertRepo, membershipRepo, readCache, log)
	activityUC := activity.New(activityRepo, readCache, log)
	kpiUC := kpi.New(kpiRepo)
	embedUC := embed.NewTokenIssuer(embed.Config{
		Secret:     cfg.Embed.Secret,
		ExpMinutes: cfg.Embed.ExpMinutes,
		Issuer:     cfg.JWT.Issuer,
	}, tenantStore)
	bus := frames.NewBus(tenantStore, activityUC, inboxUC, kpiUC, broadcaster,
		consoleMetrics, production, log)
	serviceKeys := trust.NewServiceValidator(cfg.Service.Key, cfg.Service.PreviousKey)

	// Sin WriteTimeout: /frames/events mantiene streams abiertos.
	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		ReadTimeout: time.Second * 10,
		IdleTimeout: time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		Tenants:     tenantStore,
		Matrix:      matrix,
		AuthUC:      authUC,
		Inbox:       inboxUC,
		Activity:    activityUC,
		Kpis:        kpiUC,
		Embed:       embedUC,
		Bus:         bus,
		Provisioner: router,
		ServiceKeys: serviceKeys,
		JWTSecret:   cfg.JWT.Secret,
		Production:  production,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("consola detenida")
}
