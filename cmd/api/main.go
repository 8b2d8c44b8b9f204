package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tu-usuario/facturador-afip/internal/application/auth"
	"github.com/tu-usuario/facturador-afip/internal/application/billing"
	appempresa "github.com/tu-usuario/facturador-afip/internal/application/empresa"
	infraafip "github.com/tu-usuario/facturador-afip/internal/infrastructure/afip"
	"github.com/tu-usuario/facturador-afip/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/facturador-afip/internal/interfaces/http"
	"github.com/tu-usuario/facturador-afip/pkg/config"
	"github.com/tu-usuario/facturador-afip/pkg/logger"
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
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	credencialRepo := postgres.NewCredencialRepository(pool)
	empresaRepo := postgres.NewEmpresaRepository(pool)
	comprobanteRepo := postgres.NewComprobanteRepository(pool)
	usuarioRepo := postgres.NewUsuarioRepository(pool)

	// Resolución de credenciales: almacén dedicado -> empresa -> vault -> entorno.
	var vault billing.VaultCredenciales
	if cfg.AFIP.VaultDir != "" {
		vault = infraafip.NewVaultLocal(cfg.AFIP.VaultDir)
	}
	entorno := billing.CredencialEntorno{
		Habilitada:   cfg.AFIP.EnvFallback,
		CUIT:         cfg.AFIP.EnvCUIT,
		CertPEM:      cfg.AFIP.EnvCertPEM,
		ClavePrivada: cfg.AFIP.EnvKeyPEM,
	}
	resolver := billing.NewResolverCredenciales(credencialRepo, empresaRepo, vault, entorno, log)

	cliente := infraafip.NewClienteMicroservicio(
		cfg.AFIP.MicroserviceURL,
		time.Duration(cfg.AFIP.TimeoutSeconds)*time.Second,
		log,
	)

	politica := billing.PoliticaResolucion{Estricta: cfg.AFIP.StrictMode}
	emitirUC := billing.NewEmitirFacturaUseCase(resolver, cliente, comprobanteRepo, politica, cfg.AFIP.PuntoVenta, log)
	loteUC := billing.NewProcesadorLote(emitirUC, cfg.AFIP.LoteWorkers, cfg.AFIP.LoteReintentos, log)

	empresaUC := appempresa.NewEmpresaUseCase(empresaRepo)
	authUC := auth.NewAuthUseCase(usuarioRepo, empresaRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:          authUC,
		EmpresaUC:       empresaUC,
		Emitir:          emitirUC,
		Lote:            loteUC,
		EmpresaRepo:     empresaRepo,
		ComprobanteRepo: comprobanteRepo,
		JWTSecret:       cfg.JWT.Secret,
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

	log.Info().Msg("aplicación detenida")
}
