package main

//go:generate go tool swag init -g cmd/api/main.go -d ../.. -o ../../docs --outputTypes json

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/fiskal-api/internal/application/auth"
	"github.com/jhoicas/fiskal-api/internal/application/fiskalizacija"
	infrapdf "github.com/jhoicas/fiskal-api/internal/infrastructure/pdf"
	"github.com/jhoicas/fiskal-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/fiskal-api/internal/interfaces/http"
	"github.com/jhoicas/fiskal-api/pkg/config"
	"github.com/jhoicas/fiskal-api/pkg/logger"
)

// @title                       Fiskal API
// @version                     1.0
// @description                 Fiscalización de facturas ante el CIS de la Porezna uprava.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("fisk_env", cfg.Fisk.Env).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	session, err := fiskalizacija.NewSessionFromConfig(cfg.Fisk, log.Zerolog(), fiskalizacija.NewMetrics(reg))
	if err != nil {
		log.Fatal().Err(err).Msg("sesión CIS")
	}

	fiskRepo := postgres.NewFiskalizacijaRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	fiskSvc := fiskalizacija.NewService(session, fiskRepo, txRunner, infrapdf.NewReceiptGenerator(), fiskalizacija.ServiceConfig{
		OibOper:          cfg.Fisk.OibOper,
		SpecNamj:         cfg.Fisk.SpecNamj,
		BatchConcurrency: cfg.Fisk.BatchConcurrency,
	})

	authUC := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 60, // los lotes esperan al CIS
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Fiskal API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "cis": fiskSvc.Env()})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Fisk:      fiskSvc,
		Auth:      authUC,
		JWTSecret: cfg.JWT.Secret,
		Metrics:   httpRouter.NewHTTPMetrics(reg),
		Gatherer:  reg,
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
