package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Fisk      FiskService
	Auth      AuthService
	JWTSecret string
	// Metrics y Gatherer son opcionales; sin ellos no se expone /metrics.
	Metrics  *HTTPMetrics
	Gatherer prometheus.Gatherer
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
	}
	if deps.Gatherer != nil {
		app.Get("/metrics", MetricsHandler(deps.Gatherer))
	}

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.Auth)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Usuarios del emisor: solo admin
	users := protected.Group("/users", RequireRole(RoleAdmin))
	users.Post("/", authHandler.Register)
	users.Get("/", authHandler.ListUsers)

	fisk := protected.Group("/fisk")
	h := NewFiskHandler(deps.Fisk)
	fisk.Post("/echo", h.Echo)

	// Locales: solo admin
	fisk.Post("/poslovni-prostori", RequireRole(RoleAdmin), h.RegistrirajPoslovniProstor)

	// Facturas
	racuni := fisk.Group("/racuni", RequireRole(RoleAdmin, RoleBlagajnik))
	racuni.Post("/", h.FiskalizirajRacun)
	racuni.Post("/batch", h.FiskalizirajBatch)
	racuni.Post("/provjera", h.ProvjeriRacun)
	racuni.Get("/", h.List)
	racuni.Get("/naknadno", h.Pending)
	racuni.Get("/:id", h.GetByID)
	racuni.Get("/:id/pdf", h.ReceiptPDF)
}
