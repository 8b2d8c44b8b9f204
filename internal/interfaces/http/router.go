package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/facturador-afip/internal/application/auth"
	"github.com/tu-usuario/facturador-afip/internal/application/billing"
	appempresa "github.com/tu-usuario/facturador-afip/internal/application/empresa"
	"github.com/tu-usuario/facturador-afip/internal/domain/entity"
	"github.com/tu-usuario/facturador-afip/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC          *auth.AuthUseCase
	EmpresaUC       *appempresa.EmpresaUseCase
	Emitir          *billing.EmitirFacturaUseCase
	Lote            *billing.ProcesadorLote
	EmpresaRepo     repository.EmpresaRepository
	ComprobanteRepo repository.ComprobanteRepository
	JWTSecret       string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Empresas (protegido; altas y cambios solo admin)
	empresas := protected.Group("/empresas")
	empresaHandler := NewEmpresaHandler(deps.EmpresaUC)
	empresas.Get("/", empresaHandler.List)
	empresas.Get("/:id", empresaHandler.GetByID)
	empresas.Post("/", RequireRole(entity.RoleAdmin), empresaHandler.Create)
	empresas.Put("/:id", RequireRole(entity.RoleAdmin), empresaHandler.Update)

	// Facturación (protegido)
	facturas := protected.Group("/facturas")
	facturaHandler := NewFacturaHandler(deps.Emitir, deps.Lote, deps.EmpresaRepo, deps.ComprobanteRepo)
	facturas.Post("/", facturaHandler.Emitir)
	facturas.Post("/lote", facturaHandler.Lote)
	facturas.Get("/", facturaHandler.List)
	facturas.Get("/:id", facturaHandler.GetByID)
}
