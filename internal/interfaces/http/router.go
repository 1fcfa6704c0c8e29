package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/barratec/barra-api/internal/application/auth"
	"github.com/barratec/barra-api/internal/application/inventory"
	"github.com/barratec/barra-api/internal/application/production"
	"github.com/barratec/barra-api/internal/application/report"
	"github.com/barratec/barra-api/internal/application/usecase"
	"github.com/barratec/barra-api/internal/domain/entity"
	"github.com/barratec/barra-api/internal/infrastructure/events"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	ProductUC   *usecase.ProductUseCase
	RecipeUC    *usecase.RecipeUseCase
	SupplierUC  *usecase.SupplierUseCase
	UserUC      *usecase.UserUseCase
	AuditUC     *usecase.AuditUseCase
	StockUC     *inventory.StockUseCase
	ApplyUC     *inventory.ApplyMovementUseCase
	ConsumeUC   *inventory.ConsumeByRecipeUseCase
	ProcessUC   *production.ProcessUseCase
	KardexUC    *report.KardexUseCase
	Broadcaster *events.Broadcaster
	JWTSecret   string
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

	// Productos
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.AuditUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Deactivate)

	// Recetas
	recipes := protected.Group("/recipes")
	recipeHandler := NewRecipeHandler(deps.RecipeUC, deps.AuditUC)
	recipes.Post("/", recipeHandler.Create)
	recipes.Get("/", recipeHandler.List)
	recipes.Get("/:id", recipeHandler.GetByID)
	recipes.Put("/:id", recipeHandler.Update)
	recipes.Delete("/:id", recipeHandler.Deactivate)

	// Proveedores
	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", supplierHandler.Update)
	suppliers.Delete("/:id", supplierHandler.Deactivate)

	// Stock: lecturas, movimientos, lotes, consumo por receta, kardex
	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.StockUC, deps.ApplyUC, deps.ConsumeUC, deps.KardexUC, deps.AuditUC)
	stock.Get("/", stockHandler.List)
	stock.Get("/batches", stockHandler.ListBatches)
	stock.Post("/movements", stockHandler.ApplyMovement)
	stock.Get("/movements", stockHandler.ListMovements)
	stock.Get("/movements/:id", stockHandler.GetMovement)
	stock.Post("/consume-recipe", stockHandler.ConsumeByRecipe)
	stock.Get("/product/:productId", stockHandler.GetByProduct)
	stock.Get("/product/:productId/kardex.pdf", stockHandler.KardexPDF)
	stock.Get("/:id", stockHandler.GetByID)
	stock.Patch("/:id", stockHandler.UpdateSettings)

	// Procesos de producción
	processes := protected.Group("/processes")
	processHandler := NewProcessHandler(deps.ProcessUC, deps.AuditUC)
	processes.Post("/", processHandler.Create)
	processes.Get("/", processHandler.List)
	processes.Get("/:id", processHandler.Get)
	processes.Patch("/:id", processHandler.Patch)
	processes.Delete("/:id", processHandler.Delete)
	processes.Post("/:id/pause", processHandler.Pause)
	processes.Post("/:id/resume", processHandler.Resume)
	processes.Post("/:id/cancel", processHandler.Cancel)
	processes.Post("/:id/finalize", processHandler.Finalize)

	// Eventos en vivo (SSE)
	eventsHandler := NewEventsHandler(deps.Broadcaster)
	protected.Get("/events", eventsHandler.Stream)

	// Administración (solo admin)
	adminHandler := NewAdminHandler(deps.UserUC, deps.AuditUC)
	admin := protected.Group("/", RequireRole(entity.RoleAdmin))
	admin.Post("/users", adminHandler.CreateUser)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Get("/users/:id", adminHandler.GetUser)
	admin.Get("/audit", adminHandler.ListAudit)
}
