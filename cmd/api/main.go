package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/barratec/barra-api/internal/application/auth"
	"github.com/barratec/barra-api/internal/application/inventory"
	"github.com/barratec/barra-api/internal/application/production"
	"github.com/barratec/barra-api/internal/application/report"
	"github.com/barratec/barra-api/internal/application/usecase"
	"github.com/barratec/barra-api/internal/infrastructure/events"
	infrapdf "github.com/barratec/barra-api/internal/infrastructure/pdf"
	"github.com/barratec/barra-api/internal/infrastructure/postgres"
	httpRouter "github.com/barratec/barra-api/internal/interfaces/http"
	"github.com/barratec/barra-api/pkg/config"
	"github.com/barratec/barra-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	recipeRepo := postgres.NewRecipeRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	movRepo := postgres.NewStockMovementRepository(pool)
	processRepo := postgres.NewProductionProcessRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	broadcaster := events.NewBroadcaster(0, log.Zerolog())
	defer broadcaster.Close()

	applyUC := inventory.NewApplyMovementUseCase(txRunner, broadcaster)
	consumeUC := inventory.NewConsumeByRecipeUseCase(txRunner, applyUC, broadcaster)
	stockUC := inventory.NewStockUseCase(stockRepo, productRepo, movRepo)
	processUC := production.NewProcessUseCase(txRunner, processRepo, recipeRepo, applyUC, consumeUC, broadcaster, nil)

	productUC := usecase.NewProductUseCase(productRepo)
	recipeUC := usecase.NewRecipeUseCase(recipeRepo)
	supplierUC := usecase.NewSupplierUseCase(supplierRepo)
	userUC := usecase.NewUserUseCase(userRepo)
	auditUC := usecase.NewAuditUseCase(auditRepo, log.Zerolog())

	kardexGenerator := infrapdf.NewMarotoKardexGenerator()
	kardexUC := report.NewKardexUseCase(productRepo, stockRepo, movRepo, kardexGenerator)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
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

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Barra API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		ProductUC:   productUC,
		RecipeUC:    recipeUC,
		SupplierUC:  supplierUC,
		UserUC:      userUC,
		AuditUC:     auditUC,
		StockUC:     stockUC,
		ApplyUC:     applyUC,
		ConsumeUC:   consumeUC,
		ProcessUC:   processUC,
		KardexUC:    kardexUC,
		Broadcaster: broadcaster,
		JWTSecret:   cfg.JWT.Secret,
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
