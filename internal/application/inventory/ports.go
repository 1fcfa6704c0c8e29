package inventory

import (
	"context"

	"github.com/barratec/barra-api/internal/domain/entity"
	"github.com/barratec/barra-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de stock;
// una transacción abortada no deja efecto parcial alguno.
type TxRunner interface {
	// Run alcance movimiento: un producto, su registro de stock y sus asientos.
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
	) error) error

	// RunProduction alcance producción: la frontera transaccional más ancha
	// del sistema (proceso + todos los insumos + producto final).
	RunProduction(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		recipeRepo repository.RecipeRepository,
		processRepo repository.ProductionProcessRepository,
	) error) error
}

// Notifier publica los eventos lógicos del core. La emisión es fire-and-forget:
// nadie garantiza que haya oyentes y una falla de emisión nunca es fatal.
type Notifier interface {
	StockChanged(productID, reason string)
	MovementCreated(productID string, movement *entity.StockMovement)
	ProcessChanged(process *entity.ProductionProcess)
}

// NopNotifier descarta todos los eventos.
type NopNotifier struct{}

func (NopNotifier) StockChanged(string, string)                   {}
func (NopNotifier) MovementCreated(string, *entity.StockMovement) {}
func (NopNotifier) ProcessChanged(*entity.ProductionProcess)      {}
