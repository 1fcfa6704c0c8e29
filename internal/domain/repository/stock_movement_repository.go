package repository

import (
	"context"

	"github.com/barratec/barra-api/internal/domain/entity"
)

// MovementListFilter filtros del listado de movimientos.
type MovementListFilter struct {
	ProductID     string
	Type          string
	ReferenceType string
	ReferenceID   string
	Limit         int
}

// StockMovementRepository es el puerto del historial append-only de
// movimientos. Los asientos nunca se modifican después de creados.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	List(ctx context.Context, filter MovementListFilter) ([]*entity.StockMovement, error)
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error)
	// ExistsByReference sostiene la idempotencia de finalize: true si algún
	// movimiento ya referencia ese evento de negocio.
	ExistsByReference(ctx context.Context, referenceType, referenceID string) (bool, error)
}
