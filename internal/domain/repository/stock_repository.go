package repository

import (
	"context"

	"github.com/barratec/barra-api/internal/domain/entity"
)

// StockListFilter filtros del listado de stock.
type StockListFilter struct {
	Query   string // texto libre contra nombre/código del producto
	LowOnly bool   // solo registros con disponible < mínimo
	Limit   int
	Offset  int
}

// StockRepository es el puerto de persistencia del libro de stock
// (registro + lotes). Usado dentro de transacciones para el motor de
// movimientos; GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE).
type StockRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Stock, error)
	GetByProduct(ctx context.Context, productID string) (*entity.Stock, error)
	// GetOrCreateForUpdate hace el upsert perezoso del registro y lo bloquea
	// para la transacción en curso.
	GetOrCreateForUpdate(ctx context.Context, productID string) (*entity.Stock, error)
	// Save persiste el registro y reescribe sus lotes.
	Save(ctx context.Context, stock *entity.Stock) error
	List(ctx context.Context, filter StockListFilter) ([]*entity.Stock, int, error)
	Update(ctx context.Context, stock *entity.Stock) error
	// UpdateSettings persiste solo unidad, umbrales y cantidades
	// informativas; disponible, costos y lastMovementAt quedan intactos
	// aunque el snapshot en memoria esté desactualizado.
	UpdateSettings(ctx context.Context, stock *entity.Stock) error
	Delete(ctx context.Context, id string) error
}
