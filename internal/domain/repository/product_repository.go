package repository

import (
	"context"

	"github.com/barratec/barra-api/internal/domain/entity"
)

// ProductRepository puerto de persistencia de productos.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// ListActive devuelve el catálogo activo completo (para el matcher de recetas).
	ListActive(ctx context.Context) ([]*entity.Product, error)
	List(ctx context.Context, query string, limit, offset int) ([]*entity.Product, int, error)
	Update(ctx context.Context, product *entity.Product) error
	// Deactivate baja lógica.
	Deactivate(ctx context.Context, id string) error
}
