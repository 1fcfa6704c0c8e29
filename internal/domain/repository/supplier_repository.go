package repository

import (
	"context"

	"github.com/barratec/barra-api/internal/domain/entity"
)

// SupplierRepository puerto de persistencia de proveedores.
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	List(ctx context.Context, query string, limit, offset int) ([]*entity.Supplier, int, error)
	Update(ctx context.Context, supplier *entity.Supplier) error
	Deactivate(ctx context.Context, id string) error
}
