package repository

import (
	"context"

	"github.com/barratec/barra-api/internal/domain/entity"
)

// ProcessListFilter filtros del listado de procesos.
type ProcessListFilter struct {
	OwnerID         string // vacío = todos (admin)
	ExcludeFinished bool
}

// ProductionProcessRepository puerto de persistencia de procesos de producción.
type ProductionProcessRepository interface {
	Create(ctx context.Context, process *entity.ProductionProcess) error
	GetByID(ctx context.Context, id string) (*entity.ProductionProcess, error)
	// GetForUpdate bloquea la fila del proceso dentro de la transacción en curso.
	GetForUpdate(ctx context.Context, id string) (*entity.ProductionProcess, error)
	Update(ctx context.Context, process *entity.ProductionProcess) error
	List(ctx context.Context, filter ProcessListFilter) ([]*entity.ProductionProcess, error)
	Delete(ctx context.Context, id string) error
}
