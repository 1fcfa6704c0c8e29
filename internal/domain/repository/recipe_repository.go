package repository

import (
	"context"

	"github.com/barratec/barra-api/internal/domain/entity"
)

// RecipeRepository puerto de persistencia de recetas (solo lectura para el
// motor de stock; CRUD para la administración).
type RecipeRepository interface {
	Create(ctx context.Context, recipe *entity.Recipe) error
	GetByID(ctx context.Context, id string) (*entity.Recipe, error)
	GetByName(ctx context.Context, name string) (*entity.Recipe, error)
	ListActive(ctx context.Context) ([]*entity.Recipe, error)
	Update(ctx context.Context, recipe *entity.Recipe) error
	Deactivate(ctx context.Context, id string) error
}
