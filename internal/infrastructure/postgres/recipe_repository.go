package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/barratec/barra-api/internal/domain"
	"github.com/barratec/barra-api/internal/domain/entity"
	"github.com/barratec/barra-api/internal/domain/repository"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo implementación de RecipeRepository sobre PostgreSQL.
// Los ingredientes viven en una columna JSONB: la receta se lee y escribe
// siempre completa y el motor nunca consulta ingredientes sueltos.
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

const recipeColumns = `
	id, name, description, ingredients, yield_base, final_product_id,
	final_unit, production_time_ms, active, created_by, created_at, updated_at`

// Create inserta una receta.
func (r *RecipeRepo) Create(ctx context.Context, recipe *entity.Recipe) error {
	ingredients, err := json.Marshal(recipe.Ingredients)
	if err != nil {
		return fmt.Errorf("serializar ingredientes: %w", err)
	}
	query := `
		INSERT INTO recipes (` + recipeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = r.q.Exec(ctx, query,
		recipe.ID, recipe.Name, recipe.Description, ingredients, recipe.YieldBase,
		nullIfEmpty(recipe.FinalProductID), recipe.FinalUnit, recipe.ProductionTime,
		recipe.Active, recipe.CreatedBy, recipe.CreatedAt, recipe.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insertar receta: %w", err)
	}
	return nil
}

// GetByID obtiene una receta por id. Devuelve nil si no existe.
func (r *RecipeRepo) GetByID(ctx context.Context, id string) (*entity.Recipe, error) {
	query := `SELECT` + recipeColumns + ` FROM recipes WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByName obtiene una receta por nombre exacto. Devuelve nil si no existe.
func (r *RecipeRepo) GetByName(ctx context.Context, name string) (*entity.Recipe, error) {
	query := `SELECT` + recipeColumns + ` FROM recipes WHERE name = $1`
	return r.getOne(ctx, query, name)
}

// ListActive lista las recetas activas ordenadas por nombre.
func (r *RecipeRepo) ListActive(ctx context.Context) ([]*entity.Recipe, error) {
	query := `SELECT` + recipeColumns + ` FROM recipes WHERE active ORDER BY name ASC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listar recetas: %w", err)
	}
	defer rows.Close()

	var result []*entity.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, recipe)
	}
	return result, rows.Err()
}

// Update actualiza una receta (reescribe los ingredientes completos).
func (r *RecipeRepo) Update(ctx context.Context, recipe *entity.Recipe) error {
	ingredients, err := json.Marshal(recipe.Ingredients)
	if err != nil {
		return fmt.Errorf("serializar ingredientes: %w", err)
	}
	query := `
		UPDATE recipes SET
			name = $2, description = $3, ingredients = $4, yield_base = $5,
			final_product_id = $6, final_unit = $7, production_time_ms = $8,
			active = $9, updated_at = $10
		WHERE id = $1`
	_, err = r.q.Exec(ctx, query,
		recipe.ID, recipe.Name, recipe.Description, ingredients, recipe.YieldBase,
		nullIfEmpty(recipe.FinalProductID), recipe.FinalUnit, recipe.ProductionTime,
		recipe.Active, recipe.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update receta: %w", err)
	}
	return nil
}

// Deactivate baja lógica.
func (r *RecipeRepo) Deactivate(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE recipes SET active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("desactivar receta: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RecipeRepo) getOne(ctx context.Context, query string, arg any) (*entity.Recipe, error) {
	recipe, err := scanRecipe(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return recipe, nil
}

func scanRecipe(row pgx.Row) (*entity.Recipe, error) {
	var recipe entity.Recipe
	var ingredients []byte
	var finalProductID *string
	err := row.Scan(
		&recipe.ID, &recipe.Name, &recipe.Description, &ingredients, &recipe.YieldBase,
		&finalProductID, &recipe.FinalUnit, &recipe.ProductionTime,
		&recipe.Active, &recipe.CreatedBy, &recipe.CreatedAt, &recipe.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan receta: %w", err)
	}
	if len(ingredients) > 0 {
		if err := json.Unmarshal(ingredients, &recipe.Ingredients); err != nil {
			return nil, fmt.Errorf("deserializar ingredientes: %w", err)
		}
	}
	if finalProductID != nil {
		recipe.FinalProductID = *finalProductID
	}
	return &recipe, nil
}
