package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// IngredientDTO un insumo dentro de una receta.
type IngredientDTO struct {
	Name      string          `json:"name" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
	Unit      string          `json:"unit"`
	ProductID string          `json:"product_id,omitempty"`
}

// CreateRecipeRequest entrada para crear una receta.
type CreateRecipeRequest struct {
	Name           string          `json:"name" validate:"required,min=1,max=200"`
	Description    string          `json:"description"`
	Ingredients    []IngredientDTO `json:"ingredients" validate:"required,min=1"`
	YieldBase      decimal.Decimal `json:"yield_base"`
	FinalProductID string          `json:"final_product_id"`
	FinalUnit      string          `json:"final_unit"`
	ProductionTime int64           `json:"production_time_ms"`
}

// UpdateRecipeRequest entrada para actualizar una receta.
type UpdateRecipeRequest struct {
	Name           *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description    *string          `json:"description"`
	Ingredients    []IngredientDTO  `json:"ingredients"`
	YieldBase      *decimal.Decimal `json:"yield_base"`
	FinalProductID *string          `json:"final_product_id"`
	FinalUnit      *string          `json:"final_unit"`
	ProductionTime *int64           `json:"production_time_ms"`
	Active         *bool            `json:"active"`
}

// RecipeResponse salida de una receta.
type RecipeResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Ingredients    []IngredientDTO `json:"ingredients"`
	YieldBase      decimal.Decimal `json:"yield_base"`
	FinalProductID string          `json:"final_product_id,omitempty"`
	FinalUnit      string          `json:"final_unit,omitempty"`
	ProductionTime int64           `json:"production_time_ms"`
	Active         bool            `json:"active"`
	CreatedBy      string          `json:"created_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// RecipeListResponse lista de recetas.
type RecipeListResponse struct {
	Items []RecipeResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
