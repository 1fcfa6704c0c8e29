package dto

import (
	"time"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=200"`
	Description  string `json:"description"`
	Code         string `json:"code"`
	Barcode      string `json:"barcode"`
	Unit         string `json:"unit" validate:"required"`
	IsElaborated bool   `json:"is_elaborated"`
	BaseRecipeID string `json:"base_recipe_id"`
}

// UpdateProductRequest entrada para actualizar un producto.
type UpdateProductRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description  *string `json:"description"`
	Code         *string `json:"code"`
	Barcode      *string `json:"barcode"`
	Unit         *string `json:"unit"`
	IsElaborated *bool   `json:"is_elaborated"`
	BaseRecipeID *string `json:"base_recipe_id"`
	Active       *bool   `json:"active"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Code         string    `json:"code"`
	Barcode      string    `json:"barcode"`
	Unit         string    `json:"unit"`
	IsElaborated bool      `json:"is_elaborated"`
	BaseRecipeID string    `json:"base_recipe_id,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
