package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplyMovementRequest entrada para registrar un movimiento de stock.
// Quantity lleva el signo: positivo entra, negativo sale.
type ApplyMovementRequest struct {
	ProductID     string           `json:"product_id" validate:"required"`
	Type          string           `json:"type" validate:"required,oneof=purchase sale production adjustment waste return_in return_out"`
	Quantity      decimal.Decimal  `json:"quantity" validate:"required"`
	Unit          string           `json:"unit"`
	UnitCost      *decimal.Decimal `json:"unit_cost"`
	BatchCode     string           `json:"batch_code"`
	ExpiryDate    *time.Time       `json:"expiry_date"`
	ReferenceType string           `json:"reference_type"`
	ReferenceID   string           `json:"reference_id"`
	Notes         string           `json:"notes"`
	CapToStock    bool             `json:"cap_to_stock"`
	AllowNegative bool             `json:"allow_negative"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID            string           `json:"id"`
	ProductID     string           `json:"product_id"`
	StockID       string           `json:"stock_id"`
	Type          string           `json:"type"`
	Quantity      decimal.Decimal  `json:"quantity"`
	Unit          string           `json:"unit"`
	BatchCode     string           `json:"batch_code,omitempty"`
	ExpiryDate    *time.Time       `json:"expiry_date,omitempty"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceType string           `json:"reference_type,omitempty"`
	ReferenceID   string           `json:"reference_id,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	ActorID       string           `json:"actor_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ApplyMovementResponse salida de la aplicación de un movimiento.
type ApplyMovementResponse struct {
	Applied   decimal.Decimal    `json:"applied"`
	Stock     StockResponse      `json:"stock"`
	Movements []MovementResponse `json:"movements"`
}

// BatchResponse un lote dentro de un stock.
type BatchResponse struct {
	Code            string           `json:"code"`
	ExpiryDate      *time.Time       `json:"expiry_date,omitempty"`
	Quantity        decimal.Decimal  `json:"quantity"`
	InitialQuantity decimal.Decimal  `json:"initial_quantity"`
	Drawn           decimal.Decimal  `json:"drawn"`
	UnitCost        decimal.Decimal  `json:"unit_cost"`
	Origin          string           `json:"origin,omitempty"`
	ReferenceType   string           `json:"reference_type,omitempty"`
	ReferenceID     string           `json:"reference_id,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// StockResponse salida del stock de un producto.
type StockResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name,omitempty"`
	ProductCode    string          `json:"product_code,omitempty"`
	Barcode        string          `json:"barcode,omitempty"`
	Unit           string          `json:"unit"`
	Available      decimal.Decimal `json:"available"`
	Reserved       decimal.Decimal `json:"reserved"`
	Committed      decimal.Decimal `json:"committed"`
	MinThreshold   decimal.Decimal `json:"min_threshold"`
	IdealThreshold decimal.Decimal `json:"ideal_threshold"`
	MaxThreshold   decimal.Decimal `json:"max_threshold"`
	AverageCost    decimal.Decimal `json:"average_cost"`
	LastUnitCost   decimal.Decimal `json:"last_unit_cost"`
	Batches        []BatchResponse `json:"batches"`
	BelowMinimum   bool            `json:"below_minimum"`
	LastMovementAt *time.Time      `json:"last_movement_at,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// BatchListItemResponse un lote aplanado con su producto, para el listado
// transversal de lotes.
type BatchListItemResponse struct {
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ProductCode     string          `json:"product_code,omitempty"`
	Code            string          `json:"code"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	InitialQuantity decimal.Decimal `json:"initial_quantity"`
	Drawn           decimal.Decimal `json:"drawn"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	Origin          string          `json:"origin,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// StockListResponse lista paginada de stocks.
type StockListResponse struct {
	Items []StockResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// MovementListResponse lista de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
}

// UpdateStockSettingsRequest umbrales y reservas; nunca toca Available,
// lotes ni costos (eso va por movimientos).
type UpdateStockSettingsRequest struct {
	Unit           *string          `json:"unit"`
	MinThreshold   *decimal.Decimal `json:"min_threshold"`
	IdealThreshold *decimal.Decimal `json:"ideal_threshold"`
	MaxThreshold   *decimal.Decimal `json:"max_threshold"`
	Reserved       *decimal.Decimal `json:"reserved"`
	Committed      *decimal.Decimal `json:"committed"`
}

// ConsumeByRecipeRequest entrada para descontar insumos según receta.
type ConsumeByRecipeRequest struct {
	RecipeID      string          `json:"recipe_id" validate:"required"`
	Quantity      decimal.Decimal `json:"quantity"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
}

// ConsumedItemResponse un insumo descontado.
type ConsumedItemResponse struct {
	ProductID  string          `json:"product_id"`
	Name       string          `json:"name"`
	Delta      decimal.Decimal `json:"delta"`
	Unit       string          `json:"unit"`
	Available  decimal.Decimal `json:"available"`
	MovementID string          `json:"movement_id,omitempty"`
}

// ConsumeByRecipeResponse resultado del descuento por receta.
type ConsumeByRecipeResponse struct {
	RecipeID   string                 `json:"recipe_id"`
	RecipeName string                 `json:"recipe_name"`
	Quantity   decimal.Decimal        `json:"quantity"`
	YieldBase  decimal.Decimal        `json:"yield_base"`
	Affected   []ConsumedItemResponse `json:"affected"`
	Unmatched  []string               `json:"unmatched,omitempty"`
}
