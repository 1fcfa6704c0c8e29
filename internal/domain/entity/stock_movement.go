package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementTypePurchase   = "purchase"
	MovementTypeSale       = "sale"
	MovementTypeProduction = "production"
	MovementTypeAdjustment = "adjustment"
	MovementTypeWaste      = "waste"
	MovementTypeReturnIn   = "return_in"
	MovementTypeReturnOut  = "return_out"
)

// ValidMovementType verifica que el tipo pertenezca al enum.
func ValidMovementType(t string) bool {
	switch t {
	case MovementTypePurchase, MovementTypeSale, MovementTypeProduction,
		MovementTypeAdjustment, MovementTypeWaste, MovementTypeReturnIn, MovementTypeReturnOut:
		return true
	}
	return false
}

// StockMovement es un asiento inmutable del libro de stock: un cambio de
// cantidad con signo (+ entra / - sale) contra el registro de un producto.
// Nunca se modifica después de creado.
type StockMovement struct {
	ID        string
	ProductID string
	StockID   string

	Type     string
	Quantity decimal.Decimal // con signo; cero es inválido
	Unit     string

	BatchCode  string
	ExpiryDate *time.Time

	UnitCost *decimal.Decimal // solo significativo en entradas

	ReferenceType string // ej. 'ProductionProcess'
	ReferenceID   string

	Notes     string
	ActorID   string
	CreatedAt time.Time
}

// Inbound indica si el movimiento suma stock.
func (m *StockMovement) Inbound() bool { return m.Quantity.IsPositive() }
