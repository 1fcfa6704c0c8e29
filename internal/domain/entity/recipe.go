package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ingredient es un renglón de receta. ProductID es opcional: cuando falta,
// el resolvedor intenta casar Name contra el catálogo de productos.
type Ingredient struct {
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
	ProductID string          `json:"product_id,omitempty"`
}

// Recipe define una preparación: lista de ingredientes calibrada para
// producir YieldBase unidades. El motor de stock la lee, nunca la escribe.
type Recipe struct {
	ID          string
	Name        string
	Description string
	Ingredients []Ingredient

	YieldBase      decimal.Decimal // cantidad que rinden los montos listados; mínimo 1
	FinalProductID string          // producto terminado a ingresar al finalizar (opcional)
	FinalUnit      string

	ProductionTime int64 // duración sugerida en ms, informativo
	Active         bool
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EffectiveYieldBase devuelve YieldBase con piso 1 para evitar división por cero.
func (r *Recipe) EffectiveYieldBase() decimal.Decimal {
	one := decimal.NewFromInt(1)
	if r.YieldBase.LessThan(one) {
		return one
	}
	return r.YieldBase
}
