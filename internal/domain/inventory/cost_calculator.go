package inventory

import "github.com/shopspring/decimal"

// costPrecision decimales a los que se redondea el costo promedio.
const costPrecision = 6

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockPrevio * CostoPrevio) + (CantEntrada * CostoEntrada)) / (StockPrevio + CantEntrada)
// Si el stock previo es negativo se toma como cero; si el denominador no es
// positivo se devuelve el costo de la entrada.
func CostCalculator(prevQty, prevCost, inQty, inCost decimal.Decimal) decimal.Decimal {
	if prevQty.IsNegative() {
		prevQty = decimal.Zero
	}
	sum := prevQty.Add(inQty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return inCost.Round(costPrecision)
	}
	num := prevQty.Mul(prevCost).Add(inQty.Mul(inCost))
	return num.Div(sum).Round(costPrecision)
}
