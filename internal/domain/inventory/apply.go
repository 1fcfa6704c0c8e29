package inventory

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/barratec/barra-api/internal/domain"
	"github.com/barratec/barra-api/internal/domain/entity"
)

// quantityPrecision decimales de las cantidades aplicadas.
const quantityPrecision = 6

// MovementInput describe un movimiento solicitado contra el stock de un producto.
type MovementInput struct {
	ProductID     string
	Type          string
	Quantity      decimal.Decimal // con signo: >0 entra, <0 sale; cero inválido
	Unit          string
	UnitCost      *decimal.Decimal // solo entradas (promedio móvil)
	BatchCode     string
	ExpiryDate    *time.Time
	ReferenceType string
	ReferenceID   string
	Notes         string
	ActorID       string
}

// ApplyOptions modifica la política de validación de salidas.
type ApplyOptions struct {
	// CapToAvailable recorta una salida excesiva a lo disponible en vez de fallar.
	CapToAvailable bool
	// AllowNegative permite girar en descubierto: sin lotes el saldo queda
	// negativo; con lotes el excedente se descarga sobre el lote destino (o
	// el último del orden FIFO), que puede quedar negativo.
	AllowNegative bool
}

// ApplyResult es el efecto de un movimiento sobre el registro de stock.
type ApplyResult struct {
	Applied decimal.Decimal // cantidad efectivamente aplicada, con signo
	// Movements son los asientos a persistir: uno por lote tocado cuando la
	// salida FIFO abarcó varios lotes, si no exactamente uno. Sin ID ni
	// StockID; los asigna la capa de aplicación.
	Movements []entity.StockMovement
}

// Apply ejecuta el algoritmo de aplicación de movimientos sobre el registro
// en memoria: valida, asigna/crea lotes, recalcula totales y costo promedio.
// No toca persistencia. Si devuelve error el registro queda sin mutar.
func Apply(stock *entity.Stock, in MovementInput, opts ApplyOptions, now time.Time) (*ApplyResult, error) {
	if in.ProductID == "" {
		return nil, fmt.Errorf("%w: productId es obligatorio", domain.ErrInvalidInput)
	}
	if !entity.ValidMovementType(in.Type) {
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, in.Type)
	}
	if in.Quantity.IsZero() {
		return nil, fmt.Errorf("%w: la cantidad no puede ser cero", domain.ErrInvalidInput)
	}

	in.Quantity = in.Quantity.Round(quantityPrecision)
	if in.Quantity.IsZero() {
		return nil, fmt.Errorf("%w: cantidad despreciable", domain.ErrInvalidInput)
	}

	unit := in.Unit
	if unit == "" {
		unit = stock.Unit
	}

	inbound := in.Quantity.IsPositive()
	totalBefore := stock.TotalAvailable()

	var (
		applied   decimal.Decimal
		movements []entity.StockMovement
		err       error
	)
	switch {
	case in.BatchCode != "":
		applied, movements, err = applyToNamedBatch(stock, in, opts, unit, inbound, now)
	case !inbound && len(stock.Batches) > 0:
		applied, movements, err = applyFIFO(stock, in, opts, unit, now)
	case inbound && len(stock.Batches) > 0:
		// Entrada sin lote con lotes presentes: va al pool anónimo para que
		// la suma de lotes siga siendo la disponibilidad autoritativa.
		applied, movements = applyToAnonymousPool(stock, in, unit, now)
	default:
		applied, movements, err = applyDirect(stock, in, opts, unit, now)
	}
	if err != nil {
		return nil, err
	}
	if applied.IsZero() {
		// Salida recortada contra disponibilidad cero: sin efecto, sin asiento.
		return &ApplyResult{Applied: decimal.Zero}, nil
	}

	stock.RecomputeAvailable(applied)
	stock.LastMovementAt = &now
	stock.UpdatedAt = now

	if inbound && in.UnitCost != nil {
		stock.AverageCost = CostCalculator(totalBefore, stock.AverageCost, applied, *in.UnitCost)
		stock.LastUnitCost = *in.UnitCost
	}

	return &ApplyResult{Applied: applied, Movements: movements}, nil
}

// applyToNamedBatch maneja movimientos dirigidos a un lote específico.
func applyToNamedBatch(stock *entity.Stock, in MovementInput, opts ApplyOptions, unit string, inbound bool, now time.Time) (decimal.Decimal, []entity.StockMovement, error) {
	idx := stock.FindBatch(in.BatchCode)

	if idx == -1 {
		if !inbound {
			return decimal.Zero, nil, fmt.Errorf("%w: %s", domain.ErrBatchNotFound, in.BatchCode)
		}
		// Entrada a lote nuevo: se crea sembrado con la cantidad entrante y
		// el costo provisto o el último costo conocido del registro.
		cost := stock.LastUnitCost
		if in.UnitCost != nil {
			cost = *in.UnitCost
		}
		stock.Batches = append(stock.Batches, entity.Batch{
			Code:            in.BatchCode,
			ExpiryDate:      in.ExpiryDate,
			Quantity:        in.Quantity,
			InitialQuantity: in.Quantity,
			UnitCost:        cost,
			Origin:          in.Type,
			ReferenceType:   in.ReferenceType,
			ReferenceID:     in.ReferenceID,
			CreatedBy:       in.ActorID,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		return in.Quantity, []entity.StockMovement{buildMovement(in, in.Quantity, unit, in.BatchCode, in.ExpiryDate, now)}, nil
	}

	batch := &stock.Batches[idx]
	if inbound {
		batch.Quantity = batch.Quantity.Add(in.Quantity)
		batch.InitialQuantity = batch.InitialQuantity.Add(in.Quantity)
		if in.UnitCost != nil {
			batch.UnitCost = *in.UnitCost
		}
		batch.UpdatedAt = now
		return in.Quantity, []entity.StockMovement{buildMovement(in, in.Quantity, unit, batch.Code, batch.ExpiryDate, now)}, nil
	}

	requested := in.Quantity.Neg()
	if requested.GreaterThan(batch.Quantity) && !opts.AllowNegative {
		if !opts.CapToAvailable {
			return decimal.Zero, nil, fmt.Errorf("%w: lote %s tiene %s", domain.ErrBatchInsufficient, batch.Code, batch.Quantity)
		}
		requested = decimal.Max(batch.Quantity, decimal.Zero)
	}
	if requested.IsZero() {
		return decimal.Zero, nil, nil
	}
	batch.Quantity = batch.Quantity.Sub(requested)
	batch.UpdatedAt = now
	mov := buildMovement(in, requested.Neg(), unit, batch.Code, batch.ExpiryDate, now)
	stock.PruneEmptyBatches()
	return requested.Neg(), []entity.StockMovement{mov}, nil
}

// applyFIFO consume lotes en orden vencimiento-luego-creación, generando un
// asiento por cada lote tocado.
func applyFIFO(stock *entity.Stock, in MovementInput, opts ApplyOptions, unit string, now time.Time) (decimal.Decimal, []entity.StockMovement, error) {
	requested := in.Quantity.Neg()
	total := stock.TotalAvailable()
	if requested.GreaterThan(total) && !opts.AllowNegative {
		if !opts.CapToAvailable {
			return decimal.Zero, nil, fmt.Errorf("%w: disponible %s, solicitado %s", domain.ErrInsufficientStock, total, requested)
		}
		requested = decimal.Max(total, decimal.Zero)
	}
	if requested.IsZero() {
		return decimal.Zero, nil, nil
	}

	SortBatchesFIFO(stock.Batches)

	var movements []entity.StockMovement
	remaining := requested
	for i := range stock.Batches {
		if !remaining.IsPositive() {
			break
		}
		batch := &stock.Batches[i]
		take := decimal.Min(batch.Quantity, remaining)
		if i == len(stock.Batches)-1 && opts.AllowNegative {
			// Con AllowNegative el excedente se descarga sobre el último lote,
			// que puede quedar negativo.
			take = remaining
		}
		if !take.IsPositive() {
			continue
		}
		batch.Quantity = batch.Quantity.Sub(take)
		batch.UpdatedAt = now
		movements = append(movements, buildMovement(in, take.Neg(), unit, batch.Code, batch.ExpiryDate, now))
		remaining = remaining.Sub(take)
	}
	stock.PruneEmptyBatches()
	return requested.Neg(), movements, nil
}

// applyToAnonymousPool acumula una entrada sin código en el lote anónimo.
func applyToAnonymousPool(stock *entity.Stock, in MovementInput, unit string, now time.Time) (decimal.Decimal, []entity.StockMovement) {
	cost := stock.LastUnitCost
	if in.UnitCost != nil {
		cost = *in.UnitCost
	}
	if idx := stock.FindBatch(""); idx != -1 {
		batch := &stock.Batches[idx]
		batch.Quantity = batch.Quantity.Add(in.Quantity)
		batch.InitialQuantity = batch.InitialQuantity.Add(in.Quantity)
		if in.UnitCost != nil {
			batch.UnitCost = *in.UnitCost
		}
		batch.UpdatedAt = now
	} else {
		stock.Batches = append(stock.Batches, entity.Batch{
			ExpiryDate:      in.ExpiryDate,
			Quantity:        in.Quantity,
			InitialQuantity: in.Quantity,
			UnitCost:        cost,
			Origin:          in.Type,
			ReferenceType:   in.ReferenceType,
			ReferenceID:     in.ReferenceID,
			CreatedBy:       in.ActorID,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
	return in.Quantity, []entity.StockMovement{buildMovement(in, in.Quantity, unit, "", in.ExpiryDate, now)}
}

// applyDirect acumula el delta con signo directamente, sin contabilidad de lotes.
func applyDirect(stock *entity.Stock, in MovementInput, opts ApplyOptions, unit string, now time.Time) (decimal.Decimal, []entity.StockMovement, error) {
	applied := in.Quantity
	if applied.IsNegative() {
		requested := applied.Neg()
		if requested.GreaterThan(stock.Available) && !opts.AllowNegative {
			if !opts.CapToAvailable {
				return decimal.Zero, nil, fmt.Errorf("%w: disponible %s, solicitado %s", domain.ErrInsufficientStock, stock.Available, requested)
			}
			requested = decimal.Max(stock.Available, decimal.Zero)
			applied = requested.Neg()
		}
	}
	if applied.IsZero() {
		return decimal.Zero, nil, nil
	}
	return applied, []entity.StockMovement{buildMovement(in, applied, unit, "", in.ExpiryDate, now)}, nil
}

func buildMovement(in MovementInput, quantity decimal.Decimal, unit, batchCode string, expiry *time.Time, now time.Time) entity.StockMovement {
	m := entity.StockMovement{
		ProductID:     in.ProductID,
		Type:          in.Type,
		Quantity:      quantity,
		Unit:          unit,
		BatchCode:     batchCode,
		ExpiryDate:    expiry,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Notes:         in.Notes,
		ActorID:       in.ActorID,
		CreatedAt:     now,
	}
	if quantity.IsPositive() && in.UnitCost != nil {
		cost := *in.UnitCost
		m.UnitCost = &cost
	}
	return m
}
