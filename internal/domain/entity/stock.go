package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch representa un lote dentro del stock de un producto: una sub-cantidad
// con vencimiento y costo propios. Code vacío identifica el lote "anónimo"
// (pool sin número de lote, consumido por FIFO igual que los demás).
type Batch struct {
	Code            string
	ExpiryDate      *time.Time
	Quantity        decimal.Decimal
	InitialQuantity decimal.Decimal // cantidad al crearse; permite reportar lo ya descontado
	UnitCost        decimal.Decimal
	Origin          string // tipo de movimiento que lo creó
	ReferenceType   string
	ReferenceID     string
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Drawn devuelve la cantidad ya consumida del lote.
func (b *Batch) Drawn() decimal.Decimal {
	return b.InitialQuantity.Sub(b.Quantity)
}

// IsExpired devuelve true si el lote ya venció al instante dado.
func (b *Batch) IsExpired(now time.Time) bool {
	return b.ExpiryDate != nil && b.ExpiryDate.Before(now)
}

// Stock es el registro de inventario de un producto (uno por producto).
// Toda mutación de Available, Batches y costos pasa por el motor de
// movimientos; ningún otro componente escribe estos campos.
type Stock struct {
	ID        string
	ProductID string
	Unit      string // unidad base cuando los lotes no declaran una

	Available decimal.Decimal
	Reserved  decimal.Decimal // informativo, no participa en validaciones
	Committed decimal.Decimal // informativo, no participa en validaciones

	MinThreshold   decimal.Decimal
	IdealThreshold decimal.Decimal
	MaxThreshold   decimal.Decimal

	AverageCost  decimal.Decimal
	LastUnitCost decimal.Decimal

	Batches []Batch

	LastMovementAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewStock crea un registro de stock vacío para un producto (upsert perezoso).
func NewStock(id, productID string, now time.Time) *Stock {
	return &Stock{
		ID:        id,
		ProductID: productID,
		Unit:      "un",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TotalAvailable devuelve la disponibilidad autoritativa: suma de lotes si
// hay lotes, si no la cantidad acumulada directamente.
func (s *Stock) TotalAvailable() decimal.Decimal {
	if len(s.Batches) == 0 {
		return s.Available
	}
	sum := decimal.Zero
	for i := range s.Batches {
		sum = sum.Add(s.Batches[i].Quantity)
	}
	return sum
}

// RecomputeAvailable restablece Available desde los lotes cuando existen.
// Con lotes presentes la suma manda; nunca se acumula en paralelo.
func (s *Stock) RecomputeAvailable(delta decimal.Decimal) {
	if len(s.Batches) > 0 {
		s.Available = s.TotalAvailable()
		return
	}
	s.Available = s.Available.Add(delta)
}

// FindBatch devuelve el índice del lote con ese código, -1 si no existe.
func (s *Stock) FindBatch(code string) int {
	for i := range s.Batches {
		if s.Batches[i].Code == code {
			return i
		}
	}
	return -1
}

// PruneEmptyBatches elimina los lotes que llegaron exactamente a cero.
// Un lote negativo (solo posible con allowNegative) se conserva para que la
// suma de lotes siga reflejando el saldo real.
func (s *Stock) PruneEmptyBatches() {
	kept := s.Batches[:0]
	for i := range s.Batches {
		if !s.Batches[i].Quantity.IsZero() {
			kept = append(kept, s.Batches[i])
		}
	}
	s.Batches = kept
}

// BelowMinimum indica si la disponibilidad cayó por debajo del mínimo.
func (s *Stock) BelowMinimum() bool {
	return s.TotalAvailable().LessThan(s.MinThreshold)
}
