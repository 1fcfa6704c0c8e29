package inventory

import (
	"sort"

	"github.com/barratec/barra-api/internal/domain/entity"
)

// SortBatchesFIFO ordena los lotes en el orden canónico de consumo:
// vencimiento ascendente (lotes sin vencimiento al final), desempate por
// fecha de creación ascendente. El orden de inserción no se conserva; el
// orden de consumo siempre se computa.
func SortBatchesFIFO(batches []entity.Batch) {
	sort.SliceStable(batches, func(i, j int) bool {
		a, b := &batches[i], &batches[j]
		switch {
		case a.ExpiryDate == nil && b.ExpiryDate == nil:
			return a.CreatedAt.Before(b.CreatedAt)
		case a.ExpiryDate == nil:
			return false
		case b.ExpiryDate == nil:
			return true
		case a.ExpiryDate.Equal(*b.ExpiryDate):
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.ExpiryDate.Before(*b.ExpiryDate)
		}
	})
}
