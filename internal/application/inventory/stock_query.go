package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/barratec/barra-api/internal/domain"
	"github.com/barratec/barra-api/internal/domain/entity"
	"github.com/barratec/barra-api/internal/domain/repository"
)

// StockView registro de stock con los datos básicos del producto poblados.
type StockView struct {
	Stock       *entity.Stock
	ProductName string
	ProductCode string
	Barcode     string
}

// BatchView es un lote aplanado con su producto y lo ya consumido.
type BatchView struct {
	ProductID   string
	ProductName string
	ProductCode string
	BatchCode   string
	ExpiryDate  *time.Time
	Quantity    decimal.Decimal
	Initial     decimal.Decimal
	Drawn       decimal.Decimal
	UnitCost    decimal.Decimal
	Origin      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StockUseCase lecturas del libro de stock (fuera de transacción).
type StockUseCase struct {
	stockRepo   repository.StockRepository
	productRepo repository.ProductRepository
	movRepo     repository.StockMovementRepository
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
) *StockUseCase {
	return &StockUseCase{stockRepo: stockRepo, productRepo: productRepo, movRepo: movRepo}
}

// List devuelve la página de registros con filtros (texto libre, bajo mínimo).
func (uc *StockUseCase) List(ctx context.Context, filter repository.StockListFilter) ([]*StockView, int, error) {
	stocks, total, err := uc.stockRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	views := make([]*StockView, 0, len(stocks))
	for _, s := range stocks {
		views = append(views, uc.populate(ctx, s))
	}
	return views, total, nil
}

// GetByID devuelve el detalle de un registro de stock.
func (uc *StockUseCase) GetByID(ctx context.Context, id string) (*StockView, error) {
	s, err := uc.stockRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: stock %s", domain.ErrNotFound, id)
	}
	return uc.populate(ctx, s), nil
}

// GetByProduct devuelve el stock asociado a un producto.
func (uc *StockUseCase) GetByProduct(ctx context.Context, productID string) (*StockView, error) {
	s, err := uc.stockRepo.GetByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: stock del producto %s", domain.ErrNotFound, productID)
	}
	return uc.populate(ctx, s), nil
}

// ListBatches devuelve los lotes aplanados, opcionalmente solo los que
// conservan existencia y/o los de un producto.
func (uc *StockUseCase) ListBatches(ctx context.Context, productID string, onlyWithStock bool) ([]BatchView, error) {
	var stocks []*entity.Stock
	if productID != "" {
		s, err := uc.stockRepo.GetByProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		if s != nil {
			stocks = append(stocks, s)
		}
	} else {
		all, _, err := uc.stockRepo.List(ctx, repository.StockListFilter{Limit: 1000})
		if err != nil {
			return nil, err
		}
		stocks = all
	}

	var views []BatchView
	for _, s := range stocks {
		var name, code string
		if p, err := uc.productRepo.GetByID(ctx, s.ProductID); err == nil && p != nil {
			name, code = p.Name, p.Code
		}
		for i := range s.Batches {
			b := &s.Batches[i]
			if onlyWithStock && !b.Quantity.IsPositive() {
				continue
			}
			views = append(views, BatchView{
				ProductID:   s.ProductID,
				ProductName: name,
				ProductCode: code,
				BatchCode:   b.Code,
				ExpiryDate:  b.ExpiryDate,
				Quantity:    b.Quantity,
				Initial:     b.InitialQuantity,
				Drawn:       b.Drawn(),
				UnitCost:    b.UnitCost,
				Origin:      b.Origin,
				CreatedAt:   b.CreatedAt,
				UpdatedAt:   b.UpdatedAt,
			})
		}
	}
	return views, nil
}

// ListMovements lista asientos con filtros, más recientes primero.
func (uc *StockUseCase) ListMovements(ctx context.Context, filter repository.MovementListFilter) ([]*entity.StockMovement, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 100
	}
	return uc.movRepo.List(ctx, filter)
}

// GetMovement devuelve un asiento por id.
func (uc *StockUseCase) GetMovement(ctx context.Context, id string) (*entity.StockMovement, error) {
	m, err := uc.movRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, id)
	}
	return m, nil
}

// StockSettings campos ajustables sin pasar por el motor de movimientos.
// Disponible, lotes y costos quedan fuera: solo los escribe el motor.
type StockSettings struct {
	Unit           *string
	MinThreshold   *decimal.Decimal
	IdealThreshold *decimal.Decimal
	MaxThreshold   *decimal.Decimal
	Reserved       *decimal.Decimal
	Committed      *decimal.Decimal
}

// UpdateSettings ajusta unidad, umbrales y cantidades informativas.
func (uc *StockUseCase) UpdateSettings(ctx context.Context, id string, in StockSettings) (*StockView, error) {
	s, err := uc.stockRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: stock %s", domain.ErrNotFound, id)
	}
	if in.Unit != nil {
		s.Unit = *in.Unit
	}
	if in.MinThreshold != nil {
		s.MinThreshold = *in.MinThreshold
	}
	if in.IdealThreshold != nil {
		s.IdealThreshold = *in.IdealThreshold
	}
	if in.MaxThreshold != nil {
		s.MaxThreshold = *in.MaxThreshold
	}
	if in.Reserved != nil {
		s.Reserved = *in.Reserved
	}
	if in.Committed != nil {
		s.Committed = *in.Committed
	}
	s.UpdatedAt = time.Now()
	// Solo columnas de configuración: un movimiento concurrente pudo haber
	// cambiado disponible/costos desde la lectura y no debe pisarse.
	if err := uc.stockRepo.UpdateSettings(ctx, s); err != nil {
		return nil, err
	}
	return uc.populate(ctx, s), nil
}

func (uc *StockUseCase) populate(ctx context.Context, s *entity.Stock) *StockView {
	view := &StockView{Stock: s}
	if p, err := uc.productRepo.GetByID(ctx, s.ProductID); err == nil && p != nil {
		view.ProductName = p.Name
		view.ProductCode = p.Code
		view.Barcode = p.Barcode
	}
	return view
}
