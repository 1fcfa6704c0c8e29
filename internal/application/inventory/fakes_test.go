package inventory_test

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/barratec/barra-api/internal/domain/entity"
	"github.com/barratec/barra-api/internal/domain/repository"
)

// Dobles en memoria de los puertos de persistencia. Sin transaccionalidad
// real: el runner ejecuta la función directamente sobre los mismos mapas.

type memStockRepo struct {
	byProduct map[string]*entity.Stock
	saves     int

	// afterGetByID simula un escritor concurrente entre la lectura y la
	// escritura de un read-modify-write.
	afterGetByID func()
}

func newMemStockRepo() *memStockRepo {
	return &memStockRepo{byProduct: map[string]*entity.Stock{}}
}

func cloneStock(s *entity.Stock) *entity.Stock {
	c := *s
	c.Batches = append([]entity.Batch(nil), s.Batches...)
	return &c
}

// GetByID devuelve una copia, como una lectura fuera de transacción.
func (r *memStockRepo) GetByID(_ context.Context, id string) (*entity.Stock, error) {
	for _, s := range r.byProduct {
		if s.ID == id {
			snapshot := cloneStock(s)
			if r.afterGetByID != nil {
				r.afterGetByID()
			}
			return snapshot, nil
		}
	}
	return nil, nil
}

func (r *memStockRepo) GetByProduct(_ context.Context, productID string) (*entity.Stock, error) {
	return r.byProduct[productID], nil
}

func (r *memStockRepo) GetOrCreateForUpdate(_ context.Context, productID string) (*entity.Stock, error) {
	if s, ok := r.byProduct[productID]; ok {
		return s, nil
	}
	s := entity.NewStock(uuid.New().String(), productID, fixedNow)
	r.byProduct[productID] = s
	return s, nil
}

func (r *memStockRepo) Save(_ context.Context, stock *entity.Stock) error {
	r.byProduct[stock.ProductID] = stock
	r.saves++
	return nil
}

func (r *memStockRepo) List(_ context.Context, _ repository.StockListFilter) ([]*entity.Stock, int, error) {
	out := make([]*entity.Stock, 0, len(r.byProduct))
	for _, s := range r.byProduct {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (r *memStockRepo) Update(_ context.Context, stock *entity.Stock) error {
	r.byProduct[stock.ProductID] = stock
	return nil
}

// UpdateSettings copia solo las columnas de configuración sobre el registro
// almacenado, igual que el UPDATE restringido del adaptador real.
func (r *memStockRepo) UpdateSettings(_ context.Context, stock *entity.Stock) error {
	stored, ok := r.byProduct[stock.ProductID]
	if !ok {
		return nil
	}
	stored.Unit = stock.Unit
	stored.Reserved = stock.Reserved
	stored.Committed = stock.Committed
	stored.MinThreshold = stock.MinThreshold
	stored.IdealThreshold = stock.IdealThreshold
	stored.MaxThreshold = stock.MaxThreshold
	stored.UpdatedAt = stock.UpdatedAt
	return nil
}

func (r *memStockRepo) Delete(_ context.Context, id string) error {
	for pid, s := range r.byProduct {
		if s.ID == id {
			delete(r.byProduct, pid)
		}
	}
	return nil
}

type memMovementRepo struct {
	movements []*entity.StockMovement
}

func (r *memMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.movements = append(r.movements, m)
	return nil
}

func (r *memMovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	for _, m := range r.movements {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (r *memMovementRepo) List(_ context.Context, filter repository.MovementListFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.movements {
		if filter.ProductID != "" && m.ProductID != filter.ProductID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *memMovementRepo) ListByProduct(_ context.Context, productID string, _, _ int) ([]*entity.StockMovement, error) {
	return r.List(context.Background(), repository.MovementListFilter{ProductID: productID})
}

func (r *memMovementRepo) ExistsByReference(_ context.Context, referenceType, referenceID string) (bool, error) {
	for _, m := range r.movements {
		if m.ReferenceType == referenceType && m.ReferenceID == referenceID {
			return true, nil
		}
	}
	return false, nil
}

type memProductRepo struct {
	products []*entity.Product
}

func (r *memProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.products = append(r.products, p)
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *memProductRepo) ListActive(_ context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.products {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProductRepo) List(_ context.Context, query string, _, _ int) ([]*entity.Product, int, error) {
	var out []*entity.Product
	for _, p := range r.products {
		if query == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (r *memProductRepo) Update(_ context.Context, p *entity.Product) error {
	for i, old := range r.products {
		if old.ID == p.ID {
			r.products[i] = p
		}
	}
	return nil
}

func (r *memProductRepo) Deactivate(_ context.Context, id string) error {
	for _, p := range r.products {
		if p.ID == id {
			p.Active = false
		}
	}
	return nil
}

type memRecipeRepo struct {
	recipes []*entity.Recipe
}

func (r *memRecipeRepo) Create(_ context.Context, rec *entity.Recipe) error {
	r.recipes = append(r.recipes, rec)
	return nil
}

func (r *memRecipeRepo) GetByID(_ context.Context, id string) (*entity.Recipe, error) {
	for _, rec := range r.recipes {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *memRecipeRepo) GetByName(_ context.Context, name string) (*entity.Recipe, error) {
	for _, rec := range r.recipes {
		if rec.Name == name {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *memRecipeRepo) ListActive(_ context.Context) ([]*entity.Recipe, error) {
	var out []*entity.Recipe
	for _, rec := range r.recipes {
		if rec.Active {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memRecipeRepo) Update(_ context.Context, rec *entity.Recipe) error {
	for i, old := range r.recipes {
		if old.ID == rec.ID {
			r.recipes[i] = rec
		}
	}
	return nil
}

func (r *memRecipeRepo) Deactivate(_ context.Context, id string) error {
	for _, rec := range r.recipes {
		if rec.ID == id {
			rec.Active = false
		}
	}
	return nil
}

type memProcessRepo struct {
	processes []*entity.ProductionProcess
}

func (r *memProcessRepo) Create(_ context.Context, p *entity.ProductionProcess) error {
	r.processes = append(r.processes, p)
	return nil
}

func (r *memProcessRepo) GetByID(_ context.Context, id string) (*entity.ProductionProcess, error) {
	for _, p := range r.processes {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *memProcessRepo) GetForUpdate(ctx context.Context, id string) (*entity.ProductionProcess, error) {
	return r.GetByID(ctx, id)
}

func (r *memProcessRepo) Update(_ context.Context, p *entity.ProductionProcess) error {
	for i, old := range r.processes {
		if old.ID == p.ID {
			r.processes[i] = p
		}
	}
	return nil
}

func (r *memProcessRepo) List(_ context.Context, filter repository.ProcessListFilter) ([]*entity.ProductionProcess, error) {
	var out []*entity.ProductionProcess
	for _, p := range r.processes {
		if filter.OwnerID != "" && p.OwnerID != filter.OwnerID {
			continue
		}
		if filter.ExcludeFinished && p.Status == entity.ProcessStatusFinished {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memProcessRepo) Delete(_ context.Context, id string) error {
	kept := r.processes[:0]
	for _, p := range r.processes {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	r.processes = kept
	return nil
}

// memTxRunner ejecuta las funciones directamente, sin transacción real.
type memTxRunner struct {
	stocks    *memStockRepo
	movements *memMovementRepo
	products  *memProductRepo
	recipes   *memRecipeRepo
	processes *memProcessRepo
}

func newMemTxRunner() *memTxRunner {
	return &memTxRunner{
		stocks:    newMemStockRepo(),
		movements: &memMovementRepo{},
		products:  &memProductRepo{},
		recipes:   &memRecipeRepo{},
		processes: &memProcessRepo{},
	}
}

func (r *memTxRunner) Run(_ context.Context, fn func(repository.StockRepository, repository.StockMovementRepository) error) error {
	return fn(r.stocks, r.movements)
}

func (r *memTxRunner) RunProduction(_ context.Context, fn func(
	repository.StockRepository,
	repository.StockMovementRepository,
	repository.ProductRepository,
	repository.RecipeRepository,
	repository.ProductionProcessRepository,
) error) error {
	return fn(r.stocks, r.movements, r.products, r.recipes, r.processes)
}
