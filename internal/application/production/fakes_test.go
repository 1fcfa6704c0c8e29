package production_test

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/barratec/barra-api/internal/domain/entity"
	"github.com/barratec/barra-api/internal/domain/repository"
)

// Dobles en memoria de los puertos que toca la máquina de procesos. El
// runner ejecuta la función directamente sobre los mismos mapas, sin
// transacción real.

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type memStockRepo struct {
	byProduct map[string]*entity.Stock
	saves     int
	failAfter int // >0: Save devuelve error a partir de la llamada n+1
}

func (r *memStockRepo) GetByID(_ context.Context, id string) (*entity.Stock, error) {
	for _, s := range r.byProduct {
		if s.ID == id {
			return s, nil
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
	s := entity.NewStock(uuid.New().String(), productID, baseTime)
	r.byProduct[productID] = s
	return s, nil
}

func (r *memStockRepo) Save(_ context.Context, stock *entity.Stock) error {
	r.saves++
	if r.failAfter > 0 && r.saves > r.failAfter {
		return errors.New("save stock: conexión perdida")
	}
	r.byProduct[stock.ProductID] = stock
	return nil
}

func (r *memStockRepo) List(_ context.Context, _ repository.StockListFilter) ([]*entity.Stock, int, error) {
	return nil, 0, nil
}

func (r *memStockRepo) Update(_ context.Context, stock *entity.Stock) error {
	r.byProduct[stock.ProductID] = stock
	return nil
}

func (r *memStockRepo) UpdateSettings(_ context.Context, stock *entity.Stock) error {
	if stored, ok := r.byProduct[stock.ProductID]; ok {
		stored.Unit = stock.Unit
		stored.Reserved = stock.Reserved
		stored.Committed = stock.Committed
		stored.MinThreshold = stock.MinThreshold
		stored.IdealThreshold = stock.IdealThreshold
		stored.MaxThreshold = stock.MaxThreshold
	}
	return nil
}

func (r *memStockRepo) Delete(_ context.Context, _ string) error { return nil }

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

func (r *memProductRepo) List(_ context.Context, _ string, _, _ int) ([]*entity.Product, int, error) {
	return r.products, len(r.products), nil
}

func (r *memProductRepo) Update(_ context.Context, _ *entity.Product) error { return nil }

func (r *memProductRepo) Deactivate(_ context.Context, _ string) error { return nil }

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

func (r *memRecipeRepo) Update(_ context.Context, _ *entity.Recipe) error { return nil }

func (r *memRecipeRepo) Deactivate(_ context.Context, _ string) error { return nil }

type memProcessRepo struct {
	processes map[string]*entity.ProductionProcess
	updates   int
}

func (r *memProcessRepo) Create(_ context.Context, p *entity.ProductionProcess) error {
	r.processes[p.ID] = p
	return nil
}

func (r *memProcessRepo) GetByID(_ context.Context, id string) (*entity.ProductionProcess, error) {
	return r.processes[id], nil
}

func (r *memProcessRepo) GetForUpdate(ctx context.Context, id string) (*entity.ProductionProcess, error) {
	return r.GetByID(ctx, id)
}

func (r *memProcessRepo) Update(_ context.Context, p *entity.ProductionProcess) error {
	r.processes[p.ID] = p
	r.updates++
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
	delete(r.processes, id)
	return nil
}

type memTxRunner struct {
	stocks    *memStockRepo
	movements *memMovementRepo
	products  *memProductRepo
	recipes   *memRecipeRepo
	processes *memProcessRepo
}

func newMemTxRunner() *memTxRunner {
	return &memTxRunner{
		stocks:    &memStockRepo{byProduct: map[string]*entity.Stock{}},
		movements: &memMovementRepo{},
		products:  &memProductRepo{},
		recipes:   &memRecipeRepo{},
		processes: &memProcessRepo{processes: map[string]*entity.ProductionProcess{}},
	}
}

// memTxSnapshot copia profunda del estado mutable que toca una transacción.
type memTxSnapshot struct {
	stocks    map[string]*entity.Stock
	movements []*entity.StockMovement
	processes map[string]*entity.ProductionProcess
}

func (r *memTxRunner) snapshot() memTxSnapshot {
	snap := memTxSnapshot{
		stocks:    make(map[string]*entity.Stock, len(r.stocks.byProduct)),
		movements: append([]*entity.StockMovement(nil), r.movements.movements...),
		processes: make(map[string]*entity.ProductionProcess, len(r.processes.processes)),
	}
	for pid, s := range r.stocks.byProduct {
		c := *s
		c.Batches = append([]entity.Batch(nil), s.Batches...)
		snap.stocks[pid] = &c
	}
	for id, p := range r.processes.processes {
		c := *p
		snap.processes[id] = &c
	}
	return snap
}

func (r *memTxRunner) restore(snap memTxSnapshot) {
	r.stocks.byProduct = snap.stocks
	r.movements.movements = snap.movements
	r.processes.processes = snap.processes
}

func (r *memTxRunner) Run(_ context.Context, fn func(repository.StockRepository, repository.StockMovementRepository) error) error {
	snap := r.snapshot()
	if err := fn(r.stocks, r.movements); err != nil {
		r.restore(snap)
		return err
	}
	return nil
}

func (r *memTxRunner) RunProduction(_ context.Context, fn func(
	repository.StockRepository,
	repository.StockMovementRepository,
	repository.ProductRepository,
	repository.RecipeRepository,
	repository.ProductionProcessRepository,
) error) error {
	snap := r.snapshot()
	if err := fn(r.stocks, r.movements, r.products, r.recipes, r.processes); err != nil {
		r.restore(snap)
		return err
	}
	return nil
}

// retryTxRunner descarta los primeros intentos como un rollback por fallo de
// serialización y vuelve a invocar el callback, igual que el runner real.
type retryTxRunner struct {
	*memTxRunner
	aborts int
}

func (r *retryTxRunner) RunProduction(ctx context.Context, fn func(
	repository.StockRepository,
	repository.StockMovementRepository,
	repository.ProductRepository,
	repository.RecipeRepository,
	repository.ProductionProcessRepository,
) error) error {
	for r.aborts > 0 {
		r.aborts--
		snap := r.snapshot()
		_ = fn(r.stocks, r.movements, r.products, r.recipes, r.processes)
		r.restore(snap)
	}
	return r.memTxRunner.RunProduction(ctx, fn)
}
