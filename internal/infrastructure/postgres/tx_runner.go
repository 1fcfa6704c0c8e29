package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/barratec/barra-api/internal/application/inventory"
	"github.com/barratec/barra-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// txMaxAttempts reintentos ante fallos de serialización o deadlock.
const txMaxAttempts = 3

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// Los deadlocks y fallos de serialización se reintentan hasta txMaxAttempts
// veces; el callback debe ser re-ejecutable.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return r.runRetrying(ctx, func(tx Querier) error {
		return fn(NewStockRepository(tx), NewStockMovementRepository(tx))
	})
}

// RunProduction inicia una transacción con todos los repos que toca una
// finalización de proceso.
func (r *TxRunner) RunProduction(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	recipeRepo repository.RecipeRepository,
	processRepo repository.ProductionProcessRepository,
) error) error {
	return r.runRetrying(ctx, func(tx Querier) error {
		return fn(
			NewStockRepository(tx),
			NewStockMovementRepository(tx),
			NewProductRepository(tx),
			NewRecipeRepository(tx),
			NewProductionProcessRepository(tx),
		)
	})
}

func (r *TxRunner) runRetrying(ctx context.Context, fn func(tx Querier) error) error {
	var lastErr error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		err := r.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryableTxError(err) || ctx.Err() != nil {
			return err
		}
	}
	return fmt.Errorf("transacción agotó %d intentos: %w", txMaxAttempts, lastErr)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(tx Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
