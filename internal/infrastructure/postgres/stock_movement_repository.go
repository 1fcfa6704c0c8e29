package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/barratec/barra-api/internal/domain/entity"
	"github.com/barratec/barra-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo historial append-only de movimientos sobre PostgreSQL.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `
	id, product_id, stock_id, type, quantity, unit, batch_code, expiry_date,
	unit_cost, reference_type, reference_id, notes, actor_id, created_at`

// Create inserta un movimiento. Los asientos nunca se modifican después.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.StockID, m.Type, m.Quantity, m.Unit, m.BatchCode, m.ExpiryDate,
		m.UnitCost, m.ReferenceType, m.ReferenceID, m.Notes, m.ActorID, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insertar movimiento: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por id.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	query := `SELECT` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// List lista movimientos con filtros, más recientes primero.
func (r *StockMovementRepo) List(ctx context.Context, filter repository.MovementListFilter) ([]*entity.StockMovement, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.ProductID != "" {
		args = append(args, filter.ProductID)
		where += fmt.Sprintf(` AND product_id = $%d`, len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	if filter.ReferenceType != "" {
		args = append(args, filter.ReferenceType)
		where += fmt.Sprintf(` AND reference_type = $%d`, len(args))
	}
	if filter.ReferenceID != "" {
		args = append(args, filter.ReferenceID)
		where += fmt.Sprintf(` AND reference_id = $%d`, len(args))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query := `SELECT` + movementColumns + ` FROM stock_movements` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	return r.queryMovements(ctx, query, args...)
}

// ListByProduct lista movimientos de un producto, más recientes primero.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT` + movementColumns + ` FROM stock_movements
		WHERE product_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.queryMovements(ctx, query, productID, limit, offset)
}

// ExistsByReference true si algún movimiento ya referencia ese evento de negocio.
func (r *StockMovementRepo) ExistsByReference(ctx context.Context, referenceType, referenceID string) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM stock_movements WHERE reference_type = $1 AND reference_id = $2)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, referenceType, referenceID).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists by reference: %w", err)
	}
	return exists, nil
}

func (r *StockMovementRepo) queryMovements(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar movimientos: %w", err)
	}
	defer rows.Close()

	var result []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(
		&m.ID, &m.ProductID, &m.StockID, &m.Type, &m.Quantity, &m.Unit, &m.BatchCode, &m.ExpiryDate,
		&m.UnitCost, &m.ReferenceType, &m.ReferenceID, &m.Notes, &m.ActorID, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan movimiento: %w", err)
	}
	return &m, nil
}
