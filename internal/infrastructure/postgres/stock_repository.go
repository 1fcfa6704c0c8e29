package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/barratec/barra-api/internal/domain/entity"
	"github.com/barratec/barra-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
// Cada registro de stock carga sus lotes; Save reescribe los lotes completos,
// lo que es barato porque un producto rara vez pasa de unas decenas de lotes.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `
	id, product_id, unit, available, reserved, committed,
	min_threshold, ideal_threshold, max_threshold,
	average_cost, last_unit_cost, last_movement_at, created_at, updated_at`

// GetByID obtiene un registro de stock por su id, con lotes.
func (r *StockRepo) GetByID(ctx context.Context, id string) (*entity.Stock, error) {
	query := `SELECT` + stockColumns + ` FROM stock WHERE id = $1`
	s, err := r.scanOne(ctx, r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}
	if err := r.loadBatches(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// GetByProduct obtiene el registro de stock de un producto, con lotes.
func (r *StockRepo) GetByProduct(ctx context.Context, productID string) (*entity.Stock, error) {
	query := `SELECT` + stockColumns + ` FROM stock WHERE product_id = $1`
	s, err := r.scanOne(ctx, r.q.QueryRow(ctx, query, productID))
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}
	if err := r.loadBatches(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// GetOrCreateForUpdate hace el upsert perezoso del registro y bloquea la fila
// del producto con SELECT FOR UPDATE para la transacción en curso.
func (r *StockRepo) GetOrCreateForUpdate(ctx context.Context, productID string) (*entity.Stock, error) {
	insert := `
		INSERT INTO stock (id, product_id, unit, created_at, updated_at)
		VALUES ($1, $2, 'un', now(), now())
		ON CONFLICT (product_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, uuid.New().String(), productID); err != nil {
		return nil, fmt.Errorf("crear stock: %w", err)
	}

	query := `SELECT` + stockColumns + ` FROM stock WHERE product_id = $1 FOR UPDATE`
	s, err := r.scanOne(ctx, r.q.QueryRow(ctx, query, productID))
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("stock de producto %s no visible tras upsert", productID)
	}
	if err := r.loadBatches(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Save persiste el registro y reescribe sus lotes.
func (r *StockRepo) Save(ctx context.Context, stock *entity.Stock) error {
	if err := r.Update(ctx, stock); err != nil {
		return err
	}
	return r.saveBatches(ctx, stock)
}

// Update persiste solo el registro (umbrales, unidad, costos), sin tocar lotes.
func (r *StockRepo) Update(ctx context.Context, stock *entity.Stock) error {
	query := `
		UPDATE stock SET
			unit = $2, available = $3, reserved = $4, committed = $5,
			min_threshold = $6, ideal_threshold = $7, max_threshold = $8,
			average_cost = $9, last_unit_cost = $10, last_movement_at = $11,
			updated_at = $12
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		stock.ID, stock.Unit, stock.Available, stock.Reserved, stock.Committed,
		stock.MinThreshold, stock.IdealThreshold, stock.MaxThreshold,
		stock.AverageCost, stock.LastUnitCost, stock.LastMovementAt,
		stock.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	return nil
}

// UpdateSettings persiste solo las columnas de configuración. Las columnas
// del libro (available, costos, last_movement_at) no se tocan: las escribe
// el motor de movimientos y el snapshot leído puede estar desactualizado.
func (r *StockRepo) UpdateSettings(ctx context.Context, stock *entity.Stock) error {
	query := `
		UPDATE stock SET
			unit = $2, reserved = $3, committed = $4,
			min_threshold = $5, ideal_threshold = $6, max_threshold = $7,
			updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		stock.ID, stock.Unit, stock.Reserved, stock.Committed,
		stock.MinThreshold, stock.IdealThreshold, stock.MaxThreshold,
		stock.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update ajustes de stock: %w", err)
	}
	return nil
}

// List lista registros de stock con filtros y total.
func (r *StockRepo) List(ctx context.Context, filter repository.StockListFilter) ([]*entity.Stock, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		where += fmt.Sprintf(` AND s.product_id IN (
			SELECT id FROM products WHERE name ILIKE $%d OR code ILIKE $%d)`, len(args), len(args))
	}
	if filter.LowOnly {
		where += ` AND s.available < s.min_threshold`
	}

	var total int
	countQuery := `SELECT count(*) FROM stock s` + where
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	query := `SELECT` + qualify(stockColumns, "s") + ` FROM stock s` + where +
		fmt.Sprintf(` ORDER BY s.updated_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	var result []*entity.Stock
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for _, s := range result {
		if err := r.loadBatches(ctx, s); err != nil {
			return nil, 0, err
		}
	}
	return result, total, nil
}

// Delete elimina el registro de stock y sus lotes (cascade).
func (r *StockRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM stock WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete stock: %w", err)
	}
	return nil
}

func (r *StockRepo) loadBatches(ctx context.Context, s *entity.Stock) error {
	query := `
		SELECT code, expiry_date, quantity, initial_quantity, unit_cost,
		       origin, reference_type, reference_id, created_by, created_at, updated_at
		FROM stock_batches
		WHERE stock_id = $1
		ORDER BY expiry_date ASC NULLS LAST, created_at ASC`
	rows, err := r.q.Query(ctx, query, s.ID)
	if err != nil {
		return fmt.Errorf("cargar lotes: %w", err)
	}
	defer rows.Close()

	s.Batches = nil
	for rows.Next() {
		var b entity.Batch
		if err := rows.Scan(
			&b.Code, &b.ExpiryDate, &b.Quantity, &b.InitialQuantity, &b.UnitCost,
			&b.Origin, &b.ReferenceType, &b.ReferenceID, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return fmt.Errorf("scan lote: %w", err)
		}
		s.Batches = append(s.Batches, b)
	}
	return rows.Err()
}

func (r *StockRepo) saveBatches(ctx context.Context, s *entity.Stock) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_batches WHERE stock_id = $1`, s.ID); err != nil {
		return fmt.Errorf("limpiar lotes: %w", err)
	}
	insert := `
		INSERT INTO stock_batches (
			stock_id, code, expiry_date, quantity, initial_quantity, unit_cost,
			origin, reference_type, reference_id, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	for _, b := range s.Batches {
		if _, err := r.q.Exec(ctx, insert,
			s.ID, b.Code, b.ExpiryDate, b.Quantity, b.InitialQuantity, b.UnitCost,
			b.Origin, b.ReferenceType, b.ReferenceID, b.CreatedBy, b.CreatedAt, b.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insertar lote %q: %w", b.Code, err)
		}
	}
	return nil
}

func (r *StockRepo) scanOne(ctx context.Context, row pgx.Row) (*entity.Stock, error) {
	s, err := scanStock(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func scanStock(row pgx.Row) (*entity.Stock, error) {
	var s entity.Stock
	err := row.Scan(
		&s.ID, &s.ProductID, &s.Unit, &s.Available, &s.Reserved, &s.Committed,
		&s.MinThreshold, &s.IdealThreshold, &s.MaxThreshold,
		&s.AverageCost, &s.LastUnitCost, &s.LastMovementAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan stock: %w", err)
	}
	return &s, nil
}

// qualify antepone el alias de tabla a cada columna de la lista.
func qualify(columns, alias string) string {
	out := ""
	for i, c := range splitColumns(columns) {
		if i > 0 {
			out += ","
		}
		out += " " + alias + "." + c
	}
	return out
}

func splitColumns(columns string) []string {
	var result []string
	field := ""
	for _, r := range columns {
		switch r {
		case ',':
			result = append(result, field)
			field = ""
		case ' ', '\n', '\t':
		default:
			field += string(r)
		}
	}
	if field != "" {
		result = append(result, field)
	}
	return result
}
