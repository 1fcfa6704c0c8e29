package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/barratec/barra-api/internal/domain"
	"github.com/barratec/barra-api/internal/domain/entity"
	"github.com/barratec/barra-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository sobre PostgreSQL.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `
	id, name, description, code, barcode, unit, is_elaborated,
	base_recipe_id, active, created_at, updated_at`

// Create inserta un producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Code, p.Barcode, p.Unit, p.IsElaborated,
		nullIfEmpty(p.BaseRecipeID), p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insertar producto: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por id. Devuelve nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// ListActive devuelve el catálogo activo completo, ordenado por nombre.
func (r *ProductRepo) ListActive(ctx context.Context) ([]*entity.Product, error) {
	query := `SELECT` + productColumns + ` FROM products WHERE active ORDER BY name ASC`
	return r.queryProducts(ctx, query)
}

// List lista productos con búsqueda por texto y paginación, más el total.
func (r *ProductRepo) List(ctx context.Context, search string, limit, offset int) ([]*entity.Product, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += fmt.Sprintf(` AND (name ILIKE $%d OR code ILIKE $%d OR barcode ILIKE $%d)`,
			len(args), len(args), len(args))
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count productos: %w", err)
	}

	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, offset)
	query := `SELECT` + productColumns + ` FROM products` + where +
		fmt.Sprintf(` ORDER BY name ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	list, err := r.queryProducts(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Update actualiza un producto.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET
			name = $2, description = $3, code = $4, barcode = $5, unit = $6,
			is_elaborated = $7, base_recipe_id = $8, active = $9, updated_at = $10
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Code, p.Barcode, p.Unit,
		p.IsElaborated, nullIfEmpty(p.BaseRecipeID), p.Active, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update producto: %w", err)
	}
	return nil
}

// Deactivate baja lógica.
func (r *ProductRepo) Deactivate(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("desactivar producto: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) queryProducts(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar productos: %w", err)
	}
	defer rows.Close()

	var result []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var baseRecipeID *string
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Code, &p.Barcode, &p.Unit, &p.IsElaborated,
		&baseRecipeID, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan producto: %w", err)
	}
	if baseRecipeID != nil {
		p.BaseRecipeID = *baseRecipeID
	}
	return &p, nil
}

// nullIfEmpty mapea string vacío a NULL para columnas con FK opcional.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
