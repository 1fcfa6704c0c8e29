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

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo implementación de SupplierRepository sobre PostgreSQL.
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

const supplierColumns = `
	id, name, tax_id, email, phone, address, notes, active, created_at, updated_at`

// Create inserta un proveedor.
func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	query := `
		INSERT INTO suppliers (` + supplierColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.Name, s.TaxID, s.Email, s.Phone, s.Address, s.Notes,
		s.Active, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insertar proveedor: %w", err)
	}
	return nil
}

// GetByID obtiene un proveedor por id. Devuelve nil si no existe.
func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	query := `SELECT` + supplierColumns + ` FROM suppliers WHERE id = $1`
	s, err := scanSupplier(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// List lista proveedores con búsqueda por texto y paginación, más el total.
func (r *SupplierRepo) List(ctx context.Context, search string, limit, offset int) ([]*entity.Supplier, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += fmt.Sprintf(` AND (name ILIKE $%d OR tax_id ILIKE $%d)`, len(args), len(args))
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM suppliers`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count proveedores: %w", err)
	}

	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, offset)
	query := `SELECT` + supplierColumns + ` FROM suppliers` + where +
		fmt.Sprintf(` ORDER BY name ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listar proveedores: %w", err)
	}
	defer rows.Close()

	var result []*entity.Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, s)
	}
	return result, total, rows.Err()
}

// Update actualiza un proveedor.
func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	query := `
		UPDATE suppliers SET
			name = $2, tax_id = $3, email = $4, phone = $5, address = $6,
			notes = $7, active = $8, updated_at = $9
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.Name, s.TaxID, s.Email, s.Phone, s.Address, s.Notes, s.Active, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update proveedor: %w", err)
	}
	return nil
}

// Deactivate baja lógica.
func (r *SupplierRepo) Deactivate(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE suppliers SET active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("desactivar proveedor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanSupplier(row pgx.Row) (*entity.Supplier, error) {
	var s entity.Supplier
	err := row.Scan(
		&s.ID, &s.Name, &s.TaxID, &s.Email, &s.Phone, &s.Address, &s.Notes,
		&s.Active, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan proveedor: %w", err)
	}
	return &s, nil
}
