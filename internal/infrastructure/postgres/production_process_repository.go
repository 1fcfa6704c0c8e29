package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/barratec/barra-api/internal/domain/entity"
	"github.com/barratec/barra-api/internal/domain/repository"
)

var _ repository.ProductionProcessRepository = (*ProductionProcessRepo)(nil)

// ProductionProcessRepo implementación de ProductionProcessRepository sobre PostgreSQL.
type ProductionProcessRepo struct {
	q Querier
}

// NewProductionProcessRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductionProcessRepository(q Querier) *ProductionProcessRepo {
	return &ProductionProcessRepo{q: q}
}

const processColumns = `
	id, recipe_id, recipe_name, owner_id, owner_name, target_duration_ms,
	accumulated_ms, started_at, status, minimized, created_at, updated_at`

// Create inserta un proceso.
func (r *ProductionProcessRepo) Create(ctx context.Context, p *entity.ProductionProcess) error {
	query := `
		INSERT INTO production_processes (` + processColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		p.ID, nullIfEmpty(p.RecipeID), p.RecipeName, p.OwnerID, p.OwnerName, p.TargetDurationMs,
		p.AccumulatedMs, p.StartedAt, p.Status, p.Minimized, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insertar proceso: %w", err)
	}
	return nil
}

// GetByID obtiene un proceso por id. Devuelve nil si no existe.
func (r *ProductionProcessRepo) GetByID(ctx context.Context, id string) (*entity.ProductionProcess, error) {
	query := `SELECT` + processColumns + ` FROM production_processes WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetForUpdate bloquea la fila del proceso dentro de la transacción en curso.
func (r *ProductionProcessRepo) GetForUpdate(ctx context.Context, id string) (*entity.ProductionProcess, error) {
	query := `SELECT` + processColumns + ` FROM production_processes WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

// Update actualiza un proceso.
func (r *ProductionProcessRepo) Update(ctx context.Context, p *entity.ProductionProcess) error {
	query := `
		UPDATE production_processes SET
			recipe_id = $2, recipe_name = $3, target_duration_ms = $4,
			accumulated_ms = $5, started_at = $6, status = $7, minimized = $8,
			updated_at = $9
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		p.ID, nullIfEmpty(p.RecipeID), p.RecipeName, p.TargetDurationMs,
		p.AccumulatedMs, p.StartedAt, p.Status, p.Minimized, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update proceso: %w", err)
	}
	return nil
}

// List lista procesos con filtros, más recientes primero.
func (r *ProductionProcessRepo) List(ctx context.Context, filter repository.ProcessListFilter) ([]*entity.ProductionProcess, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		where += fmt.Sprintf(` AND owner_id = $%d`, len(args))
	}
	if filter.ExcludeFinished {
		where += ` AND status <> 'finished'`
	}
	query := `SELECT` + processColumns + ` FROM production_processes` + where +
		` ORDER BY created_at DESC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar procesos: %w", err)
	}
	defer rows.Close()

	var result []*entity.ProductionProcess
	for rows.Next() {
		p, err := scanProcess(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// Delete elimina un proceso.
func (r *ProductionProcessRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM production_processes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete proceso: %w", err)
	}
	return nil
}

func (r *ProductionProcessRepo) getOne(ctx context.Context, query string, arg any) (*entity.ProductionProcess, error) {
	p, err := scanProcess(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func scanProcess(row pgx.Row) (*entity.ProductionProcess, error) {
	var p entity.ProductionProcess
	var recipeID *string
	err := row.Scan(
		&p.ID, &recipeID, &p.RecipeName, &p.OwnerID, &p.OwnerName, &p.TargetDurationMs,
		&p.AccumulatedMs, &p.StartedAt, &p.Status, &p.Minimized, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan proceso: %w", err)
	}
	if recipeID != nil {
		p.RecipeID = *recipeID
	}
	return &p, nil
}
