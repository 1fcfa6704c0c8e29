package postgres

import (
	"context"
	"fmt"

	"github.com/barratec/barra-api/internal/domain/entity"
	"github.com/barratec/barra-api/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo registro de auditoría append-only sobre PostgreSQL.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

// Create inserta una entrada de auditoría.
func (r *AuditLogRepo) Create(ctx context.Context, log *entity.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, actor_id, actor_name, action, entity_type, entity_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		log.ID, log.ActorID, log.ActorName, log.Action, log.EntityType, log.EntityID, log.Detail, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insertar auditoría: %w", err)
	}
	return nil
}

// List consulta el rastro con filtros, más reciente primero.
func (r *AuditLogRepo) List(ctx context.Context, filter repository.AuditListFilter) ([]*entity.AuditLog, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.ActorID != "" {
		args = append(args, filter.ActorID)
		where += fmt.Sprintf(` AND actor_id = $%d`, len(args))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		where += fmt.Sprintf(` AND action = $%d`, len(args))
	}
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		where += fmt.Sprintf(` AND entity_type = $%d`, len(args))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	query := `
		SELECT id, actor_id, actor_name, action, entity_type, entity_id, detail, created_at
		FROM audit_logs` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar auditoría: %w", err)
	}
	defer rows.Close()

	var result []*entity.AuditLog
	for rows.Next() {
		var e entity.AuditLog
		if err := rows.Scan(
			&e.ID, &e.ActorID, &e.ActorName, &e.Action, &e.EntityType, &e.EntityID, &e.Detail, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan auditoría: %w", err)
		}
		result = append(result, &e)
	}
	return result, rows.Err()
}
