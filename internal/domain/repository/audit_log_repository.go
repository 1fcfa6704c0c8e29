package repository

import (
	"context"

	"github.com/barratec/barra-api/internal/domain/entity"
)

// AuditListFilter filtros del listado de auditoría.
type AuditListFilter struct {
	ActorID    string
	Action     string
	EntityType string
	Limit      int
	Offset     int
}

// AuditLogRepository puerto del registro de auditoría (append-only).
type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	List(ctx context.Context, filter AuditListFilter) ([]*entity.AuditLog, error)
}
