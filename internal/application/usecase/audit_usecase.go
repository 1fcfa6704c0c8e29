package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/barratec/barra-api/internal/application/dto"
	"github.com/barratec/barra-api/internal/domain/entity"
	"github.com/barratec/barra-api/internal/domain/repository"
)

// AuditUseCase registra y consulta el rastro de auditoría. La escritura es
// best-effort: un fallo se loguea y no corta la operación principal.
type AuditUseCase struct {
	repo repository.AuditLogRepository
	log  zerolog.Logger
}

// NewAuditUseCase construye el caso de uso.
func NewAuditUseCase(repo repository.AuditLogRepository, log zerolog.Logger) *AuditUseCase {
	return &AuditUseCase{repo: repo, log: log}
}

// Record persiste una entrada de auditoría. Nunca devuelve error.
func (uc *AuditUseCase) Record(ctx context.Context, actorID, actorName, action, entityType, entityID, detail string) {
	entry := &entity.AuditLog{
		ID:         uuid.New().String(),
		ActorID:    actorID,
		ActorName:  actorName,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
		CreatedAt:  time.Now(),
	}
	if err := uc.repo.Create(ctx, entry); err != nil {
		uc.log.Warn().Err(err).Str("action", action).Msg("no se pudo escribir auditoría")
	}
}

// List consulta el rastro con filtros opcionales.
func (uc *AuditUseCase) List(ctx context.Context, actorID, action, entityType string, page dto.PageRequest) (*dto.AuditListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, repository.AuditListFilter{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.AuditLogResponse, 0, len(list))
	for _, e := range list {
		items = append(items, dto.AuditLogResponse{
			ID:         e.ID,
			ActorID:    e.ActorID,
			ActorName:  e.ActorName,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Detail:     e.Detail,
			CreatedAt:  e.CreatedAt,
		})
	}
	return &dto.AuditListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}
