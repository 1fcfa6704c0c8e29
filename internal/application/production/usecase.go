// Package production implementa la máquina de estados de los procesos de
// producción: running → paused → running → … → finished (terminal).
// Finalizar es la transición con consecuencias: descuenta los insumos de la
// receta y da de alta el producto final, todo en una sola transacción junto
// con el cambio de estado del proceso.
package production

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appinv "github.com/barratec/barra-api/internal/application/inventory"
	"github.com/barratec/barra-api/internal/domain"
	"github.com/barratec/barra-api/internal/domain/entity"
	dominv "github.com/barratec/barra-api/internal/domain/inventory"
	"github.com/barratec/barra-api/internal/domain/repository"
)

// ProcessUseCase operaciones sobre procesos de producción.
type ProcessUseCase struct {
	txRunner    appinv.TxRunner
	processRepo repository.ProductionProcessRepository
	recipeRepo  repository.RecipeRepository
	applyUC     *appinv.ApplyMovementUseCase
	consumeUC   *appinv.ConsumeByRecipeUseCase
	notifier    appinv.Notifier
	now         func() time.Time
}

// NewProcessUseCase construye el caso de uso. now es inyectable para tests;
// nil usa time.Now.
func NewProcessUseCase(
	txRunner appinv.TxRunner,
	processRepo repository.ProductionProcessRepository,
	recipeRepo repository.RecipeRepository,
	applyUC *appinv.ApplyMovementUseCase,
	consumeUC *appinv.ConsumeByRecipeUseCase,
	notifier appinv.Notifier,
	now func() time.Time,
) *ProcessUseCase {
	if notifier == nil {
		notifier = appinv.NopNotifier{}
	}
	if now == nil {
		now = time.Now
	}
	return &ProcessUseCase{
		txRunner:    txRunner,
		processRepo: processRepo,
		recipeRepo:  recipeRepo,
		applyUC:     applyUC,
		consumeUC:   consumeUC,
		notifier:    notifier,
		now:         now,
	}
}

// CreateInput datos para crear un proceso.
type CreateInput struct {
	RecipeID         string
	RecipeName       string
	TargetDurationMs int64
	OwnerID          string
	OwnerName        string
}

// Create da de alta un proceso corriendo con el cronómetro en cero.
func (uc *ProcessUseCase) Create(ctx context.Context, in CreateInput) (*entity.ProductionProcess, error) {
	if in.RecipeName == "" {
		return nil, fmt.Errorf("%w: nombreReceta es obligatorio", domain.ErrInvalidInput)
	}
	if in.OwnerID == "" {
		return nil, fmt.Errorf("%w: usuario es obligatorio", domain.ErrInvalidInput)
	}
	now := uc.now()
	p := &entity.ProductionProcess{
		ID:               uuid.New().String(),
		RecipeID:         in.RecipeID,
		RecipeName:       in.RecipeName,
		OwnerID:          in.OwnerID,
		OwnerName:        in.OwnerName,
		TargetDurationMs: in.TargetDurationMs,
		AccumulatedMs:    0,
		StartedAt:        &now,
		Status:           entity.ProcessStatusRunning,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.processRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	uc.notifier.ProcessChanged(p)
	return p, nil
}

// List devuelve los procesos no finalizados del dueño (o todos si admin),
// más recientes primero.
func (uc *ProcessUseCase) List(ctx context.Context, ownerID string, isAdmin bool) ([]*entity.ProductionProcess, error) {
	filter := repository.ProcessListFilter{ExcludeFinished: true}
	if !isAdmin {
		filter.OwnerID = ownerID
	}
	return uc.processRepo.List(ctx, filter)
}

// Get devuelve un proceso por id.
func (uc *ProcessUseCase) Get(ctx context.Context, id string) (*entity.ProductionProcess, error) {
	p, err := uc.processRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: proceso %s", domain.ErrNotFound, id)
	}
	return p, nil
}

// Pause congela el cronómetro. Válido solo desde running.
func (uc *ProcessUseCase) Pause(ctx context.Context, id string) (*entity.ProductionProcess, error) {
	p, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != entity.ProcessStatusRunning {
		return nil, fmt.Errorf("%w: el proceso no está en ejecución", domain.ErrInvalidTransition)
	}
	now := uc.now()
	p.FoldElapsed(now)
	p.Status = entity.ProcessStatusPaused
	p.UpdatedAt = now
	if err := uc.processRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	uc.notifier.ProcessChanged(p)
	return p, nil
}

// Resume reinicia el intervalo corriente. Válido solo desde paused.
func (uc *ProcessUseCase) Resume(ctx context.Context, id string) (*entity.ProductionProcess, error) {
	p, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != entity.ProcessStatusPaused {
		return nil, fmt.Errorf("%w: el proceso no está pausado", domain.ErrInvalidTransition)
	}
	now := uc.now()
	p.StartedAt = &now
	p.Status = entity.ProcessStatusRunning
	p.UpdatedAt = now
	if err := uc.processRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	uc.notifier.ProcessChanged(p)
	return p, nil
}

// PatchInput campos permitidos en la actualización parcial (allow-list).
type PatchInput struct {
	Status     *string
	Minimized  *bool
	RecipeName *string
}

// Patch aplica una corrección liviana sin pasar por pause/resume.
func (uc *ProcessUseCase) Patch(ctx context.Context, id string, in PatchInput) (*entity.ProductionProcess, error) {
	p, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	if in.Status != nil {
		switch *in.Status {
		case entity.ProcessStatusRunning, entity.ProcessStatusPaused, entity.ProcessStatusFinished:
			p.Status = *in.Status
		default:
			return nil, fmt.Errorf("%w: status %q", domain.ErrInvalidInput, *in.Status)
		}
	}
	if in.Minimized != nil {
		p.Minimized = *in.Minimized
	}
	if in.RecipeName != nil && *in.RecipeName != "" {
		p.RecipeName = *in.RecipeName
	}
	p.UpdatedAt = now
	if err := uc.processRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	uc.notifier.ProcessChanged(p)
	return p, nil
}

// Cancel aborta la corrida: congela el tiempo y fuerza finished sin
// disparar consumo de stock.
func (uc *ProcessUseCase) Cancel(ctx context.Context, id string) (*entity.ProductionProcess, error) {
	p, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == entity.ProcessStatusFinished {
		return nil, fmt.Errorf("%w", domain.ErrAlreadyFinalized)
	}
	now := uc.now()
	if p.Status == entity.ProcessStatusRunning {
		p.FoldElapsed(now)
	}
	p.Status = entity.ProcessStatusFinished
	p.UpdatedAt = now
	if err := uc.processRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	uc.notifier.ProcessChanged(p)
	return p, nil
}

// Delete elimina un proceso.
func (uc *ProcessUseCase) Delete(ctx context.Context, id string) error {
	p, err := uc.Get(ctx, id)
	if err != nil {
		return err
	}
	return uc.processRepo.Delete(ctx, p.ID)
}

// FinalizeInput parámetros de finalización.
type FinalizeInput struct {
	ProducedQuantity decimal.Decimal // default 1
	OutputProductID  string          // anula el productoFinal de la receta
	OutputUnit       string
	OutputBatchCode  string
	OutputExpiry     *time.Time
	ActorID          string
}

// FinalizeResult resultado de la finalización.
type FinalizeResult struct {
	Process          *entity.ProductionProcess
	AlreadyFinalized bool
	Consumption      *appinv.ConsumeByRecipeResult
	Output           *appinv.MovementOutcome
}

// Finalize es idempotente: si el proceso ya está finished, o algún
// movimiento ya lo referencia, devuelve el estado actual sin volver a
// consumir. Si no: congela el tiempo, marca finished, descuenta los insumos
// de la receta y da de alta el producto final, todo en una transacción; si
// algo falla nada queda persistido, incluido el cambio de estado.
func (uc *ProcessUseCase) Finalize(ctx context.Context, id string, in FinalizeInput) (*FinalizeResult, error) {
	produced := in.ProducedQuantity
	if !produced.IsPositive() {
		produced = decimal.NewFromInt(1)
	}

	var (
		result   FinalizeResult
		outcomes []*appinv.MovementOutcome
	)
	err := uc.txRunner.RunProduction(ctx, func(
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		recipeRepo repository.RecipeRepository,
		processRepo repository.ProductionProcessRepository,
	) error {
		// El runner reintenta ante fallos de serialización: lo acumulado por
		// un intento abortado no debe sobrevivir.
		result = FinalizeResult{}
		outcomes = nil

		p, err := processRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: proceso %s", domain.ErrNotFound, id)
		}
		result.Process = p

		applied, err := movRepo.ExistsByReference(ctx, entity.ProcessReferenceType, p.ID)
		if err != nil {
			return err
		}
		if p.Status == entity.ProcessStatusFinished || applied {
			result.AlreadyFinalized = true
			return nil
		}

		now := uc.now()
		if p.Status == entity.ProcessStatusRunning {
			p.FoldElapsed(now)
		}
		p.Status = entity.ProcessStatusFinished
		p.UpdatedAt = now
		if err := processRepo.Update(ctx, p); err != nil {
			return err
		}

		var recipe *entity.Recipe
		if p.RecipeID != "" {
			recipe, err = recipeRepo.GetByID(ctx, p.RecipeID)
			if err != nil {
				return err
			}
			if recipe != nil {
				consumption, consumed, err := uc.consumeUC.ConsumeInTx(ctx, stockRepo, movRepo, productRepo, recipeRepo, appinv.ConsumeByRecipeInput{
					RecipeID:      p.RecipeID,
					Quantity:      produced,
					ReferenceType: entity.ProcessReferenceType,
					ReferenceID:   p.ID,
					ActorID:       in.ActorID,
				})
				if err != nil {
					return err
				}
				result.Consumption = consumption
				outcomes = append(outcomes, consumed...)
			}
		}

		outputProductID := in.OutputProductID
		if outputProductID == "" && recipe != nil {
			outputProductID = recipe.FinalProductID
		}
		if outputProductID != "" {
			unit := in.OutputUnit
			if unit == "" && recipe != nil {
				unit = recipe.FinalUnit
			}
			if unit == "" {
				unit = "un"
			}
			output, err := uc.applyUC.ApplyInTx(ctx, stockRepo, movRepo, dominv.MovementInput{
				ProductID:     outputProductID,
				Type:          entity.MovementTypeProduction,
				Quantity:      produced,
				Unit:          unit,
				BatchCode:     in.OutputBatchCode,
				ExpiryDate:    in.OutputExpiry,
				ReferenceType: entity.ProcessReferenceType,
				ReferenceID:   p.ID,
				Notes:         fmt.Sprintf("Producción x%s", produced),
				ActorID:       in.ActorID,
			}, dominv.ApplyOptions{})
			if err != nil {
				return err
			}
			result.Output = output
			outcomes = append(outcomes, output)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyFinalized {
		uc.notifier.ProcessChanged(result.Process)
		for _, o := range outcomes {
			uc.applyUC.Emit(o, entity.MovementTypeProduction)
		}
	}
	return &result, nil
}
