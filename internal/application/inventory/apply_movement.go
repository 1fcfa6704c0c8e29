package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/barratec/barra-api/internal/domain/entity"
	dominv "github.com/barratec/barra-api/internal/domain/inventory"
	"github.com/barratec/barra-api/internal/domain/repository"
)

// MovementOutcome es el resultado de aplicar un movimiento: el registro de
// stock actualizado y los asientos persistidos (uno por lote tocado cuando
// hubo abanico FIFO).
type MovementOutcome struct {
	Stock     *entity.Stock
	Movements []*entity.StockMovement
}

// Applied devuelve la cantidad total aplicada con signo.
func (o *MovementOutcome) Applied() decimal.Decimal {
	sum := decimal.Zero
	for _, m := range o.Movements {
		sum = sum.Add(m.Quantity)
	}
	return sum
}

// ApplyMovementUseCase aplica movimientos de stock de forma transaccional
// con bloqueo de fila por producto (SELECT FOR UPDATE) y Commit/Rollback.
type ApplyMovementUseCase struct {
	txRunner TxRunner
	notifier Notifier
}

// NewApplyMovementUseCase construye el caso de uso.
func NewApplyMovementUseCase(txRunner TxRunner, notifier Notifier) *ApplyMovementUseCase {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ApplyMovementUseCase{txRunner: txRunner, notifier: notifier}
}

// Apply ejecuta el movimiento en su propia transacción y emite los eventos
// después del commit.
func (uc *ApplyMovementUseCase) Apply(ctx context.Context, in dominv.MovementInput, opts dominv.ApplyOptions) (*MovementOutcome, error) {
	var outcome *MovementOutcome
	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
	) error {
		var txErr error
		outcome, txErr = uc.ApplyInTx(ctx, stockRepo, movRepo, in, opts)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	uc.emit(outcome, in.Type)
	return outcome, nil
}

// ApplyInTx ejecuta el movimiento con los repositorios del caller (misma
// transacción). No emite eventos: eso le corresponde al dueño de la
// transacción después del commit.
func (uc *ApplyMovementUseCase) ApplyInTx(
	ctx context.Context,
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
	in dominv.MovementInput,
	opts dominv.ApplyOptions,
) (*MovementOutcome, error) {
	stock, err := stockRepo.GetOrCreateForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	res, err := dominv.Apply(stock, in, opts, time.Now())
	if err != nil {
		return nil, err
	}
	if res.Applied.IsZero() {
		// Salida recortada a cero: sin asiento y sin cambios que guardar.
		return &MovementOutcome{Stock: stock}, nil
	}

	if err := stockRepo.Save(ctx, stock); err != nil {
		return nil, err
	}

	movements := make([]*entity.StockMovement, 0, len(res.Movements))
	for i := range res.Movements {
		mov := res.Movements[i]
		mov.ID = uuid.New().String()
		mov.StockID = stock.ID
		if err := movRepo.Create(ctx, &mov); err != nil {
			return nil, err
		}
		movements = append(movements, &mov)
	}
	return &MovementOutcome{Stock: stock, Movements: movements}, nil
}

// Emit publica los eventos de un outcome ya commiteado. Expuesto para que
// los casos de uso que corren ApplyInTx dentro de su propia transacción
// puedan emitir después del commit.
func (uc *ApplyMovementUseCase) Emit(outcome *MovementOutcome, reason string) {
	uc.emit(outcome, reason)
}

func (uc *ApplyMovementUseCase) emit(outcome *MovementOutcome, reason string) {
	if outcome == nil || len(outcome.Movements) == 0 {
		return
	}
	uc.notifier.StockChanged(outcome.Stock.ProductID, reason)
	for _, m := range outcome.Movements {
		uc.notifier.MovementCreated(outcome.Stock.ProductID, m)
	}
}
