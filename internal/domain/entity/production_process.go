package entity

import "time"

// Estados de un proceso de producción. Finished es terminal.
const (
	ProcessStatusRunning  = "running"
	ProcessStatusPaused   = "paused"
	ProcessStatusFinished = "finished"
)

// ProcessReferenceType es el referenceType que llevan los movimientos de
// stock generados al finalizar un proceso; sostiene el chequeo de idempotencia.
const ProcessReferenceType = "ProductionProcess"

// ProductionProcess representa una corrida de producción con su temporizador.
// El tiempo restante nunca se persiste: se deriva de TargetDurationMs,
// AccumulatedMs y StartedAt en el momento de la lectura.
type ProductionProcess struct {
	ID         string
	RecipeID   string
	RecipeName string // desnormalizado al crear

	OwnerID   string
	OwnerName string

	TargetDurationMs int64
	AccumulatedMs    int64      // tiempo corrido congelado en pausas
	StartedAt        *time.Time // inicio del intervalo corriente; nil si no está corriendo

	Status    string
	Minimized bool // pista de UI, sin peso de negocio

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ElapsedMs devuelve el tiempo total transcurrido al instante dado.
func (p *ProductionProcess) ElapsedMs(now time.Time) int64 {
	elapsed := p.AccumulatedMs
	if p.Status == ProcessStatusRunning && p.StartedAt != nil {
		elapsed += now.Sub(*p.StartedAt).Milliseconds()
	}
	return elapsed
}

// RemainingMs devuelve el tiempo restante derivado, nunca negativo.
func (p *ProductionProcess) RemainingMs(now time.Time) int64 {
	remaining := p.TargetDurationMs - p.ElapsedMs(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// FoldElapsed congela el intervalo corriente dentro de AccumulatedMs.
func (p *ProductionProcess) FoldElapsed(now time.Time) {
	if p.StartedAt != nil {
		p.AccumulatedMs += now.Sub(*p.StartedAt).Milliseconds()
		p.StartedAt = nil
	}
}
