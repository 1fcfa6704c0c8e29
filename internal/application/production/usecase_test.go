package production_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/barratec/barra-api/internal/application/inventory"
	"github.com/barratec/barra-api/internal/application/production"
	"github.com/barratec/barra-api/internal/domain"
	"github.com/barratec/barra-api/internal/domain/entity"
	dominv "github.com/barratec/barra-api/internal/domain/inventory"
)

var baseTime = time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

// recordingNotifier acumula los eventos emitidos.
type recordingNotifier struct {
	mu        sync.Mutex
	processes []*entity.ProductionProcess
	stock     []string
	movements []*entity.StockMovement
}

func (n *recordingNotifier) StockChanged(productID, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stock = append(n.stock, productID)
}

func (n *recordingNotifier) MovementCreated(_ string, m *entity.StockMovement) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.movements = append(n.movements, m)
}

func (n *recordingNotifier) ProcessChanged(p *entity.ProductionProcess) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.processes = append(n.processes, p)
}

// testClock reloj controlable para la matemática del cronómetro.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func setup(t *testing.T) (*memTxRunner, *production.ProcessUseCase, *testClock, *recordingNotifier) {
	t.Helper()
	runner := newMemTxRunner()
	clock := &testClock{now: baseTime}
	notifier := &recordingNotifier{}
	applyUC := appinv.NewApplyMovementUseCase(runner, notifier)
	consumeUC := appinv.NewConsumeByRecipeUseCase(runner, applyUC, notifier)
	uc := production.NewProcessUseCase(runner, runner.processes, runner.recipes, applyUC, consumeUC, notifier, clock.Now)

	runner.products.products = []*entity.Product{
		{ID: "p-naranja", Name: "Naranja", Active: true},
		{ID: "p-jugo", Name: "Jugo de naranja", Active: true, IsElaborated: true},
	}
	runner.recipes.recipes = []*entity.Recipe{{
		ID:   "r-jugo",
		Name: "Jugo de naranja",
		Ingredients: []entity.Ingredient{
			{Name: "naranja", Quantity: dec("3"), Unit: "un"},
		},
		YieldBase:      dec("1"),
		FinalProductID: "p-jugo",
		FinalUnit:      "l",
		Active:         true,
	}}

	// Stock de naranjas para consumir.
	_, err := applyUC.Apply(context.Background(), dominv.MovementInput{
		ProductID: "p-naranja",
		Type:      entity.MovementTypePurchase,
		Quantity:  dec("100"),
	}, dominv.ApplyOptions{})
	require.NoError(t, err)

	return runner, uc, clock, notifier
}

func crearProceso(t *testing.T, uc *production.ProcessUseCase) *entity.ProductionProcess {
	t.Helper()
	p, err := uc.Create(context.Background(), production.CreateInput{
		RecipeID:         "r-jugo",
		RecipeName:       "Jugo de naranja",
		TargetDurationMs: 10 * 60 * 1000,
		OwnerID:          "user-1",
		OwnerName:        "Barra Uno",
	})
	require.NoError(t, err)
	return p
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida y cronómetro
// ──────────────────────────────────────────────────────────────────────────────

func TestProcess_CreateArrancaCorriendoEnCero(t *testing.T) {
	_, uc, _, notifier := setup(t)
	p := crearProceso(t, uc)

	assert.Equal(t, entity.ProcessStatusRunning, p.Status)
	assert.Zero(t, p.AccumulatedMs)
	require.NotNil(t, p.StartedAt)
	assert.True(t, p.StartedAt.Equal(baseTime))
	assert.Len(t, notifier.processes, 1)
}

func TestProcess_CreateSinNombreFalla(t *testing.T) {
	_, uc, _, _ := setup(t)
	_, err := uc.Create(context.Background(), production.CreateInput{OwnerID: "user-1"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProcess_ElapsedSeDerivaNuncaSePersiste(t *testing.T) {
	_, uc, clock, _ := setup(t)
	p := crearProceso(t, uc)

	clock.Advance(5 * time.Minute)

	// El campo persistido sigue en cero; el transcurrido se deriva al leer.
	assert.Zero(t, p.AccumulatedMs)
	assert.Equal(t, int64(5*60*1000), p.ElapsedMs(clock.Now()))
	assert.Equal(t, int64(5*60*1000), p.RemainingMs(clock.Now()))
}

func TestProcess_PauseCongelaYResumeReanuda(t *testing.T) {
	_, uc, clock, _ := setup(t)
	p := crearProceso(t, uc)

	clock.Advance(5 * time.Minute)
	p, err := uc.Pause(context.Background(), p.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.ProcessStatusPaused, p.Status)
	assert.Equal(t, int64(5*60*1000), p.AccumulatedMs)
	assert.Nil(t, p.StartedAt)

	// En pausa el tiempo no corre.
	clock.Advance(30 * time.Minute)
	assert.Equal(t, int64(5*60*1000), p.ElapsedMs(clock.Now()))

	p, err = uc.Resume(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ProcessStatusRunning, p.Status)

	clock.Advance(2 * time.Minute)
	assert.Equal(t, int64(7*60*1000), p.ElapsedMs(clock.Now()))
	assert.Equal(t, int64(3*60*1000), p.RemainingMs(clock.Now()))
}

func TestProcess_RemainingNuncaEsNegativo(t *testing.T) {
	_, uc, clock, _ := setup(t)
	p := crearProceso(t, uc)

	clock.Advance(45 * time.Minute)
	assert.Zero(t, p.RemainingMs(clock.Now()))
}

func TestProcess_PauseDesdePausedFalla(t *testing.T) {
	_, uc, _, _ := setup(t)
	p := crearProceso(t, uc)

	_, err := uc.Pause(context.Background(), p.ID)
	require.NoError(t, err)
	_, err = uc.Pause(context.Background(), p.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestProcess_ResumeDesdeRunningFalla(t *testing.T) {
	_, uc, _, _ := setup(t)
	p := crearProceso(t, uc)

	_, err := uc.Resume(context.Background(), p.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestProcess_ListSoloDelDuenoSalvoAdmin(t *testing.T) {
	_, uc, _, _ := setup(t)
	crearProceso(t, uc)
	_, err := uc.Create(context.Background(), production.CreateInput{
		RecipeName: "Otro", OwnerID: "user-2",
	})
	require.NoError(t, err)

	propios, err := uc.List(context.Background(), "user-1", false)
	require.NoError(t, err)
	assert.Len(t, propios, 1)

	todos, err := uc.List(context.Background(), "user-1", true)
	require.NoError(t, err)
	assert.Len(t, todos, 2)
}

func TestProcess_CancelCierraSinConsumir(t *testing.T) {
	runner, uc, clock, _ := setup(t)
	p := crearProceso(t, uc)

	clock.Advance(3 * time.Minute)
	p, err := uc.Cancel(context.Background(), p.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.ProcessStatusFinished, p.Status)
	assert.Equal(t, int64(3*60*1000), p.AccumulatedMs)
	assert.Len(t, runner.movements.movements, 1, "solo la compra del setup; cancelar no genera movimientos")

	_, err = uc.Cancel(context.Background(), p.ID)
	require.ErrorIs(t, err, domain.ErrAlreadyFinalized)
}

// ──────────────────────────────────────────────────────────────────────────────
// Finalize
// ──────────────────────────────────────────────────────────────────────────────

func TestProcess_FinalizeConsumeYDaDeAltaElProducto(t *testing.T) {
	runner, uc, clock, _ := setup(t)
	p := crearProceso(t, uc)
	clock.Advance(8 * time.Minute)

	result, err := uc.Finalize(context.Background(), p.ID, production.FinalizeInput{
		ProducedQuantity: dec("2"),
		ActorID:          "user-1",
	})
	require.NoError(t, err)

	assert.False(t, result.AlreadyFinalized)
	assert.Equal(t, entity.ProcessStatusFinished, result.Process.Status)
	assert.Equal(t, int64(8*60*1000), result.Process.AccumulatedMs)

	// Insumos: 3 naranjas x2.
	require.NotNil(t, result.Consumption)
	require.Len(t, result.Consumption.Affected, 1)
	assert.True(t, result.Consumption.Affected[0].Delta.Equal(dec("-6")))

	naranjas, err := runner.stocks.GetByProduct(context.Background(), "p-naranja")
	require.NoError(t, err)
	assert.True(t, naranjas.TotalAvailable().Equal(dec("94")))

	// Producto final: 2 litros ingresados con la unidad de la receta.
	require.NotNil(t, result.Output)
	jugo, err := runner.stocks.GetByProduct(context.Background(), "p-jugo")
	require.NoError(t, err)
	assert.True(t, jugo.TotalAvailable().Equal(dec("2")))
	require.Len(t, result.Output.Movements, 1)
	assert.Equal(t, "l", result.Output.Movements[0].Unit)
	assert.Equal(t, entity.ProcessReferenceType, result.Output.Movements[0].ReferenceType)
	assert.Equal(t, p.ID, result.Output.Movements[0].ReferenceID)
}

func TestProcess_FinalizeEsIdempotente(t *testing.T) {
	runner, uc, _, _ := setup(t)
	p := crearProceso(t, uc)

	_, err := uc.Finalize(context.Background(), p.ID, production.FinalizeInput{})
	require.NoError(t, err)
	persisted := len(runner.movements.movements)

	result, err := uc.Finalize(context.Background(), p.ID, production.FinalizeInput{})
	require.NoError(t, err)

	assert.True(t, result.AlreadyFinalized)
	assert.Nil(t, result.Consumption, "un reintento no vuelve a consumir")
	assert.Nil(t, result.Output)
	assert.Len(t, runner.movements.movements, persisted, "sin asientos nuevos")
}

func TestProcess_FinalizeViaPatchNoBurlaLaIdempotencia(t *testing.T) {
	// Marcar finished por Patch y luego finalizar: el reintento detecta el
	// estado terminal y no consume.
	runner, uc, _, _ := setup(t)
	p := crearProceso(t, uc)

	finished := entity.ProcessStatusFinished
	_, err := uc.Patch(context.Background(), p.ID, production.PatchInput{Status: &finished})
	require.NoError(t, err)

	result, err := uc.Finalize(context.Background(), p.ID, production.FinalizeInput{})
	require.NoError(t, err)
	assert.True(t, result.AlreadyFinalized)
	assert.Len(t, runner.movements.movements, 1, "solo la compra del setup")
}

func TestProcess_FinalizeInexistenteDevuelveNotFound(t *testing.T) {
	_, uc, _, _ := setup(t)
	_, err := uc.Finalize(context.Background(), "no-existe", production.FinalizeInput{})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProcess_FinalizeSinRecetaSoloMarcaFinished(t *testing.T) {
	runner, uc, _, _ := setup(t)
	p, err := uc.Create(context.Background(), production.CreateInput{
		RecipeName: "Preparación libre",
		OwnerID:    "user-1",
	})
	require.NoError(t, err)

	result, err := uc.Finalize(context.Background(), p.ID, production.FinalizeInput{})
	require.NoError(t, err)

	assert.Equal(t, entity.ProcessStatusFinished, result.Process.Status)
	assert.Nil(t, result.Consumption)
	assert.Nil(t, result.Output)
	assert.Len(t, runner.movements.movements, 1, "solo la compra del setup")
}

func TestProcess_FinalizeCantidadDefaultEsUno(t *testing.T) {
	_, uc, _, _ := setup(t)
	p := crearProceso(t, uc)

	result, err := uc.Finalize(context.Background(), p.ID, production.FinalizeInput{})
	require.NoError(t, err)

	require.NotNil(t, result.Consumption)
	assert.True(t, result.Consumption.Quantity.Equal(dec("1")))
	assert.True(t, result.Consumption.Affected[0].Delta.Equal(dec("-3")))
}

func TestProcess_FinalizeReintentadoEmiteSoloLoConfirmado(t *testing.T) {
	// El primer intento se descarta como un rollback por serialización; los
	// eventos deben corresponder solo a los asientos del intento confirmado.
	runner, _, clock, _ := setup(t)
	retry := &retryTxRunner{memTxRunner: runner, aborts: 1}
	notifier := &recordingNotifier{}
	applyUC := appinv.NewApplyMovementUseCase(runner, notifier)
	consumeUC := appinv.NewConsumeByRecipeUseCase(runner, applyUC, notifier)
	uc := production.NewProcessUseCase(retry, runner.processes, runner.recipes, applyUC, consumeUC, notifier, clock.Now)

	p := crearProceso(t, uc)
	before := len(runner.movements.movements)

	result, err := uc.Finalize(context.Background(), p.ID, production.FinalizeInput{ProducedQuantity: dec("2")})
	require.NoError(t, err)
	assert.False(t, result.AlreadyFinalized)

	committed := runner.movements.movements[before:]
	require.Len(t, committed, 2, "consumo del insumo + alta del producto final")
	persisted := map[string]bool{}
	for _, m := range committed {
		persisted[m.ID] = true
	}

	require.Len(t, notifier.movements, 2, "sin eventos del intento abortado ni duplicados")
	for _, m := range notifier.movements {
		assert.True(t, persisted[m.ID], "asiento emitido no persistido: %s", m.ID)
	}
}

func TestProcess_FinalizeRevierteTodoSiFallaElAlta(t *testing.T) {
	// Si el alta del producto final falla después de consumir los insumos,
	// nada queda persistido: ni asientos ni el cambio de estado.
	runner, uc, clock, _ := setup(t)
	p := crearProceso(t, uc)
	clock.Advance(4 * time.Minute)

	before := len(runner.movements.movements)
	runner.stocks.failAfter = runner.stocks.saves + 1 // el consumo pasa, el alta falla

	_, err := uc.Finalize(context.Background(), p.ID, production.FinalizeInput{ProducedQuantity: dec("2")})
	require.Error(t, err)

	assert.Len(t, runner.movements.movements, before)
	naranjas, err := runner.stocks.GetByProduct(context.Background(), "p-naranja")
	require.NoError(t, err)
	assert.True(t, naranjas.TotalAvailable().Equal(dec("100")), "el consumo debe revertirse")

	stored, err := runner.processes.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ProcessStatusRunning, stored.Status)
	assert.Equal(t, int64(0), stored.AccumulatedMs)

	// Sin el fallo, el mismo proceso finaliza normalmente.
	runner.stocks.failAfter = 0
	result, err := uc.Finalize(context.Background(), p.ID, production.FinalizeInput{ProducedQuantity: dec("2")})
	require.NoError(t, err)
	assert.False(t, result.AlreadyFinalized)
	assert.Len(t, runner.movements.movements, before+2)
}

func TestProcess_ListExcluyeFinalizados(t *testing.T) {
	_, uc, _, _ := setup(t)
	p := crearProceso(t, uc)

	_, err := uc.Finalize(context.Background(), p.ID, production.FinalizeInput{})
	require.NoError(t, err)

	activos, err := uc.List(context.Background(), "user-1", false)
	require.NoError(t, err)
	assert.Empty(t, activos)
}
