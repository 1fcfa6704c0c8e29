package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barratec/barra-api/internal/domain"
	"github.com/barratec/barra-api/internal/domain/entity"
	"github.com/barratec/barra-api/internal/domain/inventory"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func newTestStock() *entity.Stock {
	return entity.NewStock("stock-1", "prod-1", testNow.Add(-24*time.Hour))
}

func entrada(qty string) inventory.MovementInput {
	return inventory.MovementInput{
		ProductID: "prod-1",
		Type:      entity.MovementTypePurchase,
		Quantity:  dec(qty),
	}
}

func salida(qty string) inventory.MovementInput {
	return inventory.MovementInput{
		ProductID: "prod-1",
		Type:      entity.MovementTypeSale,
		Quantity:  dec(qty).Neg(),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación de entrada
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_CantidadCeroEsInvalida(t *testing.T) {
	s := newTestStock()
	in := entrada("0")
	_, err := inventory.Apply(s, in, inventory.ApplyOptions{}, testNow)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApply_TipoDesconocidoEsInvalido(t *testing.T) {
	s := newTestStock()
	in := entrada("5")
	in.Type = "teleport"
	_, err := inventory.Apply(s, in, inventory.ApplyOptions{}, testNow)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApply_CantidadSeRedondeaASeisDecimales(t *testing.T) {
	s := newTestStock()
	res, err := inventory.Apply(s, entrada("1.00000049"), inventory.ApplyOptions{}, testNow)
	require.NoError(t, err)
	assert.True(t, res.Applied.Equal(dec("1")), "applied=%s", res.Applied)
}

// ──────────────────────────────────────────────────────────────────────────────
// Sin lotes: acumulación directa
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_EntradaDirectaSinLotes(t *testing.T) {
	s := newTestStock()
	res, err := inventory.Apply(s, entrada("10"), inventory.ApplyOptions{}, testNow)
	require.NoError(t, err)

	assert.True(t, res.Applied.Equal(dec("10")))
	assert.True(t, s.TotalAvailable().Equal(dec("10")))
	assert.Empty(t, s.Batches, "una entrada sin código en stock sin lotes no crea lote")
	require.Len(t, res.Movements, 1)
	assert.True(t, res.Movements[0].Quantity.Equal(dec("10")))
}

func TestApply_SalidaExcesivaSinOpcionesFalla(t *testing.T) {
	s := newTestStock()
	_, err := inventory.Apply(s, entrada("3"), inventory.ApplyOptions{}, testNow)
	require.NoError(t, err)

	_, err = inventory.Apply(s, salida("5"), inventory.ApplyOptions{}, testNow)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, s.TotalAvailable().Equal(dec("3")), "el registro no debe mutar cuando la validación falla")
}

func TestApply_SalidaExcesivaConCapRecortaALoDisponible(t *testing.T) {
	s := newTestStock()
	_, err := inventory.Apply(s, entrada("3"), inventory.ApplyOptions{}, testNow)
	require.NoError(t, err)

	res, err := inventory.Apply(s, salida("5"), inventory.ApplyOptions{CapToAvailable: true}, testNow)
	require.NoError(t, err)
	assert.True(t, res.Applied.Equal(dec("-3")))
	assert.True(t, s.TotalAvailable().IsZero())
}

func TestApply_SalidaConCapYDisponibleCeroNoGeneraAsiento(t *testing.T) {
	s := newTestStock()
	res, err := inventory.Apply(s, salida("5"), inventory.ApplyOptions{CapToAvailable: true}, testNow)
	require.NoError(t, err)
	assert.True(t, res.Applied.IsZero())
	assert.Empty(t, res.Movements)
	assert.Nil(t, s.LastMovementAt, "un movimiento sin efecto no toca el registro")
}

func TestApply_AllowNegativeDejaSaldoNegativoSinLotes(t *testing.T) {
	s := newTestStock()
	res, err := inventory.Apply(s, salida("4"), inventory.ApplyOptions{AllowNegative: true}, testNow)
	require.NoError(t, err)
	assert.True(t, res.Applied.Equal(dec("-4")))
	assert.True(t, s.TotalAvailable().Equal(dec("-4")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes con código
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_EntradaConCodigoCreaLote(t *testing.T) {
	s := newTestStock()
	in := entrada("12")
	in.BatchCode = "L-001"
	in.UnitCost = decPtr("2.5")
	exp := testNow.Add(72 * time.Hour)
	in.ExpiryDate = &exp

	res, err := inventory.Apply(s, in, inventory.ApplyOptions{}, testNow)
	require.NoError(t, err)

	require.Len(t, s.Batches, 1)
	b := s.Batches[0]
	assert.Equal(t, "L-001", b.Code)
	assert.True(t, b.Quantity.Equal(dec("12")))
	assert.True(t, b.InitialQuantity.Equal(dec("12")))
	assert.True(t, b.UnitCost.Equal(dec("2.5")))
	require.NotNil(t, b.ExpiryDate)
	assert.True(t, res.Applied.Equal(dec("12")))
}

func TestApply_EntradaAlMismoCodigoAcumula(t *testing.T) {
	s := newTestStock()
	in := entrada("10")
	in.BatchCode = "L-001"
	_, err := inventory.Apply(s, in, inventory.ApplyOptions{}, testNow)
	require.NoError(t, err)

	in2 := entrada("5")
	in2.BatchCode = "L-001"
	_, err = inventory.Apply(s, in2, inventory.ApplyOptions{}, testNow)
	require.NoError(t, err)

	require.Len(t, s.Batches, 1)
	assert.True(t, s.Batches[0].Quantity.Equal(dec("15")))
	assert.True(t, s.Batches[0].InitialQuantity.Equal(dec("15")))
}

func TestApply_SalidaDeLoteInexistenteFalla(t *testing.T) {
	s := newTestStock()
	out := salida("1")
	out.BatchCode = "NO-EXISTE"
	_, err := inventory.Apply(s, out, inventory.ApplyOptions{}, testNow)
	require.ErrorIs(t, err, domain.ErrBatchNotFound)
}

func TestApply_SalidaExcesivaDeLoteFalla(t *testing.T) {
	s := newTestStock()
	in := entrada("3")
	in.BatchCode = "L-001"
	_, err := inventory.Apply(s, in, inventory.ApplyOptions{}, testNow)
	require.NoError(t, err)

	out := salida("9")
	out.BatchCode = "L-001"
	_, err = inventory.Apply(s, out, inventory.ApplyOptions{}, testNow)
	require.ErrorIs(t, err, domain.ErrBatchInsufficient)
}

func TestApply_SalidaExcesivaDeLoteConAllowNegativeLoDejaNegativo(t *testing.T) {
	s := newTestStock()
	in := entrada("3")
	in.BatchCode = "L-001"
	_, err := inventory.Apply(s, in, inventory.ApplyOptions{}, testNow)
	require.NoError(t, err)

	out := salida("9")
	out.BatchCode = "L-001"
	res, err := inventory.Apply(s, out, inventory.ApplyOptions{AllowNegative: true}, testNow)
	require.NoError(t, err)

	assert.True(t, res.Applied.Equal(dec("-9")))
	require.Len(t, s.Batches, 1)
	assert.True(t, s.Batches[0].Quantity.Equal(dec("-6")))
	assert.True(t, s.TotalAvailable().Equal(dec("-6")))
}

func TestApply_LoteEnCeroSeElimina(t *testing.T) {
	s := newTestStock()
	in := entrada("3")
	in.BatchCode = "L-001"
	_, err := inventory.Apply(s, in, inventory.ApplyOptions{}, testNow)
	require.NoError(t, err)

	out := salida("3")
	out.BatchCode = "L-001"
	_, err = inventory.Apply(s, out, inventory.ApplyOptions{}, testNow)
	require.NoError(t, err)

	assert.Empty(t, s.Batches)
	assert.True(t, s.TotalAvailable().IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Entradas sin código con lotes presentes: pool anónimo
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_EntradaSinCodigoConLotesVaAlPoolAnonimo(t *testing.T) {
	s := newTestStock()
	in := entrada("10")
	in.BatchCode = "L-001"
	_, err := inventory.Apply(s, in, inventory.ApplyOptions{}, testNow)
	require.NoError(t, err)

	_, err = inventory.Apply(s, entrada("4"), inventory.ApplyOptions{}, testNow)
	require.NoError(t, err)

	require.Len(t, s.Batches, 2)
	idx := s.FindBatch("")
	require.NotEqual(t, -1, idx, "debe existir el lote anónimo")
	assert.True(t, s.Batches[idx].Quantity.Equal(dec("4")))
	assert.True(t, s.TotalAvailable().Equal(dec("14")), "la suma de lotes sigue siendo la disponibilidad autoritativa")

	// Una segunda entrada sin código acumula en el mismo pool.
	_, err = inventory.Apply(s, entrada("1"), inventory.ApplyOptions{}, testNow)
	require.NoError(t, err)
	require.Len(t, s.Batches, 2)
	assert.True(t, s.Batches[s.FindBatch("")].Quantity.Equal(dec("5")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Salidas FIFO
// ──────────────────────────────────────────────────────────────────────────────

func cargarTresLotes(t *testing.T, s *entity.Stock) {
	t.Helper()
	// L-TARDE vence en 10 días, L-PRONTO en 2, L-SINVTO no vence.
	pronto := testNow.Add(48 * time.Hour)
	tarde := testNow.Add(240 * time.Hour)

	in := entrada("5")
	in.BatchCode = "L-TARDE"
	in.ExpiryDate = &tarde
	_, err := inventory.Apply(s, in, inventory.ApplyOptions{}, testNow)
	require.NoError(t, err)

	in = entrada("5")
	in.BatchCode = "L-PRONTO"
	in.ExpiryDate = &pronto
	_, err = inventory.Apply(s, in, inventory.ApplyOptions{}, testNow.Add(time.Minute))
	require.NoError(t, err)

	in = entrada("5")
	in.BatchCode = "L-SINVTO"
	_, err = inventory.Apply(s, in, inventory.ApplyOptions{}, testNow.Add(2*time.Minute))
	require.NoError(t, err)
}

func TestApply_FIFOConsumePrimeroElQueVenceAntes(t *testing.T) {
	s := newTestStock()
	cargarTresLotes(t, s)

	res, err := inventory.Apply(s, salida("7"), inventory.ApplyOptions{}, testNow.Add(time.Hour))
	require.NoError(t, err)

	assert.True(t, res.Applied.Equal(dec("-7")))
	// 5 del que vence antes y 2 del siguiente; un asiento por lote tocado.
	require.Len(t, res.Movements, 2)
	assert.Equal(t, "L-PRONTO", res.Movements[0].BatchCode)
	assert.True(t, res.Movements[0].Quantity.Equal(dec("-5")))
	assert.Equal(t, "L-TARDE", res.Movements[1].BatchCode)
	assert.True(t, res.Movements[1].Quantity.Equal(dec("-2")))

	assert.Equal(t, -1, s.FindBatch("L-PRONTO"), "el lote agotado se elimina")
	assert.True(t, s.TotalAvailable().Equal(dec("8")))
}

func TestApply_FIFOLosLotesSinVencimientoVanAlFinal(t *testing.T) {
	s := newTestStock()
	cargarTresLotes(t, s)

	// 12 agota L-PRONTO y L-TARDE y toma 2 del que no vence.
	res, err := inventory.Apply(s, salida("12"), inventory.ApplyOptions{}, testNow.Add(time.Hour))
	require.NoError(t, err)

	require.Len(t, res.Movements, 3)
	assert.Equal(t, "L-SINVTO", res.Movements[2].BatchCode)
	assert.True(t, res.Movements[2].Quantity.Equal(dec("-2")))
	require.Len(t, s.Batches, 1)
	assert.True(t, s.Batches[0].Quantity.Equal(dec("3")))
}

func TestApply_FIFOConAllowNegativeDescargaElExcedenteEnElUltimoLote(t *testing.T) {
	s := newTestStock()
	cargarTresLotes(t, s)

	res, err := inventory.Apply(s, salida("20"), inventory.ApplyOptions{AllowNegative: true}, testNow.Add(time.Hour))
	require.NoError(t, err)

	assert.True(t, res.Applied.Equal(dec("-20")))
	assert.True(t, s.TotalAvailable().Equal(dec("-5")))
	// Solo sobrevive el último lote FIFO, en negativo.
	require.Len(t, s.Batches, 1)
	assert.Equal(t, "L-SINVTO", s.Batches[0].Code)
	assert.True(t, s.Batches[0].Quantity.Equal(dec("-5")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Costo promedio móvil
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_EntradaConCostoActualizaPromedio(t *testing.T) {
	s := newTestStock()

	in := entrada("10")
	in.UnitCost = decPtr("2")
	_, err := inventory.Apply(s, in, inventory.ApplyOptions{}, testNow)
	require.NoError(t, err)
	assert.True(t, s.AverageCost.Equal(dec("2")))

	in = entrada("10")
	in.UnitCost = decPtr("4")
	_, err = inventory.Apply(s, in, inventory.ApplyOptions{}, testNow)
	require.NoError(t, err)

	assert.True(t, s.AverageCost.Equal(dec("3")), "promedio=%s", s.AverageCost)
	assert.True(t, s.LastUnitCost.Equal(dec("4")))
}

func TestApply_SalidaNoTocaElCostoPromedio(t *testing.T) {
	s := newTestStock()
	in := entrada("10")
	in.UnitCost = decPtr("2")
	_, err := inventory.Apply(s, in, inventory.ApplyOptions{}, testNow)
	require.NoError(t, err)

	_, err = inventory.Apply(s, salida("5"), inventory.ApplyOptions{}, testNow)
	require.NoError(t, err)
	assert.True(t, s.AverageCost.Equal(dec("2")))
}
