package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barratec/barra-api/internal/application/inventory"
	"github.com/barratec/barra-api/internal/domain"
	"github.com/barratec/barra-api/internal/domain/entity"
	dominv "github.com/barratec/barra-api/internal/domain/inventory"
)

func setupConsume(t *testing.T) (*memTxRunner, *inventory.ConsumeByRecipeUseCase, *recordingNotifier) {
	t.Helper()
	runner := newMemTxRunner()
	notifier := &recordingNotifier{}
	applyUC := inventory.NewApplyMovementUseCase(runner, notifier)
	consumeUC := inventory.NewConsumeByRecipeUseCase(runner, applyUC, notifier)

	runner.products.products = []*entity.Product{
		{ID: "p-limon", Name: "Limón", Active: true},
		{ID: "p-azucar", Name: "Azúcar blanca", Active: true},
		{ID: "p-ron", Name: "Ron añejo", Active: true},
	}
	runner.recipes.recipes = []*entity.Recipe{{
		ID:   "r-daiquiri",
		Name: "Daiquiri",
		Ingredients: []entity.Ingredient{
			{Name: "ron añejo", Quantity: dec("60"), Unit: "ml"},
			{Name: "limón", Quantity: dec("30"), Unit: "ml"},
			{Name: "azúcar", Quantity: dec("15"), Unit: "g"},
		},
		YieldBase: dec("1"),
		Active:    true,
	}}

	// Stock inicial holgado para ron y limón; azúcar queda corto a propósito.
	ctx := context.Background()
	for _, seed := range []struct{ id, qty string }{
		{"p-ron", "1000"}, {"p-limon", "500"}, {"p-azucar", "10"},
	} {
		_, err := applyUC.Apply(ctx, compra(seed.id, seed.qty), dominv.ApplyOptions{})
		require.NoError(t, err)
	}
	return runner, consumeUC, notifier
}

func TestConsumeByRecipe_DescuentaEscaladoPorCantidad(t *testing.T) {
	_, uc, _ := setupConsume(t)

	result, err := uc.Consume(context.Background(), inventory.ConsumeByRecipeInput{
		RecipeID: "r-daiquiri",
		Quantity: dec("2"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Daiquiri", result.RecipeName)
	assert.True(t, result.Quantity.Equal(dec("2")))
	require.Len(t, result.Affected, 3)
	assert.Empty(t, result.Unmatched)

	byProduct := map[string]inventory.ConsumedItem{}
	for _, it := range result.Affected {
		byProduct[it.ProductID] = it
	}
	assert.True(t, byProduct["p-ron"].Delta.Equal(dec("-120")), "60ml x2")
	assert.True(t, byProduct["p-limon"].Delta.Equal(dec("-60")))
	assert.True(t, byProduct["p-ron"].Available.Equal(dec("880")))
}

func TestConsumeByRecipe_EscalaPorRendimientoBase(t *testing.T) {
	runner, uc, _ := setupConsume(t)
	runner.recipes.recipes[0].YieldBase = dec("4")

	// Cantidad 1 con rendimiento 4: factor 0.25.
	result, err := uc.Consume(context.Background(), inventory.ConsumeByRecipeInput{
		RecipeID: "r-daiquiri",
		Quantity: dec("1"),
	})
	require.NoError(t, err)

	byProduct := map[string]inventory.ConsumedItem{}
	for _, it := range result.Affected {
		byProduct[it.ProductID] = it
	}
	assert.True(t, byProduct["p-ron"].Delta.Equal(dec("-15")), "60ml / 4")
}

func TestConsumeByRecipe_CantidadNoPositivaUsaUno(t *testing.T) {
	_, uc, _ := setupConsume(t)

	result, err := uc.Consume(context.Background(), inventory.ConsumeByRecipeInput{
		RecipeID: "r-daiquiri",
	})
	require.NoError(t, err)
	assert.True(t, result.Quantity.Equal(dec("1")))
}

func TestConsumeByRecipe_StockCortoSeRecortaALoDisponible(t *testing.T) {
	_, uc, _ := setupConsume(t)

	// Azúcar: 15g por unidad, hay 10. El descuento se recorta, no falla.
	result, err := uc.Consume(context.Background(), inventory.ConsumeByRecipeInput{
		RecipeID: "r-daiquiri",
		Quantity: dec("1"),
	})
	require.NoError(t, err)

	byProduct := map[string]inventory.ConsumedItem{}
	for _, it := range result.Affected {
		byProduct[it.ProductID] = it
	}
	assert.True(t, byProduct["p-azucar"].Delta.Equal(dec("-10")))
	assert.True(t, byProduct["p-azucar"].Available.IsZero())
}

func TestConsumeByRecipe_IngredienteSinMatchVaAUnmatched(t *testing.T) {
	runner, uc, _ := setupConsume(t)
	runner.recipes.recipes[0].Ingredients = append(runner.recipes.recipes[0].Ingredients,
		entity.Ingredient{Name: "angostura", Quantity: dec("2"), Unit: "ml"})

	result, err := uc.Consume(context.Background(), inventory.ConsumeByRecipeInput{
		RecipeID: "r-daiquiri",
		Quantity: dec("1"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"angostura"}, result.Unmatched)
	assert.Len(t, result.Affected, 3, "los demás ingredientes se descuentan igual")
}

func TestConsumeByRecipe_ProductIDExplicitoGanaAlMatcher(t *testing.T) {
	runner, uc, _ := setupConsume(t)
	runner.recipes.recipes[0].Ingredients = []entity.Ingredient{
		// El nombre apunta a otro producto; la referencia explícita manda.
		{Name: "limón", Quantity: dec("10"), Unit: "ml", ProductID: "p-ron"},
	}

	result, err := uc.Consume(context.Background(), inventory.ConsumeByRecipeInput{
		RecipeID: "r-daiquiri",
		Quantity: dec("1"),
	})
	require.NoError(t, err)

	require.Len(t, result.Affected, 1)
	assert.Equal(t, "p-ron", result.Affected[0].ProductID)
}

func TestConsumeByRecipe_RecetaInexistenteDevuelveNotFound(t *testing.T) {
	_, uc, _ := setupConsume(t)

	_, err := uc.Consume(context.Background(), inventory.ConsumeByRecipeInput{
		RecipeID: "no-existe",
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConsumeByRecipe_LosMovimientosLlevanLaReferencia(t *testing.T) {
	runner, uc, _ := setupConsume(t)

	_, err := uc.Consume(context.Background(), inventory.ConsumeByRecipeInput{
		RecipeID:      "r-daiquiri",
		Quantity:      dec("1"),
		ReferenceType: entity.ProcessReferenceType,
		ReferenceID:   "proc-1",
	})
	require.NoError(t, err)

	found, err := runner.movements.ExistsByReference(context.Background(), entity.ProcessReferenceType, "proc-1")
	require.NoError(t, err)
	assert.True(t, found)
}
