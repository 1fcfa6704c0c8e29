package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/barratec/barra-api/internal/domain"
	"github.com/barratec/barra-api/internal/domain/entity"
	dominv "github.com/barratec/barra-api/internal/domain/inventory"
	"github.com/barratec/barra-api/internal/domain/repository"
)

// ConsumeByRecipeInput parámetros para descontar los insumos de una receta.
type ConsumeByRecipeInput struct {
	RecipeID      string
	Quantity      decimal.Decimal // cantidad a producir; default 1
	ReferenceType string
	ReferenceID   string
	ActorID       string
}

// ConsumedItem es un insumo efectivamente descontado.
type ConsumedItem struct {
	ProductID  string
	Name       string
	Delta      decimal.Decimal // negativo: lo que salió
	Unit       string
	Available  decimal.Decimal // disponibilidad resultante
	MovementID string          // primer asiento generado (hay más si hubo abanico FIFO)
}

// ConsumeByRecipeResult resultado del descuento por receta. Unmatched lista
// los ingredientes que no pudieron resolverse a un producto: advertencia,
// nunca abortan el resto del descuento.
type ConsumeByRecipeResult struct {
	RecipeID   string
	RecipeName string
	Quantity   decimal.Decimal
	YieldBase  decimal.Decimal
	Affected   []ConsumedItem
	Unmatched  []string
}

// ConsumeByRecipeUseCase escala los ingredientes de una receta por la
// cantidad producida y los descuenta del stock vía el motor de movimientos.
type ConsumeByRecipeUseCase struct {
	txRunner TxRunner
	applyUC  *ApplyMovementUseCase
	notifier Notifier
}

// NewConsumeByRecipeUseCase construye el caso de uso.
func NewConsumeByRecipeUseCase(txRunner TxRunner, applyUC *ApplyMovementUseCase, notifier Notifier) *ConsumeByRecipeUseCase {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ConsumeByRecipeUseCase{txRunner: txRunner, applyUC: applyUC, notifier: notifier}
}

// Consume ejecuta el descuento en su propia transacción y emite eventos
// después del commit.
func (uc *ConsumeByRecipeUseCase) Consume(ctx context.Context, in ConsumeByRecipeInput) (*ConsumeByRecipeResult, error) {
	var (
		result   *ConsumeByRecipeResult
		outcomes []*MovementOutcome
	)
	err := uc.txRunner.RunProduction(ctx, func(
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		recipeRepo repository.RecipeRepository,
		_ repository.ProductionProcessRepository,
	) error {
		var txErr error
		result, outcomes, txErr = uc.ConsumeInTx(ctx, stockRepo, movRepo, productRepo, recipeRepo, in)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	for _, o := range outcomes {
		uc.applyUC.Emit(o, entity.MovementTypeProduction)
	}
	return result, nil
}

// ConsumeInTx ejecuta el descuento con los repositorios del caller (misma
// transacción). El dueño de la transacción emite los eventos tras el commit.
func (uc *ConsumeByRecipeUseCase) ConsumeInTx(
	ctx context.Context,
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	recipeRepo repository.RecipeRepository,
	in ConsumeByRecipeInput,
) (*ConsumeByRecipeResult, []*MovementOutcome, error) {
	if in.RecipeID == "" {
		return nil, nil, fmt.Errorf("%w: recipeId es obligatorio", domain.ErrInvalidInput)
	}
	recipe, err := recipeRepo.GetByID(ctx, in.RecipeID)
	if err != nil {
		return nil, nil, err
	}
	if recipe == nil {
		return nil, nil, fmt.Errorf("%w: receta %s", domain.ErrNotFound, in.RecipeID)
	}

	quantity := in.Quantity
	if !quantity.IsPositive() {
		quantity = decimal.NewFromInt(1)
	}
	yieldBase := recipe.EffectiveYieldBase()
	factor := quantity.Div(yieldBase)

	products, err := productRepo.ListActive(ctx)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	matcher := dominv.NewNormalizedMatcher(products)

	result := &ConsumeByRecipeResult{
		RecipeID:   recipe.ID,
		RecipeName: recipe.Name,
		Quantity:   quantity,
		YieldBase:  yieldBase,
	}
	var outcomes []*MovementOutcome

	for _, ing := range recipe.Ingredients {
		if !ing.Quantity.IsPositive() {
			continue
		}
		product := resolveIngredient(ing, byID, matcher)
		if product == nil {
			result.Unmatched = append(result.Unmatched, ing.Name)
			continue
		}

		consumed := ing.Quantity.Mul(factor).Round(6)
		if consumed.IsZero() {
			continue
		}
		unit := ing.Unit
		if unit == "" {
			unit = "un"
		}

		outcome, err := uc.applyUC.ApplyInTx(ctx, stockRepo, movRepo, dominv.MovementInput{
			ProductID:     product.ID,
			Type:          entity.MovementTypeProduction,
			Quantity:      consumed.Neg(),
			Unit:          unit,
			ReferenceType: in.ReferenceType,
			ReferenceID:   in.ReferenceID,
			Notes:         fmt.Sprintf("Producción %s x%s", recipe.Name, quantity),
			ActorID:       in.ActorID,
		}, dominv.ApplyOptions{CapToAvailable: true})
		if err != nil {
			return nil, nil, err
		}

		item := ConsumedItem{
			ProductID: product.ID,
			Name:      product.Name,
			Delta:     outcome.Applied(),
			Unit:      unit,
			Available: outcome.Stock.TotalAvailable(),
		}
		if len(outcome.Movements) > 0 {
			item.MovementID = outcome.Movements[0].ID
			outcomes = append(outcomes, outcome)
		}
		result.Affected = append(result.Affected, item)
	}

	return result, outcomes, nil
}

// resolveIngredient prefiere la referencia explícita a producto y cae al
// matcher por nombre cuando falta.
func resolveIngredient(ing entity.Ingredient, byID map[string]*entity.Product, matcher dominv.ProductMatcher) *entity.Product {
	if ing.ProductID != "" {
		if p, ok := byID[ing.ProductID]; ok {
			return p
		}
	}
	if p, ok := matcher.Match(ing.Name); ok {
		return p
	}
	return nil
}
