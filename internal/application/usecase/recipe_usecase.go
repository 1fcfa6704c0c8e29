package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/barratec/barra-api/internal/application/dto"
	"github.com/barratec/barra-api/internal/domain"
	"github.com/barratec/barra-api/internal/domain/entity"
	"github.com/barratec/barra-api/internal/domain/repository"
)

// RecipeUseCase casos de uso CRUD para recetas.
type RecipeUseCase struct {
	repo repository.RecipeRepository
}

// NewRecipeUseCase construye el caso de uso.
func NewRecipeUseCase(repo repository.RecipeRepository) *RecipeUseCase {
	return &RecipeUseCase{repo: repo}
}

// Create crea una receta. YieldBase en cero se normaliza a 1.
func (uc *RecipeUseCase) Create(ctx context.Context, in dto.CreateRecipeRequest, actorID string) (*dto.RecipeResponse, error) {
	if in.Name == "" || len(in.Ingredients) == 0 {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	yield := in.YieldBase
	if !yield.IsPositive() {
		yield = decimal.NewFromInt(1)
	}
	now := time.Now()
	recipe := &entity.Recipe{
		ID:             uuid.New().String(),
		Name:           in.Name,
		Description:    in.Description,
		Ingredients:    toIngredients(in.Ingredients),
		YieldBase:      yield,
		FinalProductID: in.FinalProductID,
		FinalUnit:      in.FinalUnit,
		ProductionTime: in.ProductionTime,
		Active:         true,
		CreatedBy:      actorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.Create(ctx, recipe); err != nil {
		return nil, err
	}
	return toRecipeResponse(recipe), nil
}

// GetByID obtiene una receta por ID.
func (uc *RecipeUseCase) GetByID(ctx context.Context, id string) (*dto.RecipeResponse, error) {
	recipe, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, domain.ErrNotFound
	}
	return toRecipeResponse(recipe), nil
}

// Update actualiza una receta.
func (uc *RecipeUseCase) Update(ctx context.Context, id string, in dto.UpdateRecipeRequest) (*dto.RecipeResponse, error) {
	recipe, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		recipe.Name = *in.Name
	}
	if in.Description != nil {
		recipe.Description = *in.Description
	}
	if len(in.Ingredients) > 0 {
		recipe.Ingredients = toIngredients(in.Ingredients)
	}
	if in.YieldBase != nil && in.YieldBase.IsPositive() {
		recipe.YieldBase = *in.YieldBase
	}
	if in.FinalProductID != nil {
		recipe.FinalProductID = *in.FinalProductID
	}
	if in.FinalUnit != nil {
		recipe.FinalUnit = *in.FinalUnit
	}
	if in.ProductionTime != nil {
		recipe.ProductionTime = *in.ProductionTime
	}
	if in.Active != nil {
		recipe.Active = *in.Active
	}
	recipe.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, recipe); err != nil {
		return nil, err
	}
	return toRecipeResponse(recipe), nil
}

// List lista las recetas activas.
func (uc *RecipeUseCase) List(ctx context.Context) (*dto.RecipeListResponse, error) {
	list, err := uc.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.RecipeResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *toRecipeResponse(r))
	}
	return &dto.RecipeListResponse{Items: items}, nil
}

// Deactivate da de baja lógica una receta.
func (uc *RecipeUseCase) Deactivate(ctx context.Context, id string) error {
	return uc.repo.Deactivate(ctx, id)
}

func toIngredients(in []dto.IngredientDTO) []entity.Ingredient {
	out := make([]entity.Ingredient, 0, len(in))
	for _, i := range in {
		out = append(out, entity.Ingredient{
			Name:      i.Name,
			Quantity:  i.Quantity,
			Unit:      i.Unit,
			ProductID: i.ProductID,
		})
	}
	return out
}

func toRecipeResponse(r *entity.Recipe) *dto.RecipeResponse {
	if r == nil {
		return nil
	}
	ings := make([]dto.IngredientDTO, 0, len(r.Ingredients))
	for _, i := range r.Ingredients {
		ings = append(ings, dto.IngredientDTO{
			Name:      i.Name,
			Quantity:  i.Quantity,
			Unit:      i.Unit,
			ProductID: i.ProductID,
		})
	}
	return &dto.RecipeResponse{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		Ingredients:    ings,
		YieldBase:      r.YieldBase,
		FinalProductID: r.FinalProductID,
		FinalUnit:      r.FinalUnit,
		ProductionTime: r.ProductionTime,
		Active:         r.Active,
		CreatedBy:      r.CreatedBy,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
