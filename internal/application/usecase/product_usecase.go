package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/barratec/barra-api/internal/application/dto"
	"github.com/barratec/barra-api/internal/domain"
	"github.com/barratec/barra-api/internal/domain/entity"
	"github.com/barratec/barra-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. Existencias y costos se
// manejan vía movimientos, nunca por acá.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un nuevo producto.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Unit == "" {
		in.Unit = "un"
	}
	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Description:  in.Description,
		Code:         in.Code,
		Barcode:      in.Barcode,
		Unit:         in.Unit,
		IsElaborated: in.IsElaborated,
		BaseRecipeID: in.BaseRecipeID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. No toca stock ni costos.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Code != nil {
		product.Code = *in.Code
	}
	if in.Barcode != nil {
		product.Barcode = *in.Barcode
	}
	if in.Unit != nil {
		product.Unit = *in.Unit
	}
	if in.IsElaborated != nil {
		product.IsElaborated = *in.IsElaborated
	}
	if in.BaseRecipeID != nil {
		product.BaseRecipeID = *in.BaseRecipeID
	}
	if in.Active != nil {
		product.Active = *in.Active
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con paginación y búsqueda por texto. Si activeOnly,
// devuelve el catálogo activo completo.
func (uc *ProductUseCase) List(ctx context.Context, query string, page dto.PageRequest, activeOnly bool) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	var (
		list  []*entity.Product
		total int
		err   error
	)
	if activeOnly {
		list, err = uc.repo.ListActive(ctx)
		total = len(list)
	} else {
		list, total, err = uc.repo.List(ctx, query, page.Limit, page.Offset)
	}
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Deactivate da de baja lógica un producto.
func (uc *ProductUseCase) Deactivate(ctx context.Context, id string) error {
	return uc.repo.Deactivate(ctx, id)
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Code:         p.Code,
		Barcode:      p.Barcode,
		Unit:         p.Unit,
		IsElaborated: p.IsElaborated,
		BaseRecipeID: p.BaseRecipeID,
		Active:       p.Active,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
