package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/barratec/barra-api/internal/application/dto"
	"github.com/barratec/barra-api/internal/application/usecase"
)

// RecipeHandler maneja las recetas de elaboración.
type RecipeHandler struct {
	uc      *usecase.RecipeUseCase
	auditUC *usecase.AuditUseCase
}

// NewRecipeHandler construye el handler.
func NewRecipeHandler(uc *usecase.RecipeUseCase, auditUC *usecase.AuditUseCase) *RecipeHandler {
	return &RecipeHandler{uc: uc, auditUC: auditUC}
}

// Create godoc
// @Summary      Crear receta
// @Tags         recipes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRecipeRequest  true  "receta"
// @Success      201   {object}  dto.RecipeResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/recipes [post]
func (h *RecipeHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRecipeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.Create(c.Context(), in, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	h.auditUC.Record(c.Context(), GetUserID(c), GetUserName(c), "recipe.create", "Recipe", resp.ID, resp.Name)
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// List godoc
// @Summary      Listar recetas activas
// @Tags         recipes
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.RecipeListResponse
// @Router       /api/recipes [get]
func (h *RecipeHandler) List(c *fiber.Ctx) error {
	resp, err := h.uc.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// GetByID godoc
// @Summary      Detalle de receta
// @Tags         recipes
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "recipe id"
// @Success      200  {object}  dto.RecipeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/recipes/{id} [get]
func (h *RecipeHandler) GetByID(c *fiber.Ctx) error {
	resp, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Update godoc
// @Summary      Actualizar receta
// @Tags         recipes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "recipe id"
// @Param        body  body  dto.UpdateRecipeRequest  true  "campos a actualizar"
// @Success      200   {object}  dto.RecipeResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/recipes/{id} [put]
func (h *RecipeHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateRecipeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	h.auditUC.Record(c.Context(), GetUserID(c), GetUserName(c), "recipe.update", "Recipe", resp.ID, resp.Name)
	return c.JSON(resp)
}

// Deactivate godoc
// @Summary      Desactivar receta
// @Tags         recipes
// @Security     Bearer
// @Param        id  path  string  true  "recipe id"
// @Success      204  "sin contenido"
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/recipes/{id} [delete]
func (h *RecipeHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.uc.Deactivate(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	h.auditUC.Record(c.Context(), GetUserID(c), GetUserName(c), "recipe.deactivate", "Recipe", c.Params("id"), "")
	return c.SendStatus(fiber.StatusNoContent)
}
