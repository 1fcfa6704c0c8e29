package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/barratec/barra-api/internal/application/dto"
	"github.com/barratec/barra-api/internal/application/usecase"
)

// ProductHandler maneja el catálogo de productos.
type ProductHandler struct {
	uc      *usecase.ProductUseCase
	auditUC *usecase.AuditUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase, auditUC *usecase.AuditUseCase) *ProductHandler {
	return &ProductHandler{uc: uc, auditUC: auditUC}
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	h.auditUC.Record(c.Context(), GetUserID(c), GetUserName(c), "product.create", "Product", resp.ID, resp.Name)
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        q       query  string  false  "texto libre contra nombre/código/barcode"
// @Param        all     query  bool    false  "incluir inactivos"
// @Param        limit   query  int     false  "tamaño de página"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	resp, err := h.uc.List(c.Context(), c.Query("q"), page, !c.QueryBool("all"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// GetByID godoc
// @Summary      Detalle de producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "product id"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	resp, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Update godoc
// @Summary      Actualizar producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "product id"
// @Param        body  body  dto.UpdateProductRequest  true  "campos a actualizar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	h.auditUC.Record(c.Context(), GetUserID(c), GetUserName(c), "product.update", "Product", resp.ID, resp.Name)
	return c.JSON(resp)
}

// Deactivate godoc
// @Summary      Desactivar producto
// @Description  Baja lógica: el producto deja de listarse pero su historial de stock se conserva.
// @Tags         products
// @Security     Bearer
// @Param        id  path  string  true  "product id"
// @Success      204  "sin contenido"
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.uc.Deactivate(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	h.auditUC.Record(c.Context(), GetUserID(c), GetUserName(c), "product.deactivate", "Product", c.Params("id"), "")
	return c.SendStatus(fiber.StatusNoContent)
}
