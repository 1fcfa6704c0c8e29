package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/barratec/barra-api/internal/application/dto"
	"github.com/barratec/barra-api/internal/application/inventory"
	"github.com/barratec/barra-api/internal/application/report"
	"github.com/barratec/barra-api/internal/application/usecase"
	"github.com/barratec/barra-api/internal/domain/entity"
	dominv "github.com/barratec/barra-api/internal/domain/inventory"
	"github.com/barratec/barra-api/internal/domain/repository"
)

// StockHandler maneja el libro de stock: listados, movimientos, lotes,
// descuento por receta, ajustes de umbrales y el kardex en PDF.
type StockHandler struct {
	stockUC   *inventory.StockUseCase
	applyUC   *inventory.ApplyMovementUseCase
	consumeUC *inventory.ConsumeByRecipeUseCase
	kardexUC  *report.KardexUseCase
	auditUC   *usecase.AuditUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(
	stockUC *inventory.StockUseCase,
	applyUC *inventory.ApplyMovementUseCase,
	consumeUC *inventory.ConsumeByRecipeUseCase,
	kardexUC *report.KardexUseCase,
	auditUC *usecase.AuditUseCase,
) *StockHandler {
	return &StockHandler{
		stockUC:   stockUC,
		applyUC:   applyUC,
		consumeUC: consumeUC,
		kardexUC:  kardexUC,
		auditUC:   auditUC,
	}
}

// List godoc
// @Summary      Listar stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        q     query  string  false  "texto libre contra nombre/código"
// @Param        low   query  bool    false  "solo bajo mínimo"
// @Success      200   {object}  dto.StockListResponse
// @Router       /api/stock [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	views, total, err := h.stockUC.List(c.Context(), repository.StockListFilter{
		Query:   c.Query("q"),
		LowOnly: c.QueryBool("low"),
		Limit:   page.Limit,
		Offset:  page.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.StockResponse, 0, len(views))
	for _, v := range views {
		items = append(items, toStockResponse(v))
	}
	return c.JSON(dto.StockListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// GetByID godoc
// @Summary      Detalle de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "stock id"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{id} [get]
func (h *StockHandler) GetByID(c *fiber.Ctx) error {
	view, err := h.stockUC.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toStockResponse(view))
}

// GetByProduct godoc
// @Summary      Stock de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "product id"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/product/{productId} [get]
func (h *StockHandler) GetByProduct(c *fiber.Ctx) error {
	view, err := h.stockUC.GetByProduct(c.Context(), c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toStockResponse(view))
}

// UpdateSettings godoc
// @Summary      Ajustar umbrales y unidad de un stock
// @Description  Disponible, lotes y costos no se tocan acá: solo vía movimientos.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "stock id"
// @Param        body  body  dto.UpdateStockSettingsRequest  true  "umbrales"
// @Success      200   {object}  dto.StockResponse
// @Router       /api/stock/{id} [patch]
func (h *StockHandler) UpdateSettings(c *fiber.Ctx) error {
	var in dto.UpdateStockSettingsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	view, err := h.stockUC.UpdateSettings(c.Context(), c.Params("id"), inventory.StockSettings{
		Unit:           in.Unit,
		MinThreshold:   in.MinThreshold,
		IdealThreshold: in.IdealThreshold,
		MaxThreshold:   in.MaxThreshold,
		Reserved:       in.Reserved,
		Committed:      in.Committed,
	})
	if err != nil {
		return respondError(c, err)
	}
	h.auditUC.Record(c.Context(), GetUserID(c), GetUserName(c), "stock.settings", "Stock", view.Stock.ID, "")
	return c.JSON(toStockResponse(view))
}

// ApplyMovement godoc
// @Summary      Registrar movimiento de stock
// @Description  Cantidad con signo: positiva entra, negativa sale. Única vía de escritura de existencias.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyMovementRequest  true  "movimiento"
// @Success      201   {object}  dto.ApplyMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/movements [post]
func (h *StockHandler) ApplyMovement(c *fiber.Ctx) error {
	var in dto.ApplyMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	outcome, err := h.applyUC.Apply(c.Context(), dominv.MovementInput{
		ProductID:     in.ProductID,
		Type:          in.Type,
		Quantity:      in.Quantity,
		Unit:          in.Unit,
		UnitCost:      in.UnitCost,
		BatchCode:     in.BatchCode,
		ExpiryDate:    in.ExpiryDate,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Notes:         in.Notes,
		ActorID:       GetUserID(c),
	}, dominv.ApplyOptions{
		CapToAvailable: in.CapToStock,
		AllowNegative:  in.AllowNegative,
	})
	if err != nil {
		return respondError(c, err)
	}
	h.auditUC.Record(c.Context(), GetUserID(c), GetUserName(c), "stock.movement", "Product", in.ProductID,
		fmt.Sprintf("%s %s", in.Type, outcome.Applied()))
	return c.Status(fiber.StatusCreated).JSON(toApplyMovementResponse(outcome))
}

// ListMovements godoc
// @Summary      Historial de movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id      query  string  false  "filtrar por producto"
// @Param        type            query  string  false  "filtrar por tipo"
// @Param        reference_type  query  string  false  "filtrar por referencia"
// @Param        reference_id    query  string  false  "filtrar por referencia"
// @Param        limit           query  int     false  "máximo de filas"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	movements, err := h.stockUC.ListMovements(c.Context(), repository.MovementListFilter{
		ProductID:     c.Query("product_id"),
		Type:          c.Query("type"),
		ReferenceType: c.Query("reference_type"),
		ReferenceID:   c.Query("reference_id"),
		Limit:         c.QueryInt("limit"),
	})
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		items = append(items, toMovementResponse(m))
	}
	return c.JSON(dto.MovementListResponse{Items: items})
}

// GetMovement godoc
// @Summary      Detalle de un movimiento
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "movement id"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/movements/{id} [get]
func (h *StockHandler) GetMovement(c *fiber.Ctx) error {
	m, err := h.stockUC.GetMovement(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toMovementResponse(m))
}

// ListBatches godoc
// @Summary      Lotes vigentes
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "filtrar por producto"
// @Param        with_stock  query  bool    false  "solo lotes con existencia"
// @Success      200  {array}  dto.BatchListItemResponse
// @Router       /api/stock/batches [get]
func (h *StockHandler) ListBatches(c *fiber.Ctx) error {
	views, err := h.stockUC.ListBatches(c.Context(), c.Query("product_id"), c.QueryBool("with_stock"))
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.BatchListItemResponse, 0, len(views))
	for _, v := range views {
		items = append(items, dto.BatchListItemResponse{
			ProductID:       v.ProductID,
			ProductName:     v.ProductName,
			ProductCode:     v.ProductCode,
			Code:            v.BatchCode,
			ExpiryDate:      v.ExpiryDate,
			Quantity:        v.Quantity,
			InitialQuantity: v.Initial,
			Drawn:           v.Drawn,
			UnitCost:        v.UnitCost,
			Origin:          v.Origin,
			CreatedAt:       v.CreatedAt,
		})
	}
	return c.JSON(items)
}

// ConsumeByRecipe godoc
// @Summary      Descontar insumos por receta
// @Description  Escala los ingredientes por cantidad/rendimiento y descuenta vía el motor de movimientos. Los ingredientes sin producto que matchee se reportan en unmatched.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConsumeByRecipeRequest  true  "receta y cantidad"
// @Success      200   {object}  dto.ConsumeByRecipeResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/consume-recipe [post]
func (h *StockHandler) ConsumeByRecipe(c *fiber.Ctx) error {
	var in dto.ConsumeByRecipeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.consumeUC.Consume(c.Context(), inventory.ConsumeByRecipeInput{
		RecipeID:      in.RecipeID,
		Quantity:      in.Quantity,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		ActorID:       GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	h.auditUC.Record(c.Context(), GetUserID(c), GetUserName(c), "stock.consume_recipe", "Recipe", in.RecipeID,
		fmt.Sprintf("x%s", result.Quantity))
	return c.JSON(toConsumeResponse(result))
}

// KardexPDF godoc
// @Summary      Kardex de producto en PDF
// @Tags         stock
// @Security     Bearer
// @Produce      application/pdf
// @Param        productId  path   string  true   "product id"
// @Param        limit      query  int     false  "máximo de movimientos"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/product/{productId}/kardex.pdf [get]
func (h *StockHandler) KardexPDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.kardexUC.DownloadKardexPDF(c.Context(), c.Params("productId"), c.QueryInt("limit"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

// ── mapeo a DTOs ──────────────────────────────────────────────────────────────

func toStockResponse(v *inventory.StockView) dto.StockResponse {
	s := v.Stock
	batches := make([]dto.BatchResponse, 0, len(s.Batches))
	for i := range s.Batches {
		b := &s.Batches[i]
		batches = append(batches, dto.BatchResponse{
			Code:            b.Code,
			ExpiryDate:      b.ExpiryDate,
			Quantity:        b.Quantity,
			InitialQuantity: b.InitialQuantity,
			Drawn:           b.Drawn(),
			UnitCost:        b.UnitCost,
			Origin:          b.Origin,
			ReferenceType:   b.ReferenceType,
			ReferenceID:     b.ReferenceID,
			CreatedAt:       b.CreatedAt,
		})
	}
	return dto.StockResponse{
		ID:             s.ID,
		ProductID:      s.ProductID,
		ProductName:    v.ProductName,
		ProductCode:    v.ProductCode,
		Barcode:        v.Barcode,
		Unit:           s.Unit,
		Available:      s.TotalAvailable(),
		Reserved:       s.Reserved,
		Committed:      s.Committed,
		MinThreshold:   s.MinThreshold,
		IdealThreshold: s.IdealThreshold,
		MaxThreshold:   s.MaxThreshold,
		AverageCost:    s.AverageCost,
		LastUnitCost:   s.LastUnitCost,
		Batches:        batches,
		BelowMinimum:   s.BelowMinimum(),
		LastMovementAt: s.LastMovementAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		StockID:       m.StockID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		Unit:          m.Unit,
		BatchCode:     m.BatchCode,
		ExpiryDate:    m.ExpiryDate,
		UnitCost:      m.UnitCost,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Notes:         m.Notes,
		ActorID:       m.ActorID,
		CreatedAt:     m.CreatedAt,
	}
}

func toApplyMovementResponse(outcome *inventory.MovementOutcome) dto.ApplyMovementResponse {
	movements := make([]dto.MovementResponse, 0, len(outcome.Movements))
	for _, m := range outcome.Movements {
		movements = append(movements, toMovementResponse(m))
	}
	return dto.ApplyMovementResponse{
		Applied:   outcome.Applied(),
		Stock:     toStockResponse(&inventory.StockView{Stock: outcome.Stock}),
		Movements: movements,
	}
}

func toConsumeResponse(r *inventory.ConsumeByRecipeResult) dto.ConsumeByRecipeResponse {
	affected := make([]dto.ConsumedItemResponse, 0, len(r.Affected))
	for _, it := range r.Affected {
		affected = append(affected, dto.ConsumedItemResponse{
			ProductID:  it.ProductID,
			Name:       it.Name,
			Delta:      it.Delta,
			Unit:       it.Unit,
			Available:  it.Available,
			MovementID: it.MovementID,
		})
	}
	return dto.ConsumeByRecipeResponse{
		RecipeID:   r.RecipeID,
		RecipeName: r.RecipeName,
		Quantity:   r.Quantity,
		YieldBase:  r.YieldBase,
		Affected:   affected,
		Unmatched:  r.Unmatched,
	}
}
