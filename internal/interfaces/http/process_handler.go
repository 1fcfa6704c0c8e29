package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/barratec/barra-api/internal/application/dto"
	"github.com/barratec/barra-api/internal/application/production"
	"github.com/barratec/barra-api/internal/application/usecase"
	"github.com/barratec/barra-api/internal/domain/entity"
)

// ProcessHandler maneja los procesos de producción (cronómetro incluido).
type ProcessHandler struct {
	uc      *production.ProcessUseCase
	auditUC *usecase.AuditUseCase
}

// NewProcessHandler construye el handler.
func NewProcessHandler(uc *production.ProcessUseCase, auditUC *usecase.AuditUseCase) *ProcessHandler {
	return &ProcessHandler{uc: uc, auditUC: auditUC}
}

// Create godoc
// @Summary      Iniciar proceso de producción
// @Tags         processes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProcessRequest  true  "proceso"
// @Success      201   {object}  dto.ProcessResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/processes [post]
func (h *ProcessHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProcessRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	p, err := h.uc.Create(c.Context(), production.CreateInput{
		RecipeID:         in.RecipeID,
		RecipeName:       in.RecipeName,
		TargetDurationMs: in.TargetDurationMs,
		OwnerID:          GetUserID(c),
		OwnerName:        GetUserName(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	h.auditUC.Record(c.Context(), GetUserID(c), GetUserName(c), "process.create", "ProductionProcess", p.ID, p.RecipeName)
	return c.Status(fiber.StatusCreated).JSON(toProcessResponse(p))
}

// List godoc
// @Summary      Listar procesos activos
// @Description  Un admin ve los procesos de todos; el resto solo los propios. Los finalizados no se listan.
// @Tags         processes
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ProcessListResponse
// @Router       /api/processes [get]
func (h *ProcessHandler) List(c *fiber.Ctx) error {
	processes, err := h.uc.List(c.Context(), GetUserID(c), IsAdmin(c))
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.ProcessResponse, 0, len(processes))
	for _, p := range processes {
		items = append(items, toProcessResponse(p))
	}
	return c.JSON(dto.ProcessListResponse{Items: items})
}

// Get godoc
// @Summary      Detalle de un proceso
// @Tags         processes
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "process id"
// @Success      200  {object}  dto.ProcessResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/processes/{id} [get]
func (h *ProcessHandler) Get(c *fiber.Ctx) error {
	p, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toProcessResponse(p))
}

// Pause godoc
// @Summary      Pausar el cronómetro
// @Tags         processes
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "process id"
// @Success      200  {object}  dto.ProcessResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/processes/{id}/pause [post]
func (h *ProcessHandler) Pause(c *fiber.Ctx) error {
	p, err := h.uc.Pause(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toProcessResponse(p))
}

// Resume godoc
// @Summary      Reanudar el cronómetro
// @Tags         processes
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "process id"
// @Success      200  {object}  dto.ProcessResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/processes/{id}/resume [post]
func (h *ProcessHandler) Resume(c *fiber.Ctx) error {
	p, err := h.uc.Resume(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toProcessResponse(p))
}

// Patch godoc
// @Summary      Corrección liviana de un proceso
// @Tags         processes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "process id"
// @Param        body  body  dto.PatchProcessRequest  true  "campos a corregir"
// @Success      200   {object}  dto.ProcessResponse
// @Router       /api/processes/{id} [patch]
func (h *ProcessHandler) Patch(c *fiber.Ctx) error {
	var in dto.PatchProcessRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	p, err := h.uc.Patch(c.Context(), c.Params("id"), production.PatchInput{
		Status:     in.Status,
		Minimized:  in.Minimized,
		RecipeName: in.RecipeName,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toProcessResponse(p))
}

// Cancel godoc
// @Summary      Cancelar un proceso
// @Description  Cierra el proceso sin descontar insumos ni generar producto.
// @Tags         processes
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "process id"
// @Success      200  {object}  dto.ProcessResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/processes/{id}/cancel [post]
func (h *ProcessHandler) Cancel(c *fiber.Ctx) error {
	p, err := h.uc.Cancel(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	h.auditUC.Record(c.Context(), GetUserID(c), GetUserName(c), "process.cancel", "ProductionProcess", p.ID, "")
	return c.JSON(toProcessResponse(p))
}

// Delete godoc
// @Summary      Eliminar un proceso
// @Tags         processes
// @Security     Bearer
// @Param        id  path  string  true  "process id"
// @Success      204  "sin contenido"
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/processes/{id} [delete]
func (h *ProcessHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	h.auditUC.Record(c.Context(), GetUserID(c), GetUserName(c), "process.delete", "ProductionProcess", c.Params("id"), "")
	return c.SendStatus(fiber.StatusNoContent)
}

// Finalize godoc
// @Summary      Finalizar un proceso
// @Description  Descuenta los insumos de la receta y da de alta el producto final en una sola transacción. Reintentar sobre un proceso ya finalizado devuelve el estado actual sin volver a consumir.
// @Tags         processes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "process id"
// @Param        body  body  dto.FinalizeProcessRequest  true  "producción obtenida"
// @Success      200   {object}  dto.FinalizeProcessResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/processes/{id}/finalize [post]
func (h *ProcessHandler) Finalize(c *fiber.Ctx) error {
	var in dto.FinalizeProcessRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.Finalize(c.Context(), c.Params("id"), production.FinalizeInput{
		ProducedQuantity: in.ProducedQuantity,
		OutputProductID:  in.OutputProductID,
		OutputUnit:       in.OutputUnit,
		OutputBatchCode:  in.OutputBatchCode,
		OutputExpiry:     in.OutputExpiry,
		ActorID:          GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	if !result.AlreadyFinalized {
		h.auditUC.Record(c.Context(), GetUserID(c), GetUserName(c), "process.finalize", "ProductionProcess", result.Process.ID, result.Process.RecipeName)
	}
	resp := dto.FinalizeProcessResponse{
		Process:          toProcessResponse(result.Process),
		AlreadyFinalized: result.AlreadyFinalized,
	}
	if result.Consumption != nil {
		consumption := toConsumeResponse(result.Consumption)
		resp.Consumption = &consumption
	}
	if result.Output != nil {
		output := toApplyMovementResponse(result.Output)
		resp.Output = &output
	}
	return c.JSON(resp)
}

func toProcessResponse(p *entity.ProductionProcess) dto.ProcessResponse {
	now := time.Now()
	return dto.ProcessResponse{
		ID:               p.ID,
		RecipeID:         p.RecipeID,
		RecipeName:       p.RecipeName,
		OwnerID:          p.OwnerID,
		OwnerName:        p.OwnerName,
		Status:           p.Status,
		Minimized:        p.Minimized,
		TargetDurationMs: p.TargetDurationMs,
		ElapsedMs:        p.ElapsedMs(now),
		RemainingMs:      p.RemainingMs(now),
		StartedAt:        p.StartedAt,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
