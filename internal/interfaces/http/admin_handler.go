package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/barratec/barra-api/internal/application/dto"
	"github.com/barratec/barra-api/internal/application/usecase"
)

// AdminHandler agrupa la administración de usuarios y la consulta de
// auditoría. Todas sus rutas exigen rol admin.
type AdminHandler struct {
	userUC  *usecase.UserUseCase
	auditUC *usecase.AuditUseCase
}

// NewAdminHandler construye el handler.
func NewAdminHandler(userUC *usecase.UserUseCase, auditUC *usecase.AuditUseCase) *AdminHandler {
	return &AdminHandler{userUC: userUC, auditUC: auditUC}
}

// CreateUser godoc
// @Summary      Crear usuario
// @Tags         admin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUserRequest  true  "usuario"
// @Success      201   {object}  dto.UserResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/users [post]
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.userUC.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	h.auditUC.Record(c.Context(), GetUserID(c), GetUserName(c), "user.create", "User", resp.ID, resp.Email)
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListUsers godoc
// @Summary      Listar usuarios
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "tamaño de página"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {array}  dto.UserResponse
// @Router       /api/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	users, err := h.userUC.List(c.Context(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetUser godoc
// @Summary      Detalle de usuario
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "user id"
// @Success      200  {object}  dto.UserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id} [get]
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	resp, err := h.userUC.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// ListAudit godoc
// @Summary      Consultar auditoría
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        actor_id     query  string  false  "filtrar por actor"
// @Param        action       query  string  false  "filtrar por acción"
// @Param        entity_type  query  string  false  "filtrar por tipo de entidad"
// @Param        limit        query  int     false  "tamaño de página"
// @Param        offset       query  int     false  "desplazamiento"
// @Success      200  {object}  dto.AuditListResponse
// @Router       /api/audit [get]
func (h *AdminHandler) ListAudit(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	resp, err := h.auditUC.List(c.Context(), c.Query("actor_id"), c.Query("action"), c.Query("entity_type"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
