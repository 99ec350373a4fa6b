package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-alerts/internal/application/dto"
	"github.com/jhoicas/stock-alerts/internal/application/stockalert"
	"github.com/jhoicas/stock-alerts/internal/domain"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

// RecipientHandler registro de destinatarios de alertas.
type RecipientHandler struct {
	registry *stockalert.RecipientRegistry
}

// NewRecipientHandler construye el handler.
func NewRecipientHandler(registry *stockalert.RecipientRegistry) *RecipientHandler {
	return &RecipientHandler{registry: registry}
}

// Register godoc
// @Summary      Registrar destinatario de alertas
// @Tags         stock-alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecipientRequest  true  "role: admin | manager | supervisor; channels: websocket | push | email"
// @Success      201   {object}  dto.RecipientResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/stock-alerts/recipients [post]
func (h *RecipientHandler) Register(c *fiber.Ctx) error {
	var in dto.RecipientRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.UserID == "" {
		return badRequest(c, "userId requerido")
	}
	if !entity.IsAlertRole(in.Role) {
		return writeError(c, domain.ErrInvalidRole)
	}
	if !h.registry.Register(in.ToEntity()) {
		return badRequest(c, "se requiere al menos un canal válido")
	}
	r, _ := h.registry.Get(in.UserID)
	return c.Status(fiber.StatusCreated).JSON(dto.RecipientsFromEntities([]entity.Recipient{r})[0])
}

// List destinatarios, opcionalmente filtrados por rol.
func (h *RecipientHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"recipients": dto.RecipientsFromEntities(h.registry.List(c.Query("role")))})
}

// Remove da de baja un destinatario.
func (h *RecipientHandler) Remove(c *fiber.Ctx) error {
	if !h.registry.Remove(c.Params("userId")) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "destinatario no registrado"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
