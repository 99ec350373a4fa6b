package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-alerts/internal/application/dto"
)

// configChecker es el contrato mínimo que necesita el middleware.
// Lo implementa *stockalert.ConfigStore.
type configChecker interface {
	Initialized() bool
}

// RequireConfig corta con 404 CONFIG_NOT_INITIALIZED mientras el local no tenga
// configuración de alertas. Se aplica a las rutas que la leen o la modifican parcialmente.
func RequireConfig(checker configChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !checker.Initialized() {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Code:    "CONFIG_NOT_INITIALIZED",
				Message: "el local no tiene configuración de alertas de stock",
			})
		}
		return c.Next()
	}
}

// RequireVenue rechaza tokens emitidos para otro local. Un token sin venue_id se acepta.
func RequireVenue(venueID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if v := GetVenueID(c); v != "" && v != venueID {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "el token pertenece a otro local",
			})
		}
		return c.Next()
	}
}
