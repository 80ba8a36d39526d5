package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/renovpro/devis-api/internal/application/dto"
)

// validate instance partagée (thread-safe) pour les DTOs entrants.
var validate = validator.New(validator.WithRequiredStructEnabled())

// parseBody décode le corps JSON dans out puis applique les tags validate.
// Renvoie false après avoir écrit la réponse 400 en cas d'échec.
func parseBody(c *fiber.Ctx, out any) bool {
	if err := c.BodyParser(out); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps de requête invalide"})
		return false
	}
	if err := validate.Struct(out); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		return false
	}
	return true
}
