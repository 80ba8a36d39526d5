package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/renovpro/devis-api/pkg/logger"
)

// RequestLogger trace chaque requête authentifiée : méthode, chemin, statut,
// durée et utilisateur à l'origine. Placé après le middleware d'auth pour
// disposer du UserID.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Msg("requête traitée")
		return err
	}
}
