package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/renovpro/devis-api/internal/application/dto"
	"github.com/renovpro/devis-api/internal/application/importer"
)

// ImportHandler requêtes HTTP de l'import assisté (sessions d'extraction).
type ImportHandler struct {
	uc *importer.UseCase
}

// NewImportHandler construit le handler.
func NewImportHandler(uc *importer.UseCase) *ImportHandler {
	return &ImportHandler{uc: uc}
}

// Start ouvre une session d'import pour un document et lance la génération.
// POST /api/documents/:id/import
func (h *ImportHandler) Start(c *fiber.Ctx) error {
	var in dto.StartImportRequest
	if !parseBody(c, &in) {
		return nil
	}
	sess, err := h.uc.Start(c.Context(), GetCompanyID(c), c.Params("id"), in.Text)
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(sess)
}

// Get renvoie l'état de la session (polling de progression).
// GET /api/import/:sessionID
func (h *ImportHandler) Get(c *fiber.Ctx) error {
	sess, err := h.uc.Get(GetCompanyID(c), c.Params("sessionID"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(sess)
}

// Wait bloque jusqu'à la fin de la génération puis renvoie la session.
// GET /api/import/:sessionID/wait
func (h *ImportHandler) Wait(c *fiber.Ctx) error {
	sess, err := h.uc.WaitForPreview(c.Context(), GetCompanyID(c), c.Params("sessionID"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(sess)
}

// Toggle inverse la sélection d'un candidat.
// POST /api/import/:sessionID/candidates/:lineID/toggle
func (h *ImportHandler) Toggle(c *fiber.Ctx) error {
	sess, err := h.uc.ToggleSelected(GetCompanyID(c), c.Params("sessionID"), c.Params("lineID"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(sess)
}

// EditCandidate modifie un champ d'un candidat en prévisualisation.
// PATCH /api/import/:sessionID/candidates/:lineID
func (h *ImportHandler) EditCandidate(c *fiber.Ctx) error {
	var in dto.EditCandidateRequest
	if !parseBody(c, &in) {
		return nil
	}
	sess, err := h.uc.EditCandidateField(GetCompanyID(c), c.Params("sessionID"), c.Params("lineID"), in.Field, in.Value)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(sess)
}

// RemoveCandidate retire un candidat de la prévisualisation.
// DELETE /api/import/:sessionID/candidates/:lineID
func (h *ImportHandler) RemoveCandidate(c *fiber.Ctx) error {
	sess, err := h.uc.RemoveCandidate(GetCompanyID(c), c.Params("sessionID"), c.Params("lineID"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(sess)
}

// Confirm fusionne les candidats sélectionnés dans le document et clôt la session.
// POST /api/import/:sessionID/confirm
func (h *ImportHandler) Confirm(c *fiber.Ctx) error {
	doc, err := h.uc.Confirm(c.Context(), GetCompanyID(c), c.Params("sessionID"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(doc)
}

// Cancel abandonne la session sans toucher au document.
// POST /api/import/:sessionID/cancel
func (h *ImportHandler) Cancel(c *fiber.Ctx) error {
	if err := h.uc.Cancel(GetCompanyID(c), c.Params("sessionID")); err != nil {
		return mapError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
