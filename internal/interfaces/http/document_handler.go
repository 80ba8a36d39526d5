package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/renovpro/devis-api/internal/application/dto"
	"github.com/renovpro/devis-api/internal/application/editor"
	"github.com/renovpro/devis-api/internal/domain"
	"github.com/renovpro/devis-api/internal/domain/entity"
)

// DocumentHandler requêtes HTTP des devis/factures et de l'édition de lignes.
type DocumentHandler struct {
	uc *editor.UseCase
}

// NewDocumentHandler construit le handler.
func NewDocumentHandler(uc *editor.UseCase) *DocumentHandler {
	return &DocumentHandler{uc: uc}
}

// mapError traduit les erreurs de domaine en statuts HTTP.
func mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "données invalides"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "ressource introuvable"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "accès refusé"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "opération impossible dans l'état courant"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// Create crée un document vide.
// POST /api/documents
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDocumentRequest
	if !parseBody(c, &in) {
		return nil
	}
	doc, err := h.uc.CreateDocument(c.Context(), GetCompanyID(c), in)
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// List liste les documents de l'entreprise.
// GET /api/documents
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	docs, err := h.uc.ListDocuments(c.Context(), GetCompanyID(c))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(docs)
}

// GetByID renvoie le document complet : lignes numérotées et totaux.
// GET /api/documents/:id
func (h *DocumentHandler) GetByID(c *fiber.Ctx) error {
	doc, err := h.uc.GetDocument(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(doc)
}

// Update modifie l'en-tête (client, statut, remise globale, TVA applicable).
// PUT /api/documents/:id
func (h *DocumentHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateDocumentRequest
	if !parseBody(c, &in) {
		return nil
	}
	doc, err := h.uc.UpdateDocument(c.Context(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(doc)
}

// Delete supprime le document.
// DELETE /api/documents/:id
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteDocument(c.Context(), GetCompanyID(c), c.Params("id")); err != nil {
		return mapError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddLine insère une ligne après after_index (fin de séquence par défaut).
// POST /api/documents/:id/lines
func (h *DocumentHandler) AddLine(c *fiber.Ctx) error {
	var in dto.AddLineRequest
	if !parseBody(c, &in) {
		return nil
	}
	afterIndex := -1
	if in.AfterIndex != nil {
		afterIndex = *in.AfterIndex
	}
	doc, err := h.uc.AddLine(c.Context(), GetCompanyID(c), c.Params("id"), entity.LineKind(in.Kind), afterIndex)
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// UpdateLine modifie un champ d'une ligne.
// PATCH /api/documents/:id/lines/:lineID
func (h *DocumentHandler) UpdateLine(c *fiber.Ctx) error {
	var in dto.UpdateLineRequest
	if !parseBody(c, &in) {
		return nil
	}
	doc, err := h.uc.UpdateLineField(c.Context(), GetCompanyID(c), c.Params("id"), c.Params("lineID"), in.Field, in.Value)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(doc)
}

// DeleteLine supprime une ligne (cascade si section).
// DELETE /api/documents/:id/lines/:lineID
func (h *DocumentHandler) DeleteLine(c *fiber.Ctx) error {
	doc, err := h.uc.DeleteLine(c.Context(), GetCompanyID(c), c.Params("id"), c.Params("lineID"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(doc)
}

// Reorder déplace une ligne (drop du drag-and-drop côté client).
// POST /api/documents/:id/lines/reorder
func (h *DocumentHandler) Reorder(c *fiber.Ctx) error {
	var in dto.ReorderRequest
	if !parseBody(c, &in) {
		return nil
	}
	doc, err := h.uc.ReorderLines(c.Context(), GetCompanyID(c), c.Params("id"), in.SourceIndex, in.DestIndex)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(doc)
}

// Save force l'écriture immédiate de la session d'édition.
// POST /api/documents/:id/save
func (h *DocumentHandler) Save(c *fiber.Ctx) error {
	doc, err := h.uc.Save(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(doc)
}
