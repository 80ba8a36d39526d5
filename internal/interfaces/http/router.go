package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/renovpro/devis-api/internal/application/editor"
	"github.com/renovpro/devis-api/internal/application/importer"
	"github.com/renovpro/devis-api/pkg/logger"
)

// RouterDeps dépendances du router.
type RouterDeps struct {
	EditorUC   *editor.UseCase
	ImporterUC *importer.UseCase
	JWTSecret  string
	Log        *logger.Logger
}

// Router enregistre les routes de l'API. Tout est protégé par Bearer Token ;
// l'émission des tokens relève du service d'authentification externe.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret), RequestLogger(deps.Log))

	// Documents (devis/factures) et édition de lignes
	documents := api.Group("/documents")
	documentHandler := NewDocumentHandler(deps.EditorUC)
	documents.Post("/", documentHandler.Create)
	documents.Get("/", documentHandler.List)
	documents.Get("/:id", documentHandler.GetByID)
	documents.Put("/:id", documentHandler.Update)
	documents.Delete("/:id", documentHandler.Delete)
	documents.Post("/:id/save", documentHandler.Save)
	documents.Post("/:id/lines", documentHandler.AddLine)
	documents.Post("/:id/lines/reorder", documentHandler.Reorder)
	documents.Patch("/:id/lines/:lineID", documentHandler.UpdateLine)
	documents.Delete("/:id/lines/:lineID", documentHandler.DeleteLine)

	// Import assisté (extraction LLM)
	importHandler := NewImportHandler(deps.ImporterUC)
	documents.Post("/:id/import", importHandler.Start)
	imports := api.Group("/import")
	imports.Get("/:sessionID", importHandler.Get)
	imports.Get("/:sessionID/wait", importHandler.Wait)
	imports.Post("/:sessionID/confirm", importHandler.Confirm)
	imports.Post("/:sessionID/cancel", importHandler.Cancel)
	imports.Post("/:sessionID/candidates/:lineID/toggle", importHandler.Toggle)
	imports.Patch("/:sessionID/candidates/:lineID", importHandler.EditCandidate)
	imports.Delete("/:sessionID/candidates/:lineID", importHandler.RemoveCandidate)
}
