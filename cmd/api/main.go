package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/renovpro/devis-api/internal/application/editor"
	"github.com/renovpro/devis-api/internal/application/importer"
	"github.com/renovpro/devis-api/internal/application/ports"
	infraai "github.com/renovpro/devis-api/internal/infrastructure/ai"
	"github.com/renovpro/devis-api/internal/infrastructure/postgres"
	httpRouter "github.com/renovpro/devis-api/internal/interfaces/http"
	"github.com/renovpro/devis-api/pkg/config"
	"github.com/renovpro/devis-api/pkg/logger"
	"github.com/renovpro/devis-api/pkg/retry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("charger la configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("démarrage de l'application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("connexion à PostgreSQL")
	}
	defer pool.Close()

	documentRepo := postgres.NewDocumentRepository(pool)
	editorUC := editor.NewUseCase(documentRepo, log, editor.DefaultSaveDelay)

	// Adaptateur d'extraction selon le fournisseur configuré.
	var extractor ports.ExtractionService
	switch cfg.AI.Provider {
	case "gemini":
		extractor = infraai.NewGeminiService(cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel)
	default:
		extractor = infraai.NewAnthropicService(cfg.AI.AnthropicAPIKey, cfg.AI.AnthropicModel)
	}
	policy := retry.Policy{
		MaxAttempts: cfg.AI.MaxAttempts,
		BaseDelay:   time.Second,
		Timeout:     time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	}
	importerUC := importer.NewUseCase(extractor, editorUC, log, policy)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 120, // /wait peut bloquer le temps d'une génération
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		EditorUC:   editorUC,
		ImporterUC: importerUC,
		JWTSecret:  cfg.JWT.Secret,
		Log:        log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("serveur HTTP arrêté")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("signal d'arrêt reçu, fermeture du serveur...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("arrêt du serveur")
	}

	// Écrire les sauvegardes différées encore en attente avant de couper la DB.
	editorUC.FlushAll()

	log.Info().Msg("application arrêtée")
}
