package main

import (
	"context"
	"log"
	"os"
	"time"

	httpadapter "cv-apply/internal/adapter/http"
	repo "cv-apply/internal/adapter/repository"
	"cv-apply/internal/infrastructure/migration"
	"cv-apply/internal/usecase"
	infra "cv-apply/pkg/infrastructure"
	"cv-apply/pkg/salesforce"

	"github.com/gofiber/fiber/v2"
)

func main() {
	ctx := context.Background()

	// infra setup
	pool, err := infra.NewSubmissionsPool(ctx)
	if err != nil {
		log.Printf("warning: submissions DB not available: %v", err)
	}
	if pool != nil {
		if err := migration.RunMigrations(ctx, pool); err != nil {
			log.Printf("warning: migrations failed: %v", err)
		}
	}

	renderer := infra.NewChromedpRenderer()
	builder := usecase.NewDocumentBuilder(renderer, "templates")

	cfg := salesforce.ConfigFromEnv()
	client := salesforce.NewClient(cfg.BaseURL)
	submissionsRepo := repo.NewSubmissionsRepo(pool)
	submitter := usecase.NewSubmitter(client, submissionsRepo, cfg)

	app := fiber.New()

	h := httpadapter.NewHandler(submitter, builder, submissionsRepo)
	app.Post("/documents/generate", h.GenerateDocument)
	app.Post("/applications/submit", h.SubmitApplication)
	app.Post("/applications/sweep", h.RunSweep)
	app.Get("/applications/recent", h.RecentSubmissions)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	}()

	// keep process alive
	<-time.After(100 * time.Hour)
	_ = ctx
}
