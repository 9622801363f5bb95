package http

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"cv-apply/internal/adapter/repository"
	"cv-apply/internal/model"
	"cv-apply/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handler struct {
	submitter *usecase.Submitter
	builder   *usecase.DocumentBuilder
	repo      *repository.SubmissionsRepo
}

func NewHandler(s *usecase.Submitter, b *usecase.DocumentBuilder, r *repository.SubmissionsRepo) *Handler {
	return &Handler{submitter: s, builder: b, repo: r}
}

type generateReq struct {
	Title    string          `json:"title"`
	Sections []model.Section `json:"sections"`
	Links    []string        `json:"links,omitempty"`
	Output   string          `json:"output,omitempty"`
}

func (h *Handler) GenerateDocument(c *fiber.Ctx) error {
	var req generateReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	if len(req.Sections) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "sections required"})
	}

	sink := req.Output
	if sink == "" {
		ts := time.Now().Format("20060102T150405")
		sink = filepath.Join("cv-data", "generated", fmt.Sprintf("cv_%s.pdf", ts))
	}
	doc := model.Document{Title: req.Title, Sections: req.Sections, Links: req.Links}
	docID := uuid.New()

	// spawn background rendering
	go func() {
		ctx := context.Background()
		if err := h.builder.Generate(ctx, doc, sink); err != nil {
			log.Printf("document %s failed: %v", docID.String(), err)
		}
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"documentId": docID.String(), "output": sink, "status": "started"})
}

func (h *Handler) SubmitApplication(c *fiber.Ctx) error {
	var req usecase.Application
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	ctx := context.Background()
	token, err := h.submitter.AcquireToken(ctx)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": fmt.Sprintf("token acquisition failed: %v", err)})
	}

	result := h.submitter.Submit(ctx, token, req)
	return c.JSON(result)
}

type sweepReq struct {
	Application usecase.Application `json:"application"`
	Domains     []string            `json:"domains"`
}

func (h *Handler) RunSweep(c *fiber.Ctx) error {
	var req sweepReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	domains := req.Domains
	if len(domains) == 0 {
		// probe the default variants, including the no-parameter case
		domains = []string{"", "mysolution"}
	}

	sweepID := uuid.New()
	go func() {
		ctx := context.Background()
		if _, err := h.submitter.Run(ctx, req.Application, domains); err != nil {
			log.Printf("sweep %s aborted: %v", sweepID.String(), err)
		}
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"sweepId": sweepID.String(), "domains": domains, "status": "started"})
}

func (h *Handler) RecentSubmissions(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	out, err := h.repo.Recent(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"attempts": out})
}
