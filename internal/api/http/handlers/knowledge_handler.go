package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intake-engine/internal/api/dto"
	"github.com/spec-kit/intake-engine/internal/auth"
	"github.com/spec-kit/intake-engine/internal/domain"
	"github.com/spec-kit/intake-engine/internal/intake"
	"github.com/spec-kit/intake-engine/internal/service"
	apperrors "github.com/spec-kit/intake-engine/pkg/util/errorutil"
)

// KnowledgeBase is the knowledge service surface used over HTTP.
type KnowledgeBase interface {
	Search(ctx context.Context, query string, category *domain.Category, limit int) ([]domain.KnowledgeArticle, error)
	Get(ctx context.Context, id string) (*domain.KnowledgeArticle, error)
	Create(ctx context.Context, input service.ArticleInput, author string) (*domain.KnowledgeArticle, error)
	Publish(ctx context.Context, id string) error
	Feedback(ctx context.Context, id string, helpful bool) error
}

// KnowledgeHandler exposes knowledge base endpoints.
type KnowledgeHandler struct {
	knowledge KnowledgeBase
}

// NewKnowledgeHandler constructs handler.
func NewKnowledgeHandler(knowledge KnowledgeBase) *KnowledgeHandler {
	return &KnowledgeHandler{knowledge: knowledge}
}

// Search GET /api/v1/knowledge/search?q=&category=&limit=.
func (h *KnowledgeHandler) Search(c *fiber.Ctx) error {
	articles, err := h.knowledge.Search(c.UserContext(), c.Query("q"), categoryQuery(c), parseIntQuery(c, "limit", 10))
	if err != nil {
		return serviceError(err)
	}
	items := make([]dto.ArticleSummary, 0, len(articles))
	for i := range articles {
		items = append(items, dto.NewArticleSummary(&articles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/v1/knowledge/articles/:id.
func (h *KnowledgeHandler) Get(c *fiber.Ctx) error {
	article, err := h.knowledge.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return notFoundOr(err, "article")
	}
	return c.JSON(fiber.Map{"data": dto.NewArticleResponse(article)})
}

// Feedback POST /api/v1/knowledge/articles/:id/feedback.
func (h *KnowledgeHandler) Feedback(c *fiber.Ctx) error {
	var req dto.FeedbackRequest
	if err := c.BodyParser(&req); err != nil || req.Helpful == nil {
		return apperrors.NewValidationError("helpful flag required", nil)
	}
	if err := h.knowledge.Feedback(c.UserContext(), c.Params("id"), *req.Helpful); err != nil {
		return notFoundOr(err, "article")
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"status": "recorded"}})
}

// Create POST /api/v1/knowledge/articles (staff).
func (h *KnowledgeHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	var category domain.Category
	if strings.TrimSpace(req.Category) != "" {
		category = resolveCategory(req.Category)
	}
	input := service.ArticleInput{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Category:    category,
		Subcategory: req.Subcategory,
		Tags:        req.Tags,
		Keywords:    req.Keywords,
		Solutions:   req.Solutions,
		Publish:     req.Publish,
	}
	article, err := h.knowledge.Create(c.UserContext(), input, staffEmail(c))
	if err != nil {
		return serviceError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewArticleResponse(article)})
}

// Publish POST /api/v1/knowledge/articles/:id/publish (staff).
func (h *KnowledgeHandler) Publish(c *fiber.Ctx) error {
	if err := h.knowledge.Publish(c.UserContext(), c.Params("id")); err != nil {
		return notFoundOr(err, "article")
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": string(domain.ArticleStatusPublished)}})
}

func categoryQuery(c *fiber.Ctx) *domain.Category {
	raw := strings.TrimSpace(c.Query("category"))
	if raw == "" {
		return nil
	}
	category := resolveCategory(raw)
	return &category
}

// resolveCategory accepts canonical names first, then external labels.
func resolveCategory(raw string) domain.Category {
	if c, ok := domain.ParseCategory(raw); ok {
		return c
	}
	c, _ := intake.MapCategory(raw)
	return c
}

func staffEmail(c *fiber.Ctx) string {
	if principal, ok := auth.PrincipalFromContext(c); ok && principal.Staff != nil {
		return principal.Staff.Email
	}
	return ""
}
