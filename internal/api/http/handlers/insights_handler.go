package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intake-engine/internal/api/dto"
	"github.com/spec-kit/intake-engine/internal/domain"
)

// InsightSource reports learning insights.
type InsightSource interface {
	Trending(ctx context.Context, days, limit int) ([]domain.TrendingIssue, error)
	Patterns(ctx context.Context, category *domain.Category, limit int) ([]domain.IssuePattern, error)
}

// InsightsHandler exposes trending issues and mined patterns.
type InsightsHandler struct {
	insights    InsightSource
	defaultDays int
}

// NewInsightsHandler constructs handler.
func NewInsightsHandler(insights InsightSource, defaultDays int) *InsightsHandler {
	if defaultDays <= 0 {
		defaultDays = 7
	}
	return &InsightsHandler{insights: insights, defaultDays: defaultDays}
}

// Trending GET /api/v1/insights/trending?days=&limit=.
func (h *InsightsHandler) Trending(c *fiber.Ctx) error {
	issues, err := h.insights.Trending(c.UserContext(), parseIntQuery(c, "days", h.defaultDays), parseIntQuery(c, "limit", 10))
	if err != nil {
		return serviceError(err)
	}
	if issues == nil {
		issues = []domain.TrendingIssue{}
	}
	return c.JSON(fiber.Map{"data": issues})
}

// Patterns GET /api/v1/insights/patterns?category=&limit=.
func (h *InsightsHandler) Patterns(c *fiber.Ctx) error {
	patterns, err := h.insights.Patterns(c.UserContext(), categoryQuery(c), parseIntQuery(c, "limit", 20))
	if err != nil {
		return serviceError(err)
	}
	items := make([]dto.PatternResponse, 0, len(patterns))
	for i := range patterns {
		items = append(items, dto.NewPatternResponse(&patterns[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
