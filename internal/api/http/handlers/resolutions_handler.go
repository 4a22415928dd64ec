package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intake-engine/internal/api/dto"
	"github.com/spec-kit/intake-engine/internal/domain"
	"github.com/spec-kit/intake-engine/internal/service"
	apperrors "github.com/spec-kit/intake-engine/pkg/util/errorutil"
)

// OutcomeRecorder records reported resolution outcomes.
type OutcomeRecorder interface {
	Record(ctx context.Context, input service.ResolutionInput, resolver string) (*domain.ResolutionRecord, error)
}

// ResolutionsHandler exposes the staff resolution feedback endpoint.
type ResolutionsHandler struct {
	resolutions OutcomeRecorder
}

// NewResolutionsHandler constructs handler.
func NewResolutionsHandler(resolutions OutcomeRecorder) *ResolutionsHandler {
	return &ResolutionsHandler{resolutions: resolutions}
}

// Record POST /api/v1/resolutions (staff).
func (h *ResolutionsHandler) Record(c *fiber.Ctx) error {
	var req dto.RecordResolutionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.TicketID) == "" || strings.TrimSpace(req.Category) == "" {
		return apperrors.NewValidationError("ticket_id and category required", nil)
	}
	if req.ResolutionMinutes < 0 {
		return apperrors.NewValidationError("resolution_minutes must not be negative", nil)
	}

	var method domain.ResolutionMethod
	if strings.TrimSpace(req.Method) != "" {
		method = domain.ResolutionMethod(domain.ParseSolutionType(strings.ToLower(req.Method)))
	}
	input := service.ResolutionInput{
		TicketID:             req.TicketID,
		ArticleID:            req.ArticleID,
		Category:             resolveCategory(req.Category),
		Subcategory:          req.Subcategory,
		Method:               method,
		ResolvedSuccessfully: req.ResolvedSuccessfully,
		ResolutionMinutes:    req.ResolutionMinutes,
		UserSatisfaction:     req.UserSatisfaction,
		SolutionUsed:         req.SolutionUsed,
		ActualSolution:       req.ActualSolution,
		OriginalQuery:        req.OriginalQuery,
		CloseTicket:          req.CloseTicket,
	}
	rec, err := h.resolutions.Record(c.UserContext(), input, staffEmail(c))
	if err != nil {
		return serviceError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewResolutionResponse(rec)})
}
