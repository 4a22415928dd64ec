package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intake-engine/internal/api/dto"
	"github.com/spec-kit/intake-engine/internal/domain"
	"github.com/spec-kit/intake-engine/internal/service"
	apperrors "github.com/spec-kit/intake-engine/pkg/util/errorutil"
)

// IntakeProcessor runs the intake pipeline.
type IntakeProcessor interface {
	Submit(ctx context.Context, source domain.Source, raw []byte) (*service.IntakeResult, error)
	GetTicket(ctx context.Context, number string) (*domain.Ticket, error)
}

// IntakeHandler exposes intake, chat and ticket lookup endpoints.
type IntakeHandler struct {
	intake IntakeProcessor
}

// NewIntakeHandler constructs handler.
func NewIntakeHandler(intake IntakeProcessor) *IntakeHandler {
	return &IntakeHandler{intake: intake}
}

// Submit POST /api/v1/intake/:source.
func (h *IntakeHandler) Submit(c *fiber.Ctx) error {
	source := domain.Source(strings.ToLower(c.Params("source")))
	if !source.Valid() {
		return apperrors.NewValidationError("unknown intake source", map[string]any{"source": c.Params("source")})
	}
	result, err := h.intake.Submit(c.UserContext(), source, c.Body())
	if err != nil {
		return serviceError(err)
	}
	return c.Status(statusFor(result)).JSON(fiber.Map{"data": dto.NewIntakeResponse(result)})
}

// Chat POST /api/v1/chat.
func (h *IntakeHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Message) == "" {
		return apperrors.NewValidationError("message required", nil)
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return err
	}
	result, err := h.intake.Submit(c.UserContext(), domain.SourceChat, raw)
	if err != nil {
		return serviceError(err)
	}
	return c.Status(statusFor(result)).JSON(fiber.Map{"data": dto.NewChatResponse(result)})
}

// GetTicket GET /api/v1/tickets/:number.
func (h *IntakeHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.intake.GetTicket(c.UserContext(), c.Params("number"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

func statusFor(result *service.IntakeResult) int {
	if result.Status == service.IntakeTicketCreated {
		return http.StatusCreated
	}
	return http.StatusOK
}
