package dto

import (
	"time"

	"github.com/spec-kit/intake-engine/internal/domain"
	"github.com/spec-kit/intake-engine/internal/intake"
	"github.com/spec-kit/intake-engine/internal/service"
)

// ActionResponse reports an executed automated action.
type ActionResponse struct {
	ActionType string            `json:"action_type"`
	Status     string            `json:"status"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
}

// IntakeResponse is returned for every processed intake.
type IntakeResponse struct {
	Status                     string                  `json:"status"`
	Reference                  string                  `json:"reference"`
	TicketNumber               string                  `json:"ticket_number,omitempty"`
	Classification             domain.Classification   `json:"classification"`
	ClassificationSource       string                  `json:"classification_source"`
	Solutions                  []domain.RankedSolution `json:"solutions"`
	Articles                   []ArticleSummary        `json:"articles,omitempty"`
	Decision                   string                  `json:"decision"`
	Action                     *ActionResponse         `json:"action,omitempty"`
	EstimatedResolutionMinutes int                     `json:"estimated_resolution_minutes"`
	ResponseDue                *time.Time              `json:"response_due,omitempty"`
	ResolutionDue              *time.Time              `json:"resolution_due,omitempty"`
	Degraded                   []string                `json:"degraded,omitempty"`
}

// ChatRequest is a message typed into the support chat.
type ChatRequest struct {
	Message   string               `json:"message"`
	UserID    string               `json:"user_id"`
	UserName  string               `json:"user_name"`
	UserEmail string               `json:"user_email"`
	Context   intake.ContextValues `json:"context"`
}

// ChatResponse is the chat-facing view of an intake result.
type ChatResponse struct {
	Status                     string                  `json:"status"`
	Message                    string                  `json:"message"`
	Reference                  string                  `json:"reference"`
	Solutions                  []domain.RankedSolution `json:"solutions"`
	EstimatedResolutionMinutes int                     `json:"estimated_resolution_minutes"`
}

// NewIntakeResponse builds an IntakeResponse.
func NewIntakeResponse(r *service.IntakeResult) IntakeResponse {
	resp := IntakeResponse{
		Status:                     string(r.Status),
		Reference:                  r.Reference,
		Classification:             r.Classification,
		ClassificationSource:       string(r.ClassificationOutcome),
		Solutions:                  nonNilSolutions(r.Solutions),
		Decision:                   r.Decision.Reason,
		EstimatedResolutionMinutes: r.EstimatedResolutionMinutes,
		Degraded:                   r.Degraded,
	}
	for i := range r.Articles {
		resp.Articles = append(resp.Articles, NewArticleSummary(&r.Articles[i]))
	}
	if r.Execution != nil {
		resp.Action = &ActionResponse{
			ActionType: r.Execution.ActionType,
			Status:     string(r.Execution.Status),
			Message:    r.Execution.Message,
			Details:    r.Execution.Details,
		}
	}
	if r.Ticket != nil {
		resp.TicketNumber = r.Ticket.TicketNumber
		resp.ResponseDue = &r.Ticket.ResponseDue
		resp.ResolutionDue = &r.Ticket.ResolutionDue
	}
	return resp
}

// NewChatResponse builds a ChatResponse with a human readable message.
func NewChatResponse(r *service.IntakeResult) ChatResponse {
	resp := ChatResponse{
		Status:                     string(r.Status),
		Reference:                  r.Reference,
		Solutions:                  nonNilSolutions(r.Solutions),
		EstimatedResolutionMinutes: r.EstimatedResolutionMinutes,
	}
	switch {
	case r.Status == service.IntakeResolved && r.Execution != nil:
		resp.Message = r.Execution.Message
	case r.Status == service.IntakeResolved:
		resp.Message = "Your request has been resolved: " + r.Decision.Top.Title
	default:
		resp.Message = "A support ticket has been created: " + r.Reference
	}
	return resp
}

func nonNilSolutions(in []domain.RankedSolution) []domain.RankedSolution {
	if in == nil {
		return []domain.RankedSolution{}
	}
	return in
}

// TicketResponse is the public view of a ticket.
type TicketResponse struct {
	TicketNumber    string                       `json:"ticket_number"`
	Title           string                       `json:"title"`
	Description     string                       `json:"description"`
	Source          domain.Source                `json:"source"`
	SourceReference *string                      `json:"source_reference,omitempty"`
	RequesterEmail  string                       `json:"requester_email"`
	RequesterName   string                       `json:"requester_name"`
	Category        domain.Category              `json:"category"`
	Subcategory     *string                      `json:"subcategory,omitempty"`
	Priority        domain.Priority              `json:"priority"`
	Status          domain.TicketStatus          `json:"status"`
	AssignedTeam    *string                      `json:"assigned_team,omitempty"`
	Suggestions     []domain.RankedSolution      `json:"suggestions"`
	Attachments     []domain.AttachmentReference `json:"attachments"`
	ResponseDue     time.Time                    `json:"response_due"`
	ResolutionDue   time.Time                    `json:"resolution_due"`
	Resolution      *string                      `json:"resolution,omitempty"`
	CreatedAt       time.Time                    `json:"created_at"`
	ResolvedAt      *time.Time                   `json:"resolved_at,omitempty"`
}

// NewTicketResponse builds a TicketResponse.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		TicketNumber:    t.TicketNumber,
		Title:           t.Title,
		Description:     t.Description,
		Source:          t.Source,
		SourceReference: t.SourceReference,
		RequesterEmail:  t.RequesterEmail,
		RequesterName:   t.RequesterName,
		Category:        t.Category,
		Subcategory:     t.Subcategory,
		Priority:        t.Priority,
		Status:          t.Status,
		AssignedTeam:    t.AssignedTeam,
		Suggestions:     nonNilSolutions(t.Suggestions),
		Attachments:     t.Attachments,
		ResponseDue:     t.ResponseDue,
		ResolutionDue:   t.ResolutionDue,
		Resolution:      t.Resolution,
		CreatedAt:       t.CreatedAt,
		ResolvedAt:      t.ResolvedAt,
	}
}
