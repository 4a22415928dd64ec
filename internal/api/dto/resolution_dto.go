package dto

import (
	"time"

	"github.com/spec-kit/intake-engine/internal/domain"
)

// RecordResolutionRequest payload for POST /resolutions.
type RecordResolutionRequest struct {
	TicketID             string  `json:"ticket_id"`
	ArticleID            *string `json:"article_id"`
	Category             string  `json:"category"`
	Subcategory          *string `json:"subcategory"`
	Method               string  `json:"method"`
	ResolvedSuccessfully bool    `json:"resolved_successfully"`
	ResolutionMinutes    int     `json:"resolution_minutes"`
	UserSatisfaction     *int    `json:"user_satisfaction"`
	SolutionUsed         string  `json:"solution_used"`
	ActualSolution       *string `json:"actual_solution"`
	OriginalQuery        string  `json:"original_query"`
	CloseTicket          bool    `json:"close_ticket"`
}

// ResolutionResponse is the public view of a resolution record.
type ResolutionResponse struct {
	ID                   string                  `json:"id"`
	TicketID             string                  `json:"ticket_id"`
	Category             domain.Category         `json:"category"`
	Method               domain.ResolutionMethod `json:"method"`
	ResolvedSuccessfully bool                    `json:"resolved_successfully"`
	ResolutionMinutes    int                     `json:"resolution_minutes"`
	CreatedAt            time.Time               `json:"created_at"`
}

// NewResolutionResponse builds a ResolutionResponse.
func NewResolutionResponse(r *domain.ResolutionRecord) ResolutionResponse {
	return ResolutionResponse{
		ID:                   r.ID,
		TicketID:             r.TicketID,
		Category:             r.Category,
		Method:               r.Method,
		ResolvedSuccessfully: r.ResolvedSuccessfully,
		ResolutionMinutes:    r.ResolutionMinutes,
		CreatedAt:            r.CreatedAt,
	}
}
