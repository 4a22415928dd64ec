package domain

import (
	"errors"
	"time"
)

// ErrDuplicateResolution is returned when a ticket already has a successful
// resolution record.
var ErrDuplicateResolution = errors.New("ticket already has a successful resolution")

// ResolutionMethod records how a ticket was eventually resolved.
type ResolutionMethod string

const (
	ResolutionSelfService ResolutionMethod = ResolutionMethod(SolutionSelfService)
	ResolutionAutomated   ResolutionMethod = ResolutionMethod(SolutionAutomated)
	ResolutionManual      ResolutionMethod = ResolutionMethod(SolutionManual)
	ResolutionEscalation  ResolutionMethod = ResolutionMethod(SolutionEscalation)
)

// ResolutionRecord is the append-only outcome of a resolved ticket.
type ResolutionRecord struct {
	ID                   string
	TicketID             string
	ArticleID            *string
	Category             Category
	Subcategory          *string
	Method               ResolutionMethod
	ResolvedSuccessfully bool
	ResolutionMinutes    int
	UserSatisfaction     *int
	SolutionUsed         string
	ActualSolution       *string
	OriginalQuery        string
	CreatedAt            time.Time
}

// IssuePattern is a recurring keyword signature mined from resolutions.
type IssuePattern struct {
	ID                   string
	Category             Category
	Subcategory          *string
	PatternText          string
	Keywords             []string
	Frequency            int
	AvgResolutionMinutes int
	CommonSolutions      []string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TrendingIssue summarizes recent resolutions for one category.
type TrendingIssue struct {
	Category             Category `json:"category"`
	TicketCount          int      `json:"ticket_count"`
	SuccessRate          float64  `json:"success_rate"`
	AvgResolutionMinutes int      `json:"avg_resolution_minutes"`
}
