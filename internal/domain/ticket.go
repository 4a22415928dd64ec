package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen        TicketStatus = "OPEN"
	TicketStatusInProgress  TicketStatus = "IN_PROGRESS"
	TicketStatusPendingUser TicketStatus = "PENDING_USER"
	TicketStatusResolved    TicketStatus = "RESOLVED"
	TicketStatusClosed      TicketStatus = "CLOSED"
)

// Ticket is a request that needs a human, created with the ranked
// suggestions attached as advisory content.
type Ticket struct {
	ID                   string
	TicketNumber         string
	Title                string
	Description          string
	Source               Source
	SourceReference      *string
	RequesterID          string
	RequesterEmail       string
	RequesterName        string
	Location             *string
	AssetTag             *string
	Category             Category
	Subcategory          *string
	Priority             Priority
	Status               TicketStatus
	AssignedTeam         *string
	Classification       Classification
	ClassificationSource string
	Suggestions          []RankedSolution
	Attachments          []AttachmentReference
	ResponseDue          time.Time
	ResolutionDue        time.Time
	Resolution           *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	ResolvedAt           *time.Time
}
