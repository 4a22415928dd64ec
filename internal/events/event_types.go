package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/intake-engine/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated      EventType = "ticket_created"
	EventIntakeAutoResolved EventType = "intake_auto_resolved"
	EventResolutionRecorded EventType = "resolution_recorded"
)

// Event represents a domain event emitted by services. Reference is the
// ticket number, or the requester for auto-resolved intakes.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Reference string      `json:"reference"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, reference string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Reference: reference,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber   string          `json:"ticket_number"`
	Source         domain.Source   `json:"source"`
	Category       domain.Category `json:"category"`
	Priority       domain.Priority `json:"priority"`
	AssignedTeam   *string         `json:"assigned_team,omitempty"`
	RequesterEmail string          `json:"requester_email"`
	Title          string          `json:"title"`
}

// IntakeAutoResolvedPayload payload.
type IntakeAutoResolvedPayload struct {
	Source         domain.Source   `json:"source"`
	Category       domain.Category `json:"category"`
	RequesterEmail string          `json:"requester_email"`
	Solution       string          `json:"solution"`
	ActionType     string          `json:"action_type,omitempty"`
	ActionStatus   string          `json:"action_status,omitempty"`
}

// ResolutionRecordedPayload payload.
type ResolutionRecordedPayload struct {
	RecordID   string                  `json:"record_id"`
	TicketID   string                  `json:"ticket_id"`
	Category   domain.Category         `json:"category"`
	Method     domain.ResolutionMethod `json:"method"`
	Successful bool                    `json:"successful"`
}
