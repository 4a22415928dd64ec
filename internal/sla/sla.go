// Package sla maps ticket priority to response and resolution budgets.
package sla

import (
	"time"

	"github.com/spec-kit/intake-engine/internal/domain"
)

// Budget holds the response and resolution allowance in whole hours.
type Budget struct {
	ResponseHours   int `json:"response_hours"`
	ResolutionHours int `json:"resolution_hours"`
}

var budgets = map[domain.Priority]Budget{
	domain.PriorityCritical: {ResponseHours: 1, ResolutionHours: 4},
	domain.PriorityUrgent:   {ResponseHours: 2, ResolutionHours: 8},
	domain.PriorityHigh:     {ResponseHours: 4, ResolutionHours: 24},
	domain.PriorityMedium:   {ResponseHours: 8, ResolutionHours: 48},
	domain.PriorityLow:      {ResponseHours: 24, ResolutionHours: 72},
}

// For returns the budget for p; unknown priorities get the Medium budget.
func For(p domain.Priority) Budget {
	if b, ok := budgets[p]; ok {
		return b
	}
	return budgets[domain.PriorityMedium]
}

// Deadlines returns the response and resolution due times for a ticket
// created at createdAt.
func Deadlines(p domain.Priority, createdAt time.Time) (response, resolution time.Time) {
	b := For(p)
	return createdAt.Add(time.Duration(b.ResponseHours) * time.Hour),
		createdAt.Add(time.Duration(b.ResolutionHours) * time.Hour)
}
