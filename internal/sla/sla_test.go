package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/intake-engine/internal/domain"
)

var allPriorities = []domain.Priority{
	domain.PriorityLow,
	domain.PriorityMedium,
	domain.PriorityHigh,
	domain.PriorityUrgent,
	domain.PriorityCritical,
}

func TestFor_ResolutionNotBeforeResponse(t *testing.T) {
	for _, p := range allPriorities {
		b := For(p)
		assert.Positive(t, b.ResponseHours, p)
		assert.Positive(t, b.ResolutionHours, p)
		assert.GreaterOrEqual(t, b.ResolutionHours, b.ResponseHours, p)
	}
}

func TestFor_Table(t *testing.T) {
	assert.Equal(t, Budget{1, 4}, For(domain.PriorityCritical))
	assert.Equal(t, Budget{2, 8}, For(domain.PriorityUrgent))
	assert.Equal(t, Budget{4, 24}, For(domain.PriorityHigh))
	assert.Equal(t, Budget{8, 48}, For(domain.PriorityMedium))
	assert.Equal(t, Budget{24, 72}, For(domain.PriorityLow))
	assert.Equal(t, For(domain.PriorityMedium), For(domain.Priority("")))
}

func TestFor_TighterForHigherPriority(t *testing.T) {
	for i := 1; i < len(allPriorities); i++ {
		lower, higher := For(allPriorities[i-1]), For(allPriorities[i])
		assert.LessOrEqual(t, higher.ResponseHours, lower.ResponseHours)
		assert.LessOrEqual(t, higher.ResolutionHours, lower.ResolutionHours)
	}
}

func TestDeadlines(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	resp, res := Deadlines(domain.PriorityHigh, created)
	assert.Equal(t, created.Add(4*time.Hour), resp)
	assert.Equal(t, created.Add(24*time.Hour), res)
}
