package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/intake-engine/internal/domain"
)

func TestScore(t *testing.T) {
	selfService := domain.SolutionCandidate{Type: domain.SolutionSelfService, Confidence: 0.8, EstimatedMinutes: 5}
	assert.InDelta(t, 0.8+0.1+(1-5.0/120)*0.1, Score(selfService, domain.PriorityMedium), 1e-9)

	escalation := domain.SolutionCandidate{Type: domain.SolutionEscalation, Confidence: 0.5, EstimatedMinutes: 60}
	assert.InDelta(t, 0.35, Score(escalation, domain.PriorityMedium), 1e-9)
	assert.InDelta(t, 0.55, Score(escalation, domain.PriorityHigh), 1e-9)

	slow := domain.SolutionCandidate{Type: domain.SolutionManual, Confidence: 0.4, EstimatedMinutes: 500}
	assert.InDelta(t, 0.4, Score(slow, domain.PriorityLow), 1e-9)
}

func TestOrder_EscalationNeverBeatsSelfServiceAtLowPriority(t *testing.T) {
	for _, p := range []domain.Priority{domain.PriorityLow, domain.PriorityMedium} {
		ranked := Order([]domain.SolutionCandidate{
			{Title: "escalate", Type: domain.SolutionEscalation, Confidence: 0.7, EstimatedMinutes: 30},
			{Title: "portal", Type: domain.SolutionSelfService, Confidence: 0.7, EstimatedMinutes: 30},
		}, p)
		require.Len(t, ranked, 2)
		assert.Equal(t, "portal", ranked[0].Title, "priority %s", p)
	}
}

func TestOrder_SortedAndStable(t *testing.T) {
	ranked := Order([]domain.SolutionCandidate{
		{Title: "a", Type: domain.SolutionManual, Confidence: 0.5, EstimatedMinutes: 200},
		{Title: "b", Type: domain.SolutionManual, Confidence: 0.9, EstimatedMinutes: 200},
		{Title: "c", Type: domain.SolutionManual, Confidence: 0.5, EstimatedMinutes: 200},
	}, domain.PriorityMedium)

	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{ranked[0].Title, ranked[1].Title, ranked[2].Title})
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
	assert.Equal(t, 0.9, ranked[0].Confidence)
}

func TestApplyHistory(t *testing.T) {
	candidates := []domain.SolutionCandidate{
		{Title: "portal", Type: domain.SolutionSelfService, Confidence: 0.8, EstimatedMinutes: 5},
		{Title: "desk", Type: domain.SolutionManual, Confidence: 0.6, EstimatedMinutes: 30},
		{Title: "script", Type: domain.SolutionAutomated, Confidence: 0.6, EstimatedMinutes: 2},
	}
	records := []domain.ResolutionRecord{
		{Method: domain.ResolutionSelfService, ResolvedSuccessfully: true, ResolutionMinutes: 10},
		{Method: domain.ResolutionSelfService, ResolvedSuccessfully: true, ResolutionMinutes: 10},
		{Method: domain.ResolutionSelfService, ResolvedSuccessfully: true, ResolutionMinutes: 10},
		{Method: domain.ResolutionManual, ResolvedSuccessfully: true, ResolutionMinutes: 50},
	}

	out := ApplyHistory(candidates, records)

	require.Len(t, out, 3)
	assert.InDelta(t, 0.95, out[0].Confidence, 1e-9)
	assert.Equal(t, 7, out[0].EstimatedMinutes)
	assert.InDelta(t, 0.75, out[1].Confidence, 1e-9)
	assert.Equal(t, 40, out[1].EstimatedMinutes)
	assert.Equal(t, candidates[2], out[2])
	assert.Equal(t, 0.8, candidates[0].Confidence, "input must not be mutated")
}

func TestApplyHistory_NoRecordsIsIdentity(t *testing.T) {
	candidates := []domain.SolutionCandidate{{Title: "x", Type: domain.SolutionManual, Confidence: 0.4, EstimatedMinutes: 9}}
	assert.Equal(t, candidates, ApplyHistory(candidates, nil))
}

func TestApplyCollaborative(t *testing.T) {
	candidates := []domain.SolutionCandidate{
		{Title: "Restart VPN client", Confidence: 0.6},
		{Title: "Reinstall drivers", Confidence: 0.6},
		{Title: "Clear cache", Confidence: 0.95},
	}
	similar := []domain.ResolutionRecord{
		{ResolvedSuccessfully: true, SolutionUsed: "Restart VPN Client and reconnect"},
		{ResolvedSuccessfully: true, SolutionUsed: "clear cache"},
		{ResolvedSuccessfully: false, SolutionUsed: "reinstall drivers"},
	}

	out := ApplyCollaborative(candidates, similar)

	assert.InDelta(t, 0.75, out[0].Confidence, 1e-9)
	assert.InDelta(t, 0.6, out[1].Confidence, 1e-9)
	assert.InDelta(t, 1.0, out[2].Confidence, 1e-9)
}

func TestApplyContext(t *testing.T) {
	candidates := []domain.SolutionCandidate{
		{Title: "Advanced network reset", Description: "for the finance floor", Confidence: 0.5},
		{Title: "Basic restart", Description: "turn it off and on", Confidence: 0.5},
	}

	tech := ApplyContext(candidates, RankContext{Role: "IT Admin", Department: "Finance"})
	assert.InDelta(t, 0.7, tech[0].Confidence, 1e-9)
	assert.InDelta(t, 0.5, tech[1].Confidence, 1e-9)

	manager := ApplyContext(candidates, RankContext{Role: "Sales Manager"})
	assert.InDelta(t, 0.5, manager[0].Confidence, 1e-9)
	assert.InDelta(t, 0.6, manager[1].Confidence, 1e-9)

	located := ApplyContext(candidates, RankContext{Location: "Floor"})
	assert.InDelta(t, 0.6, located[0].Confidence, 1e-9)
	assert.InDelta(t, 0.5, located[1].Confidence, 1e-9)
}

func TestApplyContext_EmptyIsIdentity(t *testing.T) {
	candidates := []domain.SolutionCandidate{{Title: "Advanced basic", Confidence: 0.5}}
	assert.Equal(t, candidates, ApplyContext(candidates, RankContext{}))
}

func TestContextFromIntake(t *testing.T) {
	rc := ContextFromIntake(domain.TicketIntake{
		Location: "Berlin",
		Context:  map[string]string{"role": "engineer", "department": "R&D", "location": "ignored"},
	})
	assert.Equal(t, RankContext{Role: "engineer", Department: "R&D", Location: "Berlin"}, rc)
}

func TestFallbackCandidates(t *testing.T) {
	pw := FallbackCandidates(domain.CategoryPassword)
	require.Len(t, pw, 1)
	assert.Equal(t, "Self-Service Password Reset", pw[0].Title)
	assert.Equal(t, domain.SolutionSelfService, pw[0].Type)
	assert.Equal(t, 0.8, pw[0].Confidence)
	assert.Equal(t, 5, pw[0].EstimatedMinutes)

	vpn := FallbackCandidates(domain.CategoryVPN)
	require.Len(t, vpn, 1)
	assert.Equal(t, domain.SolutionManual, vpn[0].Type)
	assert.Equal(t, 15, vpn[0].EstimatedMinutes)

	other := FallbackCandidates(domain.CategoryPrinter)
	require.Len(t, other, 1)
	assert.Equal(t, "Contact IT Support", other[0].Title)
	assert.Equal(t, domain.SolutionEscalation, other[0].Type)

	other[0].Title = "mutated"
	assert.Equal(t, "Contact IT Support", FallbackCandidates(domain.CategoryOther)[0].Title)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 2}, []float32{2, 4}), 1e-6)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.Equal(t, 0.0, Cosine([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, Cosine(nil, nil))
}
