package ranking

import (
	"math"
	"sort"
	"strings"

	"github.com/spec-kit/intake-engine/internal/domain"
)

const (
	historyConfidenceCap = 0.95
	collaborativeBonus   = 0.15
	contextBonus         = 0.1
	selfServiceBonus     = 0.1
	automatedBonus       = 0.05
	escalationPenalty    = 0.2
	timeHorizonMinutes   = 120.0
	timeWeight           = 0.1
)

var (
	technicalRoles    = []string{"it", "developer", "engineer", "technical", "admin"}
	nonTechnicalRoles = []string{"manager", "executive", "hr", "finance", "sales"}
)

// RankContext carries requester attributes used by the context stage.
type RankContext struct {
	Role       string
	Department string
	Location   string
}

// ContextFromIntake reads role and department from the free-form intake
// context and location from the intake itself.
func ContextFromIntake(in domain.TicketIntake) RankContext {
	rc := RankContext{Location: in.Location}
	if in.Context != nil {
		rc.Role = in.Context["role"]
		rc.Department = in.Context["department"]
		if rc.Location == "" {
			rc.Location = in.Context["location"]
		}
	}
	return rc
}

type methodStats struct {
	count        int
	totalMinutes int
}

// ApplyHistory boosts candidates whose type matches a historically
// successful resolution method and blends their time estimate toward that
// method's mean. An empty history leaves candidates unchanged.
func ApplyHistory(candidates []domain.SolutionCandidate, records []domain.ResolutionRecord) []domain.SolutionCandidate {
	if len(records) == 0 {
		return candidates
	}
	stats := map[domain.ResolutionMethod]*methodStats{}
	total := 0
	for _, rec := range records {
		if !rec.ResolvedSuccessfully {
			continue
		}
		s, ok := stats[rec.Method]
		if !ok {
			s = &methodStats{}
			stats[rec.Method] = s
		}
		s.count++
		s.totalMinutes += rec.ResolutionMinutes
		total++
	}
	if total == 0 {
		return candidates
	}

	out := make([]domain.SolutionCandidate, len(candidates))
	for i, c := range candidates {
		if s, ok := stats[domain.ResolutionMethod(c.Type)]; ok {
			share := float64(s.count) / float64(total)
			c.Confidence = math.Min(historyConfidenceCap, c.Confidence*(1+share))
			mean := float64(s.totalMinutes) / float64(s.count)
			c.EstimatedMinutes = int((float64(c.EstimatedMinutes) + mean) / 2)
		}
		out[i] = c
	}
	return out
}

// ApplyCollaborative adds a fixed bonus to candidates whose title appears
// in the solution a similar ticket was successfully resolved with.
func ApplyCollaborative(candidates []domain.SolutionCandidate, similar []domain.ResolutionRecord) []domain.SolutionCandidate {
	var used []string
	for _, rec := range similar {
		if rec.ResolvedSuccessfully && strings.TrimSpace(rec.SolutionUsed) != "" {
			used = append(used, strings.ToLower(rec.SolutionUsed))
		}
	}
	if len(used) == 0 {
		return candidates
	}

	out := make([]domain.SolutionCandidate, len(candidates))
	for i, c := range candidates {
		title := strings.ToLower(strings.TrimSpace(c.Title))
		if title != "" {
			for _, u := range used {
				if strings.Contains(u, title) {
					c.Confidence = math.Min(1, c.Confidence+collaborativeBonus)
				}
			}
		}
		out[i] = c
	}
	return out
}

// ApplyContext adjusts confidence for requester role, department and location.
func ApplyContext(candidates []domain.SolutionCandidate, rc RankContext) []domain.SolutionCandidate {
	role := strings.ToLower(strings.TrimSpace(rc.Role))
	department := strings.ToLower(strings.TrimSpace(rc.Department))
	location := strings.ToLower(strings.TrimSpace(rc.Location))
	if role == "" && department == "" && location == "" {
		return candidates
	}

	technical := role != "" && containsAny(role, technicalRoles)
	nonTechnical := role != "" && !technical && containsAny(role, nonTechnicalRoles)

	out := make([]domain.SolutionCandidate, len(candidates))
	for i, c := range candidates {
		title := strings.ToLower(c.Title)
		description := strings.ToLower(c.Description)

		switch {
		case technical && containsAny(title, []string{"technical", "advanced"}):
			c.Confidence = math.Min(1, c.Confidence+contextBonus)
		case nonTechnical && containsAny(title, []string{"simple", "basic"}):
			c.Confidence = math.Min(1, c.Confidence+contextBonus)
		}
		if department != "" && (strings.Contains(title, department) || strings.Contains(description, department)) {
			c.Confidence = math.Min(1, c.Confidence+contextBonus)
		}
		if location != "" && (strings.Contains(title, location) || strings.Contains(description, location)) {
			c.Confidence = math.Min(1, c.Confidence+contextBonus)
		}
		out[i] = c
	}
	return out
}

// Score is confidence plus type bonus plus a preference for quick fixes.
// Escalation is penalized unless the request is High priority or above.
func Score(c domain.SolutionCandidate, priority domain.Priority) float64 {
	score := c.Confidence
	switch c.Type {
	case domain.SolutionSelfService:
		score += selfServiceBonus
	case domain.SolutionAutomated:
		score += automatedBonus
	case domain.SolutionEscalation:
		if !priority.AtLeast(domain.PriorityHigh) {
			score -= escalationPenalty
		}
	}
	timeFactor := math.Max(0, 1-float64(c.EstimatedMinutes)/timeHorizonMinutes)
	return score + timeFactor*timeWeight
}

// Order scores candidates and sorts them by descending score. Ties keep
// the original candidate order.
func Order(candidates []domain.SolutionCandidate, priority domain.Priority) []domain.RankedSolution {
	ranked := make([]domain.RankedSolution, len(candidates))
	for i, c := range candidates {
		ranked[i] = domain.RankedSolution{SolutionCandidate: c, Score: Score(c, priority)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
