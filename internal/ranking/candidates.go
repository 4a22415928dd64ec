package ranking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spec-kit/intake-engine/internal/domain"
	"github.com/spec-kit/intake-engine/internal/llm"
)

var fallbackCandidates = map[domain.Category][]domain.SolutionCandidate{
	domain.CategoryPassword: {{
		Title:       "Self-Service Password Reset",
		Description: "Reset your password using the self-service portal",
		Steps: []string{
			"Go to the self-service password portal",
			"Click on 'Forgot Password'",
			"Enter your employee ID",
			"Follow the instructions sent to your registered email",
		},
		Type:             domain.SolutionSelfService,
		Confidence:       0.8,
		EstimatedMinutes: 5,
		AutomatedAction: &domain.AutomatedAction{
			ActionType:     "password_reset",
			SuccessMessage: "Password reset link sent to your registered email",
			FailureMessage: "Password reset failed, a ticket has been raised",
		},
	}},
	domain.CategoryVPN: {{
		Title:       "VPN Connection Troubleshooting",
		Description: "Basic steps to resolve VPN connection issues",
		Steps: []string{
			"Disconnect from VPN completely",
			"Restart the VPN client",
			"Check internet connectivity",
			"Try connecting to a different VPN server",
			"Contact IT if the issue persists",
		},
		Type:             domain.SolutionManual,
		Confidence:       0.7,
		EstimatedMinutes: 15,
	}},
}

var defaultFallbackCandidate = domain.SolutionCandidate{
	Title:            "Contact IT Support",
	Description:      "This issue requires assistance from the IT support team",
	Steps:            []string{"Contact the IT helpdesk at it-support@example.com or call the support line"},
	Type:             domain.SolutionEscalation,
	Confidence:       0.5,
	EstimatedMinutes: 60,
}

// FallbackCandidates returns the fixed candidates for category, defaulting
// to a single escalation to human support.
func FallbackCandidates(category domain.Category) []domain.SolutionCandidate {
	src, ok := fallbackCandidates[category]
	if !ok {
		src = []domain.SolutionCandidate{defaultFallbackCandidate}
	}
	out := make([]domain.SolutionCandidate, len(src))
	copy(out, src)
	return out
}

// ErrNoCandidates is returned when a generator produced an empty list.
var ErrNoCandidates = errors.New("no solution candidates generated")

const candidatesSystemPrompt = `You are an IT helpdesk assistant proposing solutions for a classified support request.
Reply with a single JSON object and nothing else.`

// ModelCandidateGenerator asks a language model for solution candidates.
type ModelCandidateGenerator struct {
	completer llm.Completer
}

// NewModelCandidateGenerator wraps a completer.
func NewModelCandidateGenerator(completer llm.Completer) *ModelCandidateGenerator {
	return &ModelCandidateGenerator{completer: completer}
}

type modelSolutions struct {
	Solutions []struct {
		Title           string                  `json:"title"`
		Description     string                  `json:"description"`
		Steps           []string                `json:"steps"`
		SolutionType    string                  `json:"solution_type"`
		Confidence      *float64                `json:"confidence"`
		EstimatedTime   *int                    `json:"estimated_time"`
		AutomatedAction *domain.AutomatedAction `json:"automated_action"`
	} `json:"solutions"`
}

// Generate implements CandidateGenerator.
func (g *ModelCandidateGenerator) Generate(ctx context.Context, c domain.Classification, text string, articles []domain.KnowledgeArticle) ([]domain.SolutionCandidate, error) {
	reply, err := g.completer.Complete(ctx, candidatesSystemPrompt, buildCandidatesPrompt(c, text, articles))
	if err != nil {
		return nil, err
	}
	parsed, err := llm.ParseJSONResponse[modelSolutions](reply)
	if err != nil {
		return nil, fmt.Errorf("parse solutions: %w", err)
	}

	out := make([]domain.SolutionCandidate, 0, len(parsed.Solutions))
	for _, s := range parsed.Solutions {
		candidate := domain.SolutionCandidate{
			Title:            strings.TrimSpace(s.Title),
			Description:      s.Description,
			Steps:            s.Steps,
			Type:             domain.ParseSolutionType(s.SolutionType),
			Confidence:       0.5,
			EstimatedMinutes: 30,
			AutomatedAction:  s.AutomatedAction,
		}
		if candidate.Title == "" {
			candidate.Title = "Solution"
		}
		if candidate.Steps == nil {
			candidate.Steps = []string{}
		}
		if s.Confidence != nil && !math.IsNaN(*s.Confidence) {
			candidate.Confidence = math.Max(0, math.Min(1, *s.Confidence))
		}
		if s.EstimatedTime != nil && *s.EstimatedTime > 0 {
			candidate.EstimatedMinutes = *s.EstimatedTime
		}
		out = append(out, candidate)
	}
	if len(out) == 0 {
		return nil, ErrNoCandidates
	}
	return out, nil
}

func buildCandidatesPrompt(c domain.Classification, text string, articles []domain.KnowledgeArticle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User query:\n%s\n\n", text)
	fmt.Fprintf(&b, "Classification: category=%s subcategory=%s priority=%s\n\n", c.Category, c.Subcategory, c.Priority)

	if len(articles) > 0 {
		b.WriteString("Relevant knowledge base articles:\n")
		for _, a := range articles {
			fmt.Fprintf(&b, "- %s: %s\n", a.Title, a.Description)
			for _, s := range a.Solutions {
				fmt.Fprintf(&b, "  * %s (%s): %s\n", s.Title, s.Type, s.Description)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(`Respond with up to 3 solutions:
{
  "solutions": [{
    "title": "short title",
    "description": "what the solution does",
    "steps": ["step 1", "step 2"],
    "solution_type": "self_service|automated|manual|escalation",
    "confidence": 0.0,
    "estimated_time": 15,
    "automated_action": {"action_type": "password_reset|unlock_account|vpn_reconnect|email_quota_check|restart_service", "parameters": {}}
  }]
}
Omit automated_action unless the solution can run without a human.`)
	return b.String()
}
