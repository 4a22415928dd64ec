// Package resolution decides whether a request can be closed without a
// human and runs the automated actions that close it.
package resolution

import (
	"github.com/spec-kit/intake-engine/internal/domain"
)

// Policy is the auto-resolution gate. Thresholds are strict lower bounds.
type Policy struct {
	Categories        []domain.Category
	MinClassification float64
	MinSolution       float64
}

// DefaultPolicy only auto-resolves password requests.
func DefaultPolicy() Policy {
	return Policy{
		Categories:        []domain.Category{domain.CategoryPassword},
		MinClassification: 0.8,
		MinSolution:       0.9,
	}
}

// NewPolicy builds a policy from configured category names. Unknown names
// are kept verbatim so they simply never match.
func NewPolicy(categories []string, minClassification, minSolution float64) Policy {
	p := Policy{MinClassification: minClassification, MinSolution: minSolution}
	for _, c := range categories {
		p.Categories = append(p.Categories, domain.Category(c))
	}
	return p
}

func (p Policy) allows(c domain.Category) bool {
	for _, allowed := range p.Categories {
		if allowed == c {
			return true
		}
	}
	return false
}

// Reasons a request was not auto-resolved.
const (
	ReasonResolved              = "auto_resolved"
	ReasonCategoryNotAllowed    = "category_not_allowed"
	ReasonLowClassification     = "classification_confidence_too_low"
	ReasonNoSolutions           = "no_solutions"
	ReasonSolutionNeedsHuman    = "top_solution_requires_human"
	ReasonLowSolutionConfidence = "solution_confidence_too_low"
	ReasonActionFailed          = "automated_action_failed"
)

// Decision is the outcome of Decide. Action is the top solution's automated
// action, if it has one.
type Decision struct {
	AutoResolve bool
	Action      *domain.AutomatedAction
	Top         *domain.RankedSolution
	Reason      string
}

// Decide is a pure function of its inputs.
func Decide(p Policy, c domain.Classification, ranked []domain.RankedSolution) Decision {
	switch {
	case !p.allows(c.Category):
		return Decision{Reason: ReasonCategoryNotAllowed}
	case c.Confidence <= p.MinClassification:
		return Decision{Reason: ReasonLowClassification}
	case len(ranked) == 0:
		return Decision{Reason: ReasonNoSolutions}
	}

	top := ranked[0]
	if top.Type != domain.SolutionSelfService && top.Type != domain.SolutionAutomated {
		return Decision{Top: &top, Reason: ReasonSolutionNeedsHuman}
	}
	if top.Confidence <= p.MinSolution {
		return Decision{Top: &top, Reason: ReasonLowSolutionConfidence}
	}
	return Decision{AutoResolve: true, Action: top.AutomatedAction, Top: &top, Reason: ReasonResolved}
}
