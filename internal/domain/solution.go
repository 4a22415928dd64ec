package domain

// SolutionType describes how a solution is carried out.
type SolutionType string

const (
	SolutionSelfService SolutionType = "self_service"
	SolutionAutomated   SolutionType = "automated"
	SolutionManual      SolutionType = "manual"
	SolutionEscalation  SolutionType = "escalation"
)

// ParseSolutionType accepts both the canonical names and the longer
// aliases LLM providers tend to return.
func ParseSolutionType(s string) SolutionType {
	switch s {
	case "self_service", "self_service_link":
		return SolutionSelfService
	case "automated", "automated_script":
		return SolutionAutomated
	case "escalation", "escalation_required":
		return SolutionEscalation
	default:
		return SolutionManual
	}
}

// AutomatedAction is an action an automation backend can execute.
type AutomatedAction struct {
	ActionType     string            `json:"action_type"`
	Endpoint       string            `json:"api_endpoint,omitempty"`
	Parameters     map[string]string `json:"parameters,omitempty"`
	SuccessMessage string            `json:"success_message,omitempty"`
	FailureMessage string            `json:"failure_message,omitempty"`
}

// SolutionCandidate is an unranked proposed remedy.
type SolutionCandidate struct {
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Steps            []string         `json:"steps"`
	Type             SolutionType     `json:"type"`
	Confidence       float64          `json:"confidence"`
	EstimatedMinutes int              `json:"estimated_minutes"`
	AutomatedAction  *AutomatedAction `json:"automated_action,omitempty"`
}

// RankedSolution carries the ordering score; Score is never persisted as confidence.
type RankedSolution struct {
	SolutionCandidate
	Score float64 `json:"score"`
}
