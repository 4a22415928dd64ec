package domain

import "strings"

// Category is an internal issue category.
type Category string

const (
	CategoryVPN               Category = "VPN"
	CategoryPassword          Category = "Password"
	CategoryEmail             Category = "Email"
	CategoryHardware          Category = "Hardware"
	CategorySoftware          Category = "Software"
	CategoryNetwork           Category = "Network"
	CategoryAccessControl     Category = "Access Control"
	CategoryPrinter           Category = "Printer"
	CategoryGLPI              Category = "GLPI"
	CategorySAP               Category = "SAP"
	CategoryAccountManagement Category = "Account Management"
	CategoryOther             Category = "Other"
)

// Priority is the ordered urgency scale Low < Medium < High < Urgent < Critical.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityUrgent   Priority = "Urgent"
	PriorityCritical Priority = "Critical"
)

var priorityRank = map[Priority]int{
	PriorityLow:      1,
	PriorityMedium:   2,
	PriorityHigh:     3,
	PriorityUrgent:   4,
	PriorityCritical: 5,
}

// Rank returns the ordinal of p; unknown priorities rank as zero.
func (p Priority) Rank() int {
	return priorityRank[p]
}

// AtLeast reports whether p is ordered at or above other.
func (p Priority) AtLeast(other Priority) bool {
	return p.Rank() >= other.Rank()
}

// ParsePriority resolves a case-insensitive priority name.
func ParsePriority(s string) (Priority, bool) {
	needle := strings.TrimSpace(s)
	for p := range priorityRank {
		if strings.EqualFold(string(p), needle) {
			return p, true
		}
	}
	return PriorityMedium, false
}

// Classification is the category/priority judgment for one intake.
// Category, Subcategory, Priority and Confidence are fixed at creation;
// later stages only fill the enrichment fields.
type Classification struct {
	Category     Category `json:"category"`
	Subcategory  string   `json:"subcategory,omitempty"`
	Priority     Priority `json:"priority"`
	Confidence   float64  `json:"confidence"`
	Reasoning    string   `json:"reasoning"`
	Keywords     []string `json:"keywords"`
	UrgencyLevel string   `json:"urgency_level"`

	SentimentScore             float64  `json:"sentiment_score"`
	SuggestedAssignee          string   `json:"suggested_assignee,omitempty"`
	EstimatedResolutionMinutes int      `json:"estimated_resolution_minutes,omitempty"`
	AutoResolutionEligible     bool     `json:"auto_resolution_eligible"`
	SimilarTicketIDs           []string `json:"similar_ticket_ids,omitempty"`
}

var categories = []Category{
	CategoryVPN, CategoryPassword, CategoryEmail, CategoryHardware, CategorySoftware,
	CategoryNetwork, CategoryAccessControl, CategoryPrinter, CategoryGLPI, CategorySAP,
	CategoryAccountManagement, CategoryOther,
}

// ParseCategory matches a canonical category name case-insensitively.
func ParseCategory(s string) (Category, bool) {
	needle := strings.TrimSpace(s)
	for _, c := range categories {
		if strings.EqualFold(string(c), needle) {
			return c, true
		}
	}
	return CategoryOther, false
}
