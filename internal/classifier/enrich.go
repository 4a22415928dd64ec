package classifier

import (
	"math"
	"strings"

	"github.com/spec-kit/intake-engine/internal/domain"
)

const defaultAssignee = "helpdesk_team"

var (
	negativeWords = []string{"angry", "frustrated", "terrible", "awful", "horrible", "upset"}
	positiveWords = []string{"happy", "pleased", "grateful", "satisfied", "excellent"}
)

var assigneeByCategory = map[domain.Category]string{
	domain.CategoryVPN:           "network_team",
	domain.CategoryPassword:      "access_management_team",
	domain.CategoryEmail:         "messaging_team",
	domain.CategoryHardware:      "desktop_support",
	domain.CategorySoftware:      "application_support",
	domain.CategoryNetwork:       "network_team",
	domain.CategoryAccessControl: "security_team",
	domain.CategoryPrinter:       "desktop_support",
	domain.CategoryGLPI:          "asset_management_team",
	domain.CategorySAP:           "erp_support_team",
}

const defaultBaseMinutes = 60

var baseMinutesByCategory = map[domain.Category]int{
	domain.CategoryVPN:           30,
	domain.CategoryPassword:      15,
	domain.CategoryEmail:         45,
	domain.CategoryHardware:      120,
	domain.CategorySoftware:      90,
	domain.CategoryNetwork:       60,
	domain.CategoryAccessControl: 45,
	domain.CategoryPrinter:       30,
	domain.CategoryGLPI:          60,
	domain.CategorySAP:           120,
}

var priorityMultiplier = map[domain.Priority]float64{
	domain.PriorityLow:      1.5,
	domain.PriorityMedium:   1.0,
	domain.PriorityHigh:     0.8,
	domain.PriorityUrgent:   0.6,
	domain.PriorityCritical: 0.5,
}

var (
	autoResolveCategories    = map[domain.Category]bool{domain.CategoryPassword: true, domain.CategoryEmail: true}
	autoResolveSubcategories = map[string]bool{"reset": true, "unlock": true, "quota": true}
)

// Sentiment scores text by lexicon: -0.2 per negative word present,
// +0.2 per positive word present, clamped to [-1, 1].
func Sentiment(text string) float64 {
	lower := strings.ToLower(text)
	score := 0.0
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			score -= 0.2
		}
	}
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			score += 0.2
		}
	}
	return math.Max(-1, math.Min(1, score))
}

// SuggestAssignee returns the owning team for a category.
func SuggestAssignee(category domain.Category) string {
	if team, ok := assigneeByCategory[category]; ok {
		return team
	}
	return defaultAssignee
}

// AutoResolutionEligible reports whether the category/subcategory pair is a
// candidate for unattended resolution.
func AutoResolutionEligible(category domain.Category, subcategory string) bool {
	return autoResolveCategories[category] && autoResolveSubcategories[strings.ToLower(strings.TrimSpace(subcategory))]
}

// EstimateResolutionMinutes is base[category] x multiplier[priority], floored.
func EstimateResolutionMinutes(category domain.Category, priority domain.Priority) int {
	base, ok := baseMinutesByCategory[category]
	if !ok {
		base = defaultBaseMinutes
	}
	mult, ok := priorityMultiplier[priority]
	if !ok {
		mult = 1.0
	}
	return int(math.Floor(float64(base) * mult))
}

// Enrich returns a copy of c with the derived fields filled in. The
// category, priority and confidence of c are left untouched.
func Enrich(c domain.Classification, text string) domain.Classification {
	c.SentimentScore = Sentiment(text)
	c.SuggestedAssignee = SuggestAssignee(c.Category)
	c.AutoResolutionEligible = AutoResolutionEligible(c.Category, c.Subcategory)
	c.EstimatedResolutionMinutes = EstimateResolutionMinutes(c.Category, c.Priority)
	return c
}
