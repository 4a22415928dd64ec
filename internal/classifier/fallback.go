package classifier

import (
	"strings"

	"github.com/spec-kit/intake-engine/internal/domain"
)

const (
	// FallbackConfidence is reported for every keyword-matched classification.
	FallbackConfidence = 0.5
	fallbackReasoning  = "Fallback classification based on keyword matching"
)

type keywordRule struct {
	category domain.Category
	keywords []string
}

// fallbackRules is ordered; the first category with any keyword hit wins.
var fallbackRules = []keywordRule{
	{domain.CategoryVPN, []string{"connection", "access", "authentication", "slow", "disconnect"}},
	{domain.CategoryPassword, []string{"reset", "forgot", "expired", "change", "unlock"}},
	{domain.CategoryEmail, []string{"quota", "sync", "access", "attachment", "delivery"}},
	{domain.CategoryHardware, []string{"laptop", "desktop", "monitor", "keyboard", "mouse", "printer"}},
	{domain.CategorySoftware, []string{"installation", "update", "license", "crash", "error"}},
	{domain.CategoryNetwork, []string{"internet", "wifi", "connectivity", "slow", "timeout"}},
	{domain.CategoryAccessControl, []string{"permissions", "folder", "drive", "application", "system"}},
	{domain.CategoryPrinter, []string{"print", "scan", "jam", "quality", "driver"}},
	{domain.CategoryGLPI, []string{"asset", "inventory", "tracking", "update", "sync"}},
	{domain.CategorySAP, []string{"solman", "transaction", "login", "performance", "error"}},
}

var urgentWords = []string{"urgent", "critical", "emergency", "immediately", "asap"}

// Categories lists the categories the classifier may assign, in table order.
func Categories() []domain.Category {
	out := make([]domain.Category, 0, len(fallbackRules)+1)
	for _, rule := range fallbackRules {
		out = append(out, rule.category)
	}
	return append(out, domain.CategoryOther)
}

// FallbackClassify is the deterministic keyword classifier used whenever
// the model is unavailable. It performs no I/O.
func FallbackClassify(text string) domain.Classification {
	lower := strings.ToLower(text)

	category := domain.CategoryOther
	keywords := []string{}
	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) > 0 {
			category = rule.category
			break
		}
	}

	priority := domain.PriorityMedium
	for _, word := range urgentWords {
		if strings.Contains(lower, word) {
			priority = domain.PriorityHigh
			break
		}
	}

	return domain.Classification{
		Category:     category,
		Priority:     priority,
		Confidence:   FallbackConfidence,
		Reasoning:    fallbackReasoning,
		Keywords:     keywords,
		UrgencyLevel: string(priority),
	}
}
