package intake

import (
	"strings"

	"github.com/spec-kit/intake-engine/internal/domain"
)

type categoryRule struct {
	needles  []string
	category domain.Category
}

// externalCategoryRules is ordered; the first rule with a matching needle wins.
var externalCategoryRules = []categoryRule{
	{needles: []string{"NETWORK", "NETWORKING", "CONNECTIVITY"}, category: domain.CategoryNetwork},
	{needles: []string{"HARDWARE", "EQUIPMENT", "DEVICE"}, category: domain.CategoryHardware},
	{needles: []string{"SOFTWARE", "APPLICATION", "PROGRAM"}, category: domain.CategorySoftware},
	{needles: []string{"ACCESS", "PERMISSION", "AUTHORIZATION"}, category: domain.CategoryAccessControl},
	{needles: []string{"EMAIL", "MAIL"}, category: domain.CategoryEmail},
	{needles: []string{"VPN", "REMOTE ACCESS"}, category: domain.CategoryVPN},
	{needles: []string{"PRINTER", "PRINTING"}, category: domain.CategoryPrinter},
	{needles: []string{"PASSWORD", "RESET PASSWORD"}, category: domain.CategoryPassword},
	{needles: []string{"ACCOUNT", "USER ACCOUNT"}, category: domain.CategoryAccountManagement},
}

// MapCategory resolves an external category string by case-insensitive
// substring containment. The boolean is false when nothing matched and
// the result is Other.
func MapCategory(external string) (domain.Category, bool) {
	upper := strings.ToUpper(strings.TrimSpace(external))
	if upper == "" {
		return domain.CategoryOther, false
	}
	for _, rule := range externalCategoryRules {
		for _, needle := range rule.needles {
			if strings.Contains(upper, needle) {
				return rule.category, true
			}
		}
	}
	return domain.CategoryOther, false
}
