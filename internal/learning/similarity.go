package learning

import (
	"regexp"
	"strings"

	"github.com/spec-kit/intake-engine/internal/domain"
)

// DuplicateThreshold is the Jaccard similarity above which two solution
// texts are treated as the same solution.
const DuplicateThreshold = 0.7

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Words splits text into lowercase word tokens, in order.
func Words(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

func wordSet(text string) map[string]struct{} {
	words := Words(text)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Jaccard returns |A∩B| / |A∪B| over the lowercase word sets of a and b,
// or 0 if either has no words.
func Jaccard(a, b string) float64 {
	wa, wb := wordSet(a), wordSet(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	shared := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			shared++
		}
	}
	union := len(wa) + len(wb) - shared
	return float64(shared) / float64(union)
}

// SolutionExists reports whether article already documents a solution
// whose description is a near duplicate of text.
func SolutionExists(article domain.KnowledgeArticle, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	for _, s := range article.Solutions {
		if s.Description == "" {
			continue
		}
		if Jaccard(s.Description, text) > DuplicateThreshold {
			return true
		}
	}
	return false
}
