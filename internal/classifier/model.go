package classifier

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spec-kit/intake-engine/internal/domain"
	"github.com/spec-kit/intake-engine/internal/llm"
)

const classifySystemPrompt = `You are an IT helpdesk triage assistant. Classify the user's support request.
Reply with a single JSON object and nothing else.`

// ModelClassifier asks a language model for a classification.
type ModelClassifier struct {
	completer llm.Completer
}

// NewModelClassifier wraps a completer as a Provider.
func NewModelClassifier(completer llm.Completer) *ModelClassifier {
	return &ModelClassifier{completer: completer}
}

type modelClassification struct {
	Category     string   `json:"category"`
	Subcategory  string   `json:"subcategory"`
	Priority     string   `json:"priority"`
	Confidence   float64  `json:"confidence"`
	Reasoning    string   `json:"reasoning"`
	Keywords     []string `json:"suggested_keywords"`
	UrgencyLevel string   `json:"urgency_level"`
}

// Classify implements Provider.
func (m *ModelClassifier) Classify(ctx context.Context, text string, userCtx map[string]string) (domain.Classification, error) {
	reply, err := m.completer.Complete(ctx, classifySystemPrompt, buildClassifyPrompt(text, userCtx))
	if err != nil {
		return domain.Classification{}, err
	}
	parsed, err := llm.ParseJSONResponse[modelClassification](reply)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("parse classification: %w", err)
	}
	return parsed.toDomain()
}

func (m modelClassification) toDomain() (domain.Classification, error) {
	if strings.TrimSpace(m.Category) == "" {
		return domain.Classification{}, fmt.Errorf("classification missing category")
	}
	if math.IsNaN(m.Confidence) {
		return domain.Classification{}, fmt.Errorf("classification confidence is NaN")
	}
	priority, _ := domain.ParsePriority(m.Priority)
	keywords := m.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return domain.Classification{
		Category:     knownCategory(m.Category),
		Subcategory:  strings.TrimSpace(m.Subcategory),
		Priority:     priority,
		Confidence:   math.Max(0, math.Min(1, m.Confidence)),
		Reasoning:    m.Reasoning,
		Keywords:     keywords,
		UrgencyLevel: m.UrgencyLevel,
	}, nil
}

func knownCategory(name string) domain.Category {
	for _, c := range Categories() {
		if strings.EqualFold(string(c), strings.TrimSpace(name)) {
			return c
		}
	}
	return domain.CategoryOther
}

func buildClassifyPrompt(text string, userCtx map[string]string) string {
	var b strings.Builder
	b.WriteString("User query:\n")
	b.WriteString(text)
	b.WriteString("\n\n")

	if len(userCtx) > 0 {
		keys := make([]string, 0, len(userCtx))
		for k := range userCtx {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("User context:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", k, userCtx[k])
		}
		b.WriteString("\n")
	}

	names := make([]string, 0, len(Categories()))
	for _, c := range Categories() {
		names = append(names, string(c))
	}
	fmt.Fprintf(&b, "Available categories: %s\n\n", strings.Join(names, ", "))
	b.WriteString(`Respond with:
{
  "category": "one of the available categories",
  "subcategory": "more specific subcategory, e.g. reset, unlock, quota",
  "priority": "Low|Medium|High|Urgent|Critical",
  "confidence": 0.0,
  "reasoning": "short explanation",
  "suggested_keywords": ["search", "keywords"],
  "urgency_level": "immediate|same_day|next_day|scheduled"
}`)
	return b.String()
}
