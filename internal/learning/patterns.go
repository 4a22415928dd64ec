package learning

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/intake-engine/internal/domain"
)

const (
	patternSampleLimit   = 20
	patternMinSamples    = 5
	patternMinOccurrence = 3
	patternMaxKeywords   = 10
	patternMaxSolutions  = 3
	defaultAvgMinutes    = 30
)

// CommonWords returns the words occurring at least minCount times across
// texts, most frequent first, at most limit of them. Ties keep the order
// in which words were first seen.
func CommonWords(texts []string, minCount, limit int) []string {
	counts := map[string]int{}
	var order []string
	for _, t := range texts {
		for _, w := range Words(t) {
			if counts[w] == 0 {
				order = append(order, w)
			}
			counts[w]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}

	out := make([]string, 0, len(order))
	for _, w := range order {
		if counts[w] >= minCount {
			out = append(out, w)
		}
	}
	return out
}

// AverageMinutes is the integer mean of the positive resolution times, or
// 30 when there are none.
func AverageMinutes(records []domain.ResolutionRecord) int {
	total, n := 0, 0
	for _, r := range records {
		if r.ResolutionMinutes > 0 {
			total += r.ResolutionMinutes
			n++
		}
	}
	if n == 0 {
		return defaultAvgMinutes
	}
	return total / n
}

// MinePatterns looks for a recurring keyword signature among recent
// successful resolutions of category and stores it as a new IssuePattern.
// It returns nil, nil when there is not enough data or the pattern exists.
func (r *Recorder) MinePatterns(ctx context.Context, category domain.Category, subcategory *string) (*domain.IssuePattern, error) {
	if r.patterns == nil {
		return nil, nil
	}
	sample, err := r.records.FindSuccessful(ctx, category, patternSampleLimit)
	if err != nil {
		return nil, fmt.Errorf("load resolutions: %w", err)
	}
	if len(sample) < patternMinSamples {
		return nil, nil
	}

	queries := make([]string, 0, len(sample))
	for _, rec := range sample {
		if rec.OriginalQuery != "" {
			queries = append(queries, rec.OriginalQuery)
		}
	}
	keywords := CommonWords(queries, patternMinOccurrence, patternMaxKeywords)
	if len(keywords) == 0 {
		return nil, nil
	}

	text := strings.Join(keywords, " ")
	existing, err := r.patterns.FindContaining(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("find pattern: %w", err)
	}
	if existing != nil {
		return nil, nil
	}

	var solutions []string
	for _, rec := range sample {
		if len(solutions) == patternMaxSolutions {
			break
		}
		if rec.ActualSolution != nil && *rec.ActualSolution != "" {
			solutions = append(solutions, *rec.ActualSolution)
		}
	}

	pattern := &domain.IssuePattern{
		Category:             category,
		Subcategory:          subcategory,
		PatternText:          text,
		Keywords:             keywords,
		Frequency:            len(sample),
		AvgResolutionMinutes: AverageMinutes(sample),
		CommonSolutions:      solutions,
	}
	if err := r.patterns.Create(ctx, pattern); err != nil {
		return nil, fmt.Errorf("create pattern: %w", err)
	}
	r.logger.Info("new issue pattern", zap.String("category", string(category)), zap.String("pattern", text))
	return pattern, nil
}
