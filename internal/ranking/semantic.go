package ranking

import (
	"context"
	"math"
	"sort"

	"github.com/spec-kit/intake-engine/internal/domain"
)

// semanticRerank orders articles by cosine similarity between the request
// and each article's title and description. Any embedding failure leaves
// the caller's order in place.
func (r *Ranker) semanticRerank(ctx context.Context, text string, articles []domain.KnowledgeArticle) ([]domain.KnowledgeArticle, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query, err := r.embedder.Embed(callCtx, text)
	if err != nil {
		return nil, err
	}

	type scored struct {
		article    domain.KnowledgeArticle
		similarity float64
	}
	ranked := make([]scored, len(articles))
	for i, a := range articles {
		vec, err := r.embedder.Embed(callCtx, a.Title+"\n"+a.Description)
		if err != nil {
			return nil, err
		}
		ranked[i] = scored{article: a, similarity: Cosine(query, vec)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].similarity > ranked[j].similarity
	})

	out := make([]domain.KnowledgeArticle, len(ranked))
	for i, s := range ranked {
		out[i] = s.article
	}
	return out, nil
}

// Cosine returns the cosine similarity of a and b, or 0 when either is
// empty, zero or the lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
