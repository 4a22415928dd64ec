// Package ranking turns a classification into an ordered list of solution
// candidates, consulting the knowledge base, resolution history and the
// requester's context.
package ranking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/intake-engine/internal/domain"
	"github.com/spec-kit/intake-engine/internal/llm"
)

const (
	knowledgeLimit     = 5
	knowledgeMinBefore = 3
	historyLimit       = 100
)

// Degraded stage names reported in Outcome.Degraded.
const (
	StageKnowledge     = "knowledge_lookup"
	StageSemantic      = "semantic_rerank"
	StageGeneration    = "candidate_generation"
	StageHistory       = "history"
	StageCollaborative = "collaborative"
)

// CandidateSource tells where the unranked candidates came from.
type CandidateSource string

const (
	SourceModel    CandidateSource = "model"
	SourceFallback CandidateSource = "fallback"
)

// KnowledgeStore reads published articles.
type KnowledgeStore interface {
	FindByCategory(ctx context.Context, category domain.Category, limit int) ([]domain.KnowledgeArticle, error)
	Search(ctx context.Context, text string, category *domain.Category, limit int) ([]domain.KnowledgeArticle, error)
}

// HistoryStore reads resolution records.
type HistoryStore interface {
	FindSuccessful(ctx context.Context, category domain.Category, limit int) ([]domain.ResolutionRecord, error)
	FindByTicket(ctx context.Context, ticketID string) (*domain.ResolutionRecord, error)
}

// CandidateGenerator proposes unranked candidates.
type CandidateGenerator interface {
	Generate(ctx context.Context, c domain.Classification, text string, articles []domain.KnowledgeArticle) ([]domain.SolutionCandidate, error)
}

// Dependencies bundles the ranker's collaborators. Knowledge and History
// are required; Generator and Embedder are optional.
type Dependencies struct {
	Knowledge KnowledgeStore
	History   HistoryStore
	Generator CandidateGenerator
	Embedder  llm.Embedder
	Timeout   time.Duration
	Logger    *zap.Logger
}

// Outcome is the ranked result plus the articles consulted.
type Outcome struct {
	Solutions       []domain.RankedSolution
	Articles        []domain.KnowledgeArticle
	CandidateSource CandidateSource
	Degraded        []string
}

// Ranker runs the ranking pipeline. Every stage failure degrades rather
// than aborts; Rank always returns at least one solution.
type Ranker struct {
	knowledge KnowledgeStore
	history   HistoryStore
	generator CandidateGenerator
	embedder  llm.Embedder
	timeout   time.Duration
	logger    *zap.Logger
}

// NewRanker builds a ranker.
func NewRanker(deps Dependencies) *Ranker {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Ranker{
		knowledge: deps.Knowledge,
		history:   deps.History,
		generator: deps.Generator,
		embedder:  deps.Embedder,
		timeout:   timeout,
		logger:    logger.Named("ranking"),
	}
}

// Rank produces solutions for c, ordered by descending score.
func (r *Ranker) Rank(ctx context.Context, c domain.Classification, text string, rc RankContext) Outcome {
	var out Outcome

	articles, err := r.lookupArticles(ctx, c.Category, text)
	if err != nil {
		r.logger.Warn("knowledge lookup failed", zap.Error(err))
		out.Degraded = append(out.Degraded, StageKnowledge)
	}
	if len(articles) > 1 && r.embedder != nil {
		reranked, err := r.semanticRerank(ctx, text, articles)
		if err != nil {
			r.logger.Debug("semantic rerank skipped", zap.Error(err))
			out.Degraded = append(out.Degraded, StageSemantic)
		} else {
			articles = reranked
		}
	}
	out.Articles = articles

	candidates, source := r.generate(ctx, c, text, articles)
	if source == SourceFallback && r.generator != nil {
		out.Degraded = append(out.Degraded, StageGeneration)
	}
	out.CandidateSource = source

	records, err := r.successfulHistory(ctx, c.Category)
	if err != nil {
		r.logger.Warn("history lookup failed", zap.Error(err))
		out.Degraded = append(out.Degraded, StageHistory)
	}
	candidates = ApplyHistory(candidates, records)

	similar, err := r.similarResolutions(ctx, c.SimilarTicketIDs)
	if err != nil {
		r.logger.Warn("similar resolution lookup failed", zap.Error(err))
		out.Degraded = append(out.Degraded, StageCollaborative)
	}
	candidates = ApplyCollaborative(candidates, similar)

	candidates = ApplyContext(candidates, rc)
	out.Solutions = Order(candidates, c.Priority)
	return out
}

func (r *Ranker) lookupArticles(ctx context.Context, category domain.Category, text string) ([]domain.KnowledgeArticle, error) {
	if r.knowledge == nil {
		return nil, nil
	}
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	articles, err := r.knowledge.FindByCategory(callCtx, category, knowledgeLimit)
	if err != nil {
		return nil, err
	}
	if len(articles) >= knowledgeMinBefore {
		return articles, nil
	}

	found, err := r.knowledge.Search(callCtx, text, &category, knowledgeLimit)
	if err != nil {
		return articles, err
	}
	return mergeArticles(articles, found, knowledgeLimit), nil
}

func mergeArticles(primary, extra []domain.KnowledgeArticle, limit int) []domain.KnowledgeArticle {
	seen := make(map[string]struct{}, len(primary)+len(extra))
	out := make([]domain.KnowledgeArticle, 0, limit)
	for _, list := range [][]domain.KnowledgeArticle{primary, extra} {
		for _, a := range list {
			if len(out) == limit {
				return out
			}
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}

func (r *Ranker) generate(ctx context.Context, c domain.Classification, text string, articles []domain.KnowledgeArticle) ([]domain.SolutionCandidate, CandidateSource) {
	if r.generator == nil {
		return FallbackCandidates(c.Category), SourceFallback
	}
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	candidates, err := r.generator.Generate(callCtx, c, text, articles)
	if err != nil || len(candidates) == 0 {
		r.logger.Info("candidate generation fell back", zap.Error(err))
		return FallbackCandidates(c.Category), SourceFallback
	}
	return candidates, SourceModel
}

func (r *Ranker) successfulHistory(ctx context.Context, category domain.Category) ([]domain.ResolutionRecord, error) {
	if r.history == nil {
		return nil, nil
	}
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.history.FindSuccessful(callCtx, category, historyLimit)
}

func (r *Ranker) similarResolutions(ctx context.Context, ticketIDs []string) ([]domain.ResolutionRecord, error) {
	if r.history == nil || len(ticketIDs) == 0 {
		return nil, nil
	}
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var (
		out     []domain.ResolutionRecord
		lastErr error
	)
	for _, id := range ticketIDs {
		rec, err := r.history.FindByTicket(callCtx, id)
		if err != nil {
			lastErr = err
			continue
		}
		if rec != nil && rec.ResolvedSuccessfully {
			out = append(out, *rec)
		}
	}
	return out, lastErr
}
