// Package classifier produces a Classification for an intake, using a
// language model when available and a keyword table otherwise.
package classifier

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/intake-engine/internal/domain"
)

// Outcome tells callers where a classification came from.
type Outcome string

const (
	OutcomeModel    Outcome = "model"
	OutcomeCached   Outcome = "cached"
	OutcomeFallback Outcome = "fallback"
)

// Result is a classification plus its provenance. FallbackReason is set
// only when Outcome is OutcomeFallback.
type Result struct {
	Classification domain.Classification
	Outcome        Outcome
	FallbackReason error
}

// FellBack reports whether the keyword classifier produced the result.
func (r Result) FellBack() bool {
	return r.Outcome == OutcomeFallback
}

// Provider is the external classification capability.
type Provider interface {
	Classify(ctx context.Context, text string, userCtx map[string]string) (domain.Classification, error)
}

// Cache memoizes provider answers.
type Cache interface {
	Get(ctx context.Context, text string) (domain.Classification, bool)
	Set(ctx context.Context, text string, c domain.Classification)
}

// SimilarFinder looks up previously resolved tickets resembling the request.
type SimilarFinder interface {
	SimilarTickets(ctx context.Context, category domain.Category, keywords []string, limit int) ([]string, error)
}

// Dependencies bundles collaborators for the consumer. Only Provider is required.
type Dependencies struct {
	Provider Provider
	Cache    Cache
	Similar  SimilarFinder
	Timeout  time.Duration
	Logger   *zap.Logger
}

// Consumer classifies request text and never fails.
type Consumer struct {
	provider Provider
	cache    Cache
	similar  SimilarFinder
	timeout  time.Duration
	logger   *zap.Logger
}

const similarTicketLimit = 5

// NewConsumer builds a consumer.
func NewConsumer(deps Dependencies) *Consumer {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Consumer{
		provider: deps.Provider,
		cache:    deps.Cache,
		similar:  deps.Similar,
		timeout:  timeout,
		logger:   logger.Named("classifier"),
	}
}

var errNoProvider = errors.New("no classification provider")

// Classify returns an enriched classification for text. Provider
// timeouts, transport errors and malformed replies all fall back to
// FallbackClassify.
func (c *Consumer) Classify(ctx context.Context, text string, userCtx map[string]string) Result {
	result := c.classify(ctx, text, userCtx)
	result.Classification = Enrich(result.Classification, text)
	result.Classification.SimilarTicketIDs = c.similarTickets(ctx, result.Classification)
	return result
}

func (c *Consumer) classify(ctx context.Context, text string, userCtx map[string]string) Result {
	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, text); ok {
			return Result{Classification: cached, Outcome: OutcomeCached}
		}
	}

	if c.provider == nil {
		return fallback(text, errNoProvider)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	classification, err := c.provider.Classify(callCtx, text, userCtx)
	if err != nil {
		c.logger.Info("classification fell back to keywords", zap.Error(err))
		return fallback(text, err)
	}

	if c.cache != nil {
		c.cache.Set(ctx, text, classification)
	}
	return Result{Classification: classification, Outcome: OutcomeModel}
}

func fallback(text string, reason error) Result {
	return Result{
		Classification: FallbackClassify(text),
		Outcome:        OutcomeFallback,
		FallbackReason: reason,
	}
}

func (c *Consumer) similarTickets(ctx context.Context, cl domain.Classification) []string {
	if c.similar == nil || len(cl.Keywords) == 0 {
		return nil
	}
	lookupCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	ids, err := c.similar.SimilarTickets(lookupCtx, cl.Category, cl.Keywords, similarTicketLimit)
	if err != nil {
		c.logger.Debug("similar ticket lookup failed", zap.Error(err))
		return nil
	}
	return ids
}
