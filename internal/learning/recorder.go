// Package learning records resolution outcomes and feeds them back into the
// knowledge base.
package learning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/intake-engine/internal/domain"
)

// RecordStore persists resolution records.
type RecordStore interface {
	Insert(ctx context.Context, rec *domain.ResolutionRecord) error
	FindSuccessful(ctx context.Context, category domain.Category, limit int) ([]domain.ResolutionRecord, error)
}

// ArticleStore is the part of the knowledge store learning writes to.
type ArticleStore interface {
	IncrementCounter(ctx context.Context, id string, counter domain.ArticleCounter) error
	FindForCategory(ctx context.Context, category domain.Category, subcategory *string) (*domain.KnowledgeArticle, error)
	AppendSolution(ctx context.Context, id string, solution domain.ArticleSolution) error
	Create(ctx context.Context, article *domain.KnowledgeArticle) error
}

// PatternStore persists mined issue patterns.
type PatternStore interface {
	FindContaining(ctx context.Context, text string) (*domain.IssuePattern, error)
	Create(ctx context.Context, pattern *domain.IssuePattern) error
}

// Submitter runs a task asynchronously. *ants.Pool satisfies it.
type Submitter interface {
	Submit(task func()) error
}

// Dependencies wires a Recorder. Records is required.
type Dependencies struct {
	Records  RecordStore
	Articles ArticleStore
	Patterns PatternStore
	Pool     Submitter
	Timeout  time.Duration
	Logger   *zap.Logger
}

// Outcome is a reported resolution.
type Outcome struct {
	Record   domain.ResolutionRecord
	Resolver string
}

// Recorder appends resolution records and applies learning side effects.
type Recorder struct {
	records  RecordStore
	articles ArticleStore
	patterns PatternStore
	pool     Submitter
	timeout  time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

var ErrInvalidOutcome = errors.New("invalid resolution outcome")

// NewRecorder builds a recorder.
func NewRecorder(deps Dependencies) *Recorder {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Recorder{
		records:  deps.Records,
		articles: deps.Articles,
		patterns: deps.Patterns,
		pool:     deps.Pool,
		timeout:  timeout,
		logger:   logger.Named("learning"),
		now:      time.Now,
	}
}

// Record inserts the outcome's record and schedules the learning side
// effects. Only the insert can fail the call.
func (r *Recorder) Record(ctx context.Context, outcome Outcome) (domain.ResolutionRecord, error) {
	rec := outcome.Record
	if rec.TicketID == "" || rec.Category == "" {
		return domain.ResolutionRecord{}, fmt.Errorf("%w: ticket id and category are required", ErrInvalidOutcome)
	}
	if rec.ResolutionMinutes < 0 {
		return domain.ResolutionRecord{}, fmt.Errorf("%w: negative resolution time", ErrInvalidOutcome)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now().UTC()
	}
	if rec.Method == "" {
		rec.Method = domain.ResolutionManual
	}

	if err := r.records.Insert(ctx, &rec); err != nil {
		return domain.ResolutionRecord{}, fmt.Errorf("insert resolution record: %w", err)
	}

	r.dispatch(ctx, Outcome{Record: rec, Resolver: outcome.Resolver})
	return rec, nil
}

// dispatch detaches from the caller's cancellation so a disconnecting
// client never leaves side effects half-applied.
func (r *Recorder) dispatch(ctx context.Context, outcome Outcome) {
	detached := context.WithoutCancel(ctx)
	task := func() {
		taskCtx, cancel := context.WithTimeout(detached, r.timeout)
		defer cancel()
		r.Learn(taskCtx, outcome)
	}

	if r.pool == nil {
		task()
		return
	}
	if err := r.pool.Submit(task); err != nil {
		r.logger.Warn("learning pool rejected task, running inline", zap.Error(err))
		task()
	}
}

// Learn applies every side effect for a stored record. Each failure is
// logged and skipped.
func (r *Recorder) Learn(ctx context.Context, outcome Outcome) {
	rec := outcome.Record
	log := r.logger.With(zap.String("ticket_id", rec.TicketID), zap.String("category", string(rec.Category)))

	if err := r.updateArticleStats(ctx, rec); err != nil {
		log.Warn("article stats update failed", zap.Error(err))
	}
	if !rec.ResolvedSuccessfully {
		return
	}
	if err := r.learnSolution(ctx, rec, outcome.Resolver); err != nil {
		log.Warn("solution learning failed", zap.Error(err))
	}
	if _, err := r.MinePatterns(ctx, rec.Category, rec.Subcategory); err != nil {
		log.Warn("pattern mining failed", zap.Error(err))
	}
}

func (r *Recorder) updateArticleStats(ctx context.Context, rec domain.ResolutionRecord) error {
	if r.articles == nil || rec.ArticleID == nil || *rec.ArticleID == "" {
		return nil
	}
	if err := r.articles.IncrementCounter(ctx, *rec.ArticleID, domain.CounterTotalAttempts); err != nil {
		return err
	}
	if rec.ResolvedSuccessfully {
		return r.articles.IncrementCounter(ctx, *rec.ArticleID, domain.CounterSuccesses)
	}
	return nil
}

func (r *Recorder) learnSolution(ctx context.Context, rec domain.ResolutionRecord, resolver string) error {
	if r.articles == nil || rec.ActualSolution == nil || *rec.ActualSolution == "" {
		return nil
	}
	text := *rec.ActualSolution

	existing, err := r.articles.FindForCategory(ctx, rec.Category, rec.Subcategory)
	if err != nil {
		return fmt.Errorf("find article: %w", err)
	}

	if existing != nil {
		if SolutionExists(*existing, text) {
			return nil
		}
		return r.articles.AppendSolution(ctx, existing.ID, domain.ArticleSolution{
			Title:            fmt.Sprintf("Solution from ticket %s", rec.TicketID),
			Description:      text,
			Steps:            []string{text},
			Type:             domain.SolutionManual,
			EstimatedMinutes: rec.ResolutionMinutes,
		})
	}

	if resolver == "" {
		resolver = "system"
	}
	now := r.now().UTC()
	article := &domain.KnowledgeArticle{
		ID:          uuid.NewString(),
		Title:       fmt.Sprintf("How to resolve %s issues", rec.Category),
		Description: rec.OriginalQuery,
		Content:     text,
		Category:    rec.Category,
		Subcategory: rec.Subcategory,
		Solutions: []domain.ArticleSolution{{
			Title:            fmt.Sprintf("Solution for %s issue", rec.Category),
			Description:      text,
			Steps:            []string{text},
			Type:             domain.SolutionManual,
			EstimatedMinutes: rec.ResolutionMinutes,
		}},
		Tags:      []string{},
		Keywords:  []string{},
		Status:    domain.ArticleStatusDraft,
		Author:    resolver,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.articles.Create(ctx, article); err != nil {
		return fmt.Errorf("create draft article: %w", err)
	}
	r.logger.Info("draft article created from resolution", zap.String("article_id", article.ID))
	return nil
}
