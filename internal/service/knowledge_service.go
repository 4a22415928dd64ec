package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/intake-engine/internal/domain"
)

// ArticleRepository is the knowledge store used by the service.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.KnowledgeArticle) error
	GetByID(ctx context.Context, id string) (*domain.KnowledgeArticle, error)
	GetByTitle(ctx context.Context, title string) (*domain.KnowledgeArticle, error)
	Search(ctx context.Context, text string, category *domain.Category, limit int) ([]domain.KnowledgeArticle, error)
	IncrementCounter(ctx context.Context, id string, counter domain.ArticleCounter) error
	SetStatus(ctx context.Context, id string, status domain.ArticleStatus) error
}

// TrendSource aggregates resolution history.
type TrendSource interface {
	Trending(ctx context.Context, since time.Time, limit int) ([]domain.TrendingIssue, error)
}

// PatternLister lists mined issue patterns.
type PatternLister interface {
	List(ctx context.Context, category *domain.Category, limit int) ([]domain.IssuePattern, error)
}

// KnowledgeDependencies bundles collaborators for the knowledge service.
type KnowledgeDependencies struct {
	Articles ArticleRepository
	Trends   TrendSource
	Patterns PatternLister
	Logger   *zap.Logger
}

// KnowledgeService exposes the knowledge base and learning insights.
type KnowledgeService struct {
	articles ArticleRepository
	trends   TrendSource
	patterns PatternLister
	logger   *zap.Logger
	now      func() time.Time
}

// ArticleInput describes a staff-authored article.
type ArticleInput struct {
	Title       string                   `yaml:"title"`
	Description string                   `yaml:"description"`
	Content     string                   `yaml:"content"`
	Category    domain.Category          `yaml:"category"`
	Subcategory *string                  `yaml:"subcategory"`
	Tags        []string                 `yaml:"tags"`
	Keywords    []string                 `yaml:"keywords"`
	Solutions   []domain.ArticleSolution `yaml:"solutions"`
	Publish     bool                     `yaml:"published"`
}

const (
	defaultSearchLimit   = 10
	defaultTrendingDays  = 7
	defaultTrendingLimit = 10
	defaultPatternLimit  = 20
)

// NewKnowledgeService builds the service.
func NewKnowledgeService(deps KnowledgeDependencies) *KnowledgeService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KnowledgeService{
		articles: deps.Articles,
		trends:   deps.Trends,
		patterns: deps.Patterns,
		logger:   logger.Named("knowledge_service"),
		now:      time.Now,
	}
}

// Search finds articles by keyword with an optional category filter.
func (s *KnowledgeService) Search(ctx context.Context, query string, category *domain.Category, limit int) ([]domain.KnowledgeArticle, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return s.articles.Search(ctx, query, category, limit)
}

// Get returns an article and counts the view.
func (s *KnowledgeService) Get(ctx context.Context, id string) (*domain.KnowledgeArticle, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, pgx.ErrNoRows
	}
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.articles.IncrementCounter(ctx, id, domain.CounterViews); err != nil {
		s.logger.Warn("view count update failed", zap.String("article_id", id), zap.Error(err))
	} else {
		article.ViewCount++
	}
	return article, nil
}

// Create stores a new article authored by a staff member.
func (s *KnowledgeService) Create(ctx context.Context, input ArticleInput, author string) (*domain.KnowledgeArticle, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(string(input.Category)) == "" {
		return nil, fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	status := domain.ArticleStatusDraft
	if input.Publish {
		status = domain.ArticleStatusPublished
	}
	if author == "" {
		author = "system"
	}
	for i := range input.Solutions {
		input.Solutions[i].Type = domain.ParseSolutionType(string(input.Solutions[i].Type))
	}
	article := &domain.KnowledgeArticle{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Content:     input.Content,
		Category:    input.Category,
		Subcategory: input.Subcategory,
		Tags:        input.Tags,
		Keywords:    lowerAll(input.Keywords),
		Solutions:   input.Solutions,
		Status:      status,
		Author:      author,
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return article, nil
}

// Publish marks an article as published.
func (s *KnowledgeService) Publish(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return pgx.ErrNoRows
	}
	return s.articles.SetStatus(ctx, id, domain.ArticleStatusPublished)
}

// Feedback records a helpful or unhelpful vote.
func (s *KnowledgeService) Feedback(ctx context.Context, id string, helpful bool) error {
	if _, err := uuid.Parse(id); err != nil {
		return pgx.ErrNoRows
	}
	counter := domain.CounterUnhelpful
	if helpful {
		counter = domain.CounterHelpful
	}
	return s.articles.IncrementCounter(ctx, id, counter)
}

// Trending summarizes resolution activity per category over the last days.
func (s *KnowledgeService) Trending(ctx context.Context, days, limit int) ([]domain.TrendingIssue, error) {
	if days <= 0 {
		days = defaultTrendingDays
	}
	if limit <= 0 {
		limit = defaultTrendingLimit
	}
	since := s.now().UTC().AddDate(0, 0, -days)
	return s.trends.Trending(ctx, since, limit)
}

// Patterns lists mined issue patterns, newest first.
func (s *KnowledgeService) Patterns(ctx context.Context, category *domain.Category, limit int) ([]domain.IssuePattern, error) {
	if limit <= 0 {
		limit = defaultPatternLimit
	}
	return s.patterns.List(ctx, category, limit)
}

type seedFile struct {
	Articles []ArticleInput `yaml:"articles"`
}

// SeedFromFile loads articles from a YAML file, skipping titles that
// already exist. It returns the number of articles created.
func (s *KnowledgeService) SeedFromFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	return s.Seed(ctx, data)
}

// Seed loads articles from YAML content.
func (s *KnowledgeService) Seed(ctx context.Context, data []byte) (int, error) {
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}

	created := 0
	for _, input := range file.Articles {
		_, err := s.articles.GetByTitle(ctx, input.Title)
		if err == nil {
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return created, err
		}
		if _, err := s.Create(ctx, input, "seed"); err != nil {
			return created, err
		}
		created++
	}
	s.logger.Info("knowledge seed applied", zap.Int("created", created), zap.Int("total", len(file.Articles)))
	return created, nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
