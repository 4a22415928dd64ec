package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/intake-engine/internal/domain"
)

// ErrUnknownCounter is returned for an article counter that is not a column.
var ErrUnknownCounter = errors.New("unknown article counter")

// KnowledgeRepository persists knowledge articles. Implemented over
// Postgres and MongoDB.
type KnowledgeRepository interface {
	Create(ctx context.Context, article *domain.KnowledgeArticle) error
	GetByID(ctx context.Context, id string) (*domain.KnowledgeArticle, error)
	GetByTitle(ctx context.Context, title string) (*domain.KnowledgeArticle, error)
	FindByCategory(ctx context.Context, category domain.Category, limit int) ([]domain.KnowledgeArticle, error)
	Search(ctx context.Context, text string, category *domain.Category, limit int) ([]domain.KnowledgeArticle, error)
	FindForCategory(ctx context.Context, category domain.Category, subcategory *string) (*domain.KnowledgeArticle, error)
	AppendSolution(ctx context.Context, id string, solution domain.ArticleSolution) error
	IncrementCounter(ctx context.Context, id string, counter domain.ArticleCounter) error
	SetStatus(ctx context.Context, id string, status domain.ArticleStatus) error
}

type knowledgeRepository struct {
	pool *pgxpool.Pool
}

// NewKnowledgeRepository instantiates the Postgres repository.
func NewKnowledgeRepository(pool *pgxpool.Pool) KnowledgeRepository {
	return &knowledgeRepository{pool: pool}
}

const articleColumns = `id, title, description, content, category, subcategory, tags, keywords, solutions,
               status, author, view_count, helpful_votes, unhelpful_votes, success_resolutions,
               total_attempts, created_at, updated_at`

func (r *knowledgeRepository) Create(ctx context.Context, article *domain.KnowledgeArticle) error {
	solutions, err := marshalList(article.Solutions)
	if err != nil {
		return fmt.Errorf("encode solutions: %w", err)
	}
	if article.Status == "" {
		article.Status = domain.ArticleStatusDraft
	}

	const query = `
        INSERT INTO knowledge_articles (title, description, content, category, subcategory, tags, keywords, solutions, status, author)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		article.Title,
		article.Description,
		article.Content,
		article.Category,
		article.Subcategory,
		nonNil(article.Tags),
		nonNil(article.Keywords),
		solutions,
		article.Status,
		article.Author,
	).Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)
}

func (r *knowledgeRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeArticle, error) {
	query := `SELECT ` + articleColumns + ` FROM knowledge_articles WHERE id=$1`
	return scanArticle(r.pool.QueryRow(ctx, query, id))
}

func (r *knowledgeRepository) GetByTitle(ctx context.Context, title string) (*domain.KnowledgeArticle, error) {
	query := `SELECT ` + articleColumns + ` FROM knowledge_articles WHERE title=$1 ORDER BY created_at LIMIT 1`
	return scanArticle(r.pool.QueryRow(ctx, query, title))
}

// FindByCategory returns published articles, most successful first.
func (r *knowledgeRepository) FindByCategory(ctx context.Context, category domain.Category, limit int) ([]domain.KnowledgeArticle, error) {
	query := `SELECT ` + articleColumns + `
        FROM knowledge_articles
        WHERE category=$1 AND status=$2
        ORDER BY success_resolutions DESC, helpful_votes DESC, created_at
        LIMIT $3`
	rows, err := r.pool.Query(ctx, query, category, domain.ArticleStatusPublished, normalizeLimit(limit, 5))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// Search matches published articles whose text contains any significant
// word of the query, or whose keywords include one.
func (r *knowledgeRepository) Search(ctx context.Context, text string, category *domain.Category, limit int) ([]domain.KnowledgeArticle, error) {
	terms := SearchTerms(text)
	if len(terms) == 0 {
		return nil, nil
	}
	patterns := make([]string, len(terms))
	for i, t := range terms {
		patterns[i] = "%" + t + "%"
	}

	args := []any{domain.ArticleStatusPublished, patterns, terms}
	clauses := []string{
		"status=$1",
		"(title ILIKE ANY($2) OR description ILIKE ANY($2) OR content ILIKE ANY($2) OR keywords && $3)",
	}
	if category != nil {
		args = append(args, *category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	args = append(args, normalizeLimit(limit, 10))

	query := fmt.Sprintf(`SELECT %s FROM knowledge_articles WHERE %s ORDER BY view_count DESC, created_at LIMIT $%d`,
		articleColumns, strings.Join(clauses, " AND "), len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// FindForCategory returns the oldest article of any status for the pair,
// or nil when there is none.
func (r *knowledgeRepository) FindForCategory(ctx context.Context, category domain.Category, subcategory *string) (*domain.KnowledgeArticle, error) {
	query := `SELECT ` + articleColumns + `
        FROM knowledge_articles
        WHERE category=$1 AND subcategory IS NOT DISTINCT FROM $2
        ORDER BY created_at LIMIT 1`
	article, err := scanArticle(r.pool.QueryRow(ctx, query, category, subcategory))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return article, err
}

func (r *knowledgeRepository) AppendSolution(ctx context.Context, id string, solution domain.ArticleSolution) error {
	payload, err := json.Marshal([]domain.ArticleSolution{solution})
	if err != nil {
		return fmt.Errorf("encode solution: %w", err)
	}
	const query = `UPDATE knowledge_articles SET solutions = solutions || $1::jsonb, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, payload, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// IncrementCounter bumps one statistic in a single UPDATE so concurrent
// increments are never lost.
func (r *knowledgeRepository) IncrementCounter(ctx context.Context, id string, counter domain.ArticleCounter) error {
	if !counter.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownCounter, counter)
	}
	query := fmt.Sprintf(`UPDATE knowledge_articles SET %[1]s = %[1]s + 1, updated_at=NOW() WHERE id=$1`, counter)
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *knowledgeRepository) SetStatus(ctx context.Context, id string, status domain.ArticleStatus) error {
	const query = `UPDATE knowledge_articles SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanArticle(row pgx.Row) (*domain.KnowledgeArticle, error) {
	var (
		article   domain.KnowledgeArticle
		solutions []byte
	)
	if err := row.Scan(
		&article.ID,
		&article.Title,
		&article.Description,
		&article.Content,
		&article.Category,
		&article.Subcategory,
		&article.Tags,
		&article.Keywords,
		&solutions,
		&article.Status,
		&article.Author,
		&article.ViewCount,
		&article.HelpfulVotes,
		&article.UnhelpfulVotes,
		&article.SuccessResolutions,
		&article.TotalAttempts,
		&article.CreatedAt,
		&article.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(solutions, &article.Solutions); err != nil {
		return nil, fmt.Errorf("decode solutions: %w", err)
	}
	return &article, nil
}

func scanArticles(rows pgx.Rows) ([]domain.KnowledgeArticle, error) {
	var result []domain.KnowledgeArticle
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *article)
	}
	return result, rows.Err()
}
