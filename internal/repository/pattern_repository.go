package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/intake-engine/internal/domain"
)

// PatternRepository persists mined issue patterns.
type PatternRepository interface {
	Create(ctx context.Context, pattern *domain.IssuePattern) error
	FindContaining(ctx context.Context, text string) (*domain.IssuePattern, error)
	List(ctx context.Context, category *domain.Category, limit int) ([]domain.IssuePattern, error)
}

type patternRepository struct {
	pool *pgxpool.Pool
}

// NewPatternRepository instantiates the repository.
func NewPatternRepository(pool *pgxpool.Pool) PatternRepository {
	return &patternRepository{pool: pool}
}

const patternColumns = `id, category, subcategory, pattern_text, keywords, frequency,
               avg_resolution_minutes, common_solutions, created_at, updated_at`

func (r *patternRepository) Create(ctx context.Context, pattern *domain.IssuePattern) error {
	const query = `
        INSERT INTO issue_patterns (category, subcategory, pattern_text, keywords, frequency, avg_resolution_minutes, common_solutions)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		pattern.Category,
		pattern.Subcategory,
		pattern.PatternText,
		nonNil(pattern.Keywords),
		pattern.Frequency,
		pattern.AvgResolutionMinutes,
		nonNil(pattern.CommonSolutions),
	).Scan(&pattern.ID, &pattern.CreatedAt, &pattern.UpdatedAt)
}

// FindContaining returns a stored pattern whose text contains text,
// ignoring case, or nil when there is none.
func (r *patternRepository) FindContaining(ctx context.Context, text string) (*domain.IssuePattern, error) {
	query := `SELECT ` + patternColumns + `
        FROM issue_patterns
        WHERE position(lower($1) in lower(pattern_text)) > 0
        ORDER BY created_at LIMIT 1`
	pattern, err := scanPattern(r.pool.QueryRow(ctx, query, text))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return pattern, err
}

func (r *patternRepository) List(ctx context.Context, category *domain.Category, limit int) ([]domain.IssuePattern, error) {
	query := `SELECT ` + patternColumns + `
        FROM issue_patterns
        WHERE ($1::text IS NULL OR category=$1)
        ORDER BY frequency DESC, created_at DESC
        LIMIT $2`
	var filter *string
	if category != nil {
		c := string(*category)
		filter = &c
	}
	rows, err := r.pool.Query(ctx, query, filter, normalizeLimit(limit, 20))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.IssuePattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func scanPattern(row pgx.Row) (*domain.IssuePattern, error) {
	var p domain.IssuePattern
	if err := row.Scan(
		&p.ID,
		&p.Category,
		&p.Subcategory,
		&p.PatternText,
		&p.Keywords,
		&p.Frequency,
		&p.AvgResolutionMinutes,
		&p.CommonSolutions,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
