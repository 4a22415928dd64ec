package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/intake-engine/internal/domain"
)

// ResolutionRepository stores the append-only resolution history.
type ResolutionRepository interface {
	Insert(ctx context.Context, rec *domain.ResolutionRecord) error
	FindSuccessful(ctx context.Context, category domain.Category, limit int) ([]domain.ResolutionRecord, error)
	FindByTicket(ctx context.Context, ticketID string) (*domain.ResolutionRecord, error)
	SimilarTickets(ctx context.Context, category domain.Category, keywords []string, limit int) ([]string, error)
	Trending(ctx context.Context, since time.Time, limit int) ([]domain.TrendingIssue, error)
	CategoriesSince(ctx context.Context, since time.Time) ([]domain.Category, error)
}

type resolutionRepository struct {
	pool *pgxpool.Pool
}

// NewResolutionRepository instantiates the repository.
func NewResolutionRepository(pool *pgxpool.Pool) ResolutionRepository {
	return &resolutionRepository{pool: pool}
}

const resolutionColumns = `id, ticket_id, article_id, category, subcategory, method, resolved_successfully,
               resolution_minutes, user_satisfaction, solution_used, actual_solution, original_query, created_at`

// Insert appends rec. A second successful record for the same ticket fails
// with domain.ErrDuplicateResolution.
func (r *resolutionRepository) Insert(ctx context.Context, rec *domain.ResolutionRecord) error {
	const query = `
        INSERT INTO resolution_records (id, ticket_id, article_id, category, subcategory, method, resolved_successfully,
            resolution_minutes, user_satisfaction, solution_used, actual_solution, original_query, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`
	_, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.TicketID,
		rec.ArticleID,
		rec.Category,
		rec.Subcategory,
		rec.Method,
		rec.ResolvedSuccessfully,
		rec.ResolutionMinutes,
		rec.UserSatisfaction,
		rec.SolutionUsed,
		rec.ActualSolution,
		rec.OriginalQuery,
		rec.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateResolution, rec.TicketID)
	}
	return err
}

// FindSuccessful returns the most recent successful records for category.
func (r *resolutionRepository) FindSuccessful(ctx context.Context, category domain.Category, limit int) ([]domain.ResolutionRecord, error) {
	query := `SELECT ` + resolutionColumns + `
        FROM resolution_records
        WHERE category=$1 AND resolved_successfully
        ORDER BY created_at DESC
        LIMIT $2`
	rows, err := r.pool.Query(ctx, query, category, normalizeLimit(limit, 100))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ResolutionRecord
	for rows.Next() {
		rec, err := scanResolution(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	return result, rows.Err()
}

// FindByTicket returns the latest record for a ticket, or nil if none.
func (r *resolutionRepository) FindByTicket(ctx context.Context, ticketID string) (*domain.ResolutionRecord, error) {
	query := `SELECT ` + resolutionColumns + `
        FROM resolution_records WHERE ticket_id=$1
        ORDER BY created_at DESC LIMIT 1`
	rec, err := scanResolution(r.pool.QueryRow(ctx, query, ticketID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// SimilarTickets finds successfully resolved tickets in the category whose
// original query mentions any of the keywords.
func (r *resolutionRepository) SimilarTickets(ctx context.Context, category domain.Category, keywords []string, limit int) ([]string, error) {
	var patterns []string
	for _, k := range keywords {
		for _, term := range SearchTerms(k) {
			patterns = append(patterns, "%"+term+"%")
		}
	}
	if len(patterns) == 0 {
		return nil, nil
	}

	const query = `
        SELECT ticket_id FROM (
            SELECT ticket_id, MAX(created_at) AS latest
            FROM resolution_records
            WHERE category=$1 AND resolved_successfully AND original_query ILIKE ANY($2)
            GROUP BY ticket_id
        ) matched
        ORDER BY latest DESC
        LIMIT $3`
	rows, err := r.pool.Query(ctx, query, category, patterns, normalizeLimit(limit, 5))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Trending counts resolutions per category since the given time, busiest
// first, with the success rate and mean non-zero resolution time.
func (r *resolutionRepository) Trending(ctx context.Context, since time.Time, limit int) ([]domain.TrendingIssue, error) {
	const query = `
        SELECT category,
               COUNT(*)::int,
               AVG(CASE WHEN resolved_successfully THEN 1.0 ELSE 0.0 END)::float8,
               COALESCE(AVG(NULLIF(resolution_minutes, 0)), 30)::int
        FROM resolution_records
        WHERE created_at >= $1
        GROUP BY category
        ORDER BY COUNT(*) DESC, category
        LIMIT $2`
	rows, err := r.pool.Query(ctx, query, since, normalizeLimit(limit, 10))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TrendingIssue
	for rows.Next() {
		var t domain.TrendingIssue
		if err := rows.Scan(&t.Category, &t.TicketCount, &t.SuccessRate, &t.AvgResolutionMinutes); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// CategoriesSince lists categories with at least one successful resolution
// since the given time.
func (r *resolutionRepository) CategoriesSince(ctx context.Context, since time.Time) ([]domain.Category, error) {
	const query = `
        SELECT DISTINCT category FROM resolution_records
        WHERE resolved_successfully AND created_at >= $1
        ORDER BY category`
	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func scanResolution(row pgx.Row) (*domain.ResolutionRecord, error) {
	var rec domain.ResolutionRecord
	if err := row.Scan(
		&rec.ID,
		&rec.TicketID,
		&rec.ArticleID,
		&rec.Category,
		&rec.Subcategory,
		&rec.Method,
		&rec.ResolvedSuccessfully,
		&rec.ResolutionMinutes,
		&rec.UserSatisfaction,
		&rec.SolutionUsed,
		&rec.ActualSolution,
		&rec.OriginalQuery,
		&rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}
