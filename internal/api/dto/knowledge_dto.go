package dto

import (
	"time"

	"github.com/spec-kit/intake-engine/internal/domain"
)

// ArticleSummary is the list view of a knowledge article.
type ArticleSummary struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Category    domain.Category      `json:"category"`
	Subcategory *string              `json:"subcategory,omitempty"`
	Status      domain.ArticleStatus `json:"status"`
	SuccessRate float64              `json:"success_rate"`
}

// NewArticleSummary builds an ArticleSummary.
func NewArticleSummary(a *domain.KnowledgeArticle) ArticleSummary {
	return ArticleSummary{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Category:    a.Category,
		Subcategory: a.Subcategory,
		Status:      a.Status,
		SuccessRate: a.SuccessRate(),
	}
}

// ArticleResponse is the full view of a knowledge article.
type ArticleResponse struct {
	ArticleSummary
	Content            string                   `json:"content"`
	Tags               []string                 `json:"tags"`
	Keywords           []string                 `json:"keywords"`
	Solutions          []domain.ArticleSolution `json:"solutions"`
	Author             string                   `json:"author"`
	ViewCount          int                      `json:"view_count"`
	HelpfulVotes       int                      `json:"helpful_votes"`
	UnhelpfulVotes     int                      `json:"unhelpful_votes"`
	SuccessResolutions int                      `json:"success_resolutions"`
	TotalAttempts      int                      `json:"total_attempts"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

// NewArticleResponse builds an ArticleResponse.
func NewArticleResponse(a *domain.KnowledgeArticle) ArticleResponse {
	return ArticleResponse{
		ArticleSummary:     NewArticleSummary(a),
		Content:            a.Content,
		Tags:               a.Tags,
		Keywords:           a.Keywords,
		Solutions:          a.Solutions,
		Author:             a.Author,
		ViewCount:          a.ViewCount,
		HelpfulVotes:       a.HelpfulVotes,
		UnhelpfulVotes:     a.UnhelpfulVotes,
		SuccessResolutions: a.SuccessResolutions,
		TotalAttempts:      a.TotalAttempts,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

// CreateArticleRequest payload.
type CreateArticleRequest struct {
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Content     string                   `json:"content"`
	Category    string                   `json:"category"`
	Subcategory *string                  `json:"subcategory"`
	Tags        []string                 `json:"tags"`
	Keywords    []string                 `json:"keywords"`
	Solutions   []domain.ArticleSolution `json:"solutions"`
	Publish     bool                     `json:"publish"`
}

// FeedbackRequest payload for article feedback.
type FeedbackRequest struct {
	Helpful *bool `json:"helpful"`
}

// PatternResponse is the public view of a mined issue pattern.
type PatternResponse struct {
	ID                   string          `json:"id"`
	Category             domain.Category `json:"category"`
	Subcategory          *string         `json:"subcategory,omitempty"`
	PatternText          string          `json:"pattern_text"`
	Keywords             []string        `json:"keywords"`
	Frequency            int             `json:"frequency"`
	AvgResolutionMinutes int             `json:"avg_resolution_minutes"`
	CommonSolutions      []string        `json:"common_solutions"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// NewPatternResponse builds a PatternResponse.
func NewPatternResponse(p *domain.IssuePattern) PatternResponse {
	return PatternResponse{
		ID:                   p.ID,
		Category:             p.Category,
		Subcategory:          p.Subcategory,
		PatternText:          p.PatternText,
		Keywords:             p.Keywords,
		Frequency:            p.Frequency,
		AvgResolutionMinutes: p.AvgResolutionMinutes,
		CommonSolutions:      p.CommonSolutions,
		UpdatedAt:            p.UpdatedAt,
	}
}
