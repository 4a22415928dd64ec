package domain

import "time"

// ArticleStatus enumerates knowledge article lifecycle states.
type ArticleStatus string

const (
	ArticleStatusDraft       ArticleStatus = "draft"
	ArticleStatusPublished   ArticleStatus = "published"
	ArticleStatusArchived    ArticleStatus = "archived"
	ArticleStatusUnderReview ArticleStatus = "under_review"
)

// ArticleSolution is one remedy documented by an article.
type ArticleSolution struct {
	Title            string           `json:"title" bson:"title" yaml:"title"`
	Description      string           `json:"description" bson:"description" yaml:"description"`
	Steps            []string         `json:"steps" bson:"steps" yaml:"steps"`
	Type             SolutionType     `json:"type" bson:"type" yaml:"type"`
	Confidence       float64          `json:"confidence" bson:"confidence" yaml:"confidence"`
	EstimatedMinutes int              `json:"estimated_minutes" bson:"estimated_minutes" yaml:"estimated_minutes"`
	AutomatedAction  *AutomatedAction `json:"automated_action,omitempty" bson:"automated_action,omitempty" yaml:"automated_action,omitempty"`
}

// Candidate converts the stored solution to a ranking candidate.
func (s ArticleSolution) Candidate() SolutionCandidate {
	return SolutionCandidate{
		Title:            s.Title,
		Description:      s.Description,
		Steps:            s.Steps,
		Type:             s.Type,
		Confidence:       s.Confidence,
		EstimatedMinutes: s.EstimatedMinutes,
		AutomatedAction:  s.AutomatedAction,
	}
}

// KnowledgeArticle is a curated troubleshooting document.
type KnowledgeArticle struct {
	ID                 string
	Title              string
	Description        string
	Content            string
	Category           Category
	Subcategory        *string
	Tags               []string
	Keywords           []string
	Solutions          []ArticleSolution
	Status             ArticleStatus
	Author             string
	ViewCount          int
	HelpfulVotes       int
	UnhelpfulVotes     int
	SuccessResolutions int
	TotalAttempts      int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SuccessRate is success_resolutions/total_attempts, or 0 with no attempts.
func (a KnowledgeArticle) SuccessRate() float64 {
	if a.TotalAttempts == 0 {
		return 0
	}
	return float64(a.SuccessResolutions) / float64(a.TotalAttempts)
}

// ArticleCounter names an atomically incremented article statistic.
type ArticleCounter string

const (
	CounterViews         ArticleCounter = "view_count"
	CounterHelpful       ArticleCounter = "helpful_votes"
	CounterUnhelpful     ArticleCounter = "unhelpful_votes"
	CounterSuccesses     ArticleCounter = "success_resolutions"
	CounterTotalAttempts ArticleCounter = "total_attempts"
)

// Valid reports whether c names a known counter column.
func (c ArticleCounter) Valid() bool {
	switch c {
	case CounterViews, CounterHelpful, CounterUnhelpful, CounterSuccesses, CounterTotalAttempts:
		return true
	}
	return false
}
