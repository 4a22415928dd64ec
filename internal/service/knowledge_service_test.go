package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/intake-engine/internal/domain"
)

func newKnowledgeFixture() (*KnowledgeService, *memArticles, *fakeTrends) {
	articles := newMemArticles()
	trends := &fakeTrends{}
	svc := NewKnowledgeService(KnowledgeDependencies{Articles: articles, Trends: trends})
	return svc, articles, trends
}

func TestKnowledge_CreateAndGetCountsViews(t *testing.T) {
	svc, articles, _ := newKnowledgeFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, ArticleInput{
		Title:    "Reset a forgotten password",
		Category: domain.CategoryPassword,
		Keywords: []string{" Password ", "", "RESET"},
		Solutions: []domain.ArticleSolution{
			{Title: "Use the portal", Type: "self_service_link", Confidence: 0.9},
		},
	}, "agent@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.ArticleStatusDraft, created.Status)
	assert.Equal(t, []string{"password", "reset"}, created.Keywords)
	assert.Equal(t, domain.SolutionSelfService, created.Solutions[0].Type)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ViewCount)
	assert.Equal(t, 1, articles.counters[domain.CounterViews])
}

func TestKnowledge_Validation(t *testing.T) {
	svc, _, _ := newKnowledgeFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, ArticleInput{Category: domain.CategoryVPN}, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Search(ctx, "  ", nil, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestKnowledge_FeedbackAndPublish(t *testing.T) {
	svc, articles, _ := newKnowledgeFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, ArticleInput{Title: "VPN drops", Category: domain.CategoryVPN}, "")
	require.NoError(t, err)
	assert.Equal(t, "system", created.Author)

	require.NoError(t, svc.Feedback(ctx, created.ID, true))
	require.NoError(t, svc.Feedback(ctx, created.ID, false))
	require.NoError(t, svc.Feedback(ctx, created.ID, true))
	assert.Equal(t, 2, articles.counters[domain.CounterHelpful])
	assert.Equal(t, 1, articles.counters[domain.CounterUnhelpful])

	require.NoError(t, svc.Publish(ctx, created.ID))
	assert.Equal(t, domain.ArticleStatusPublished, articles.byID[created.ID].Status)

	assert.ErrorIs(t, svc.Feedback(ctx, "00000000-0000-0000-0000-0000000000ff", true), pgx.ErrNoRows)
}

func TestKnowledge_TrendingDefaults(t *testing.T) {
	svc, _, trends := newKnowledgeFixture()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	out, err := svc.Trending(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, now.AddDate(0, 0, -7), trends.since)
	assert.Equal(t, 10, trends.limit)
}

const seedYAML = `
articles:
  - title: Reset a forgotten password
    category: Password
    keywords: [password, reset]
    published: true
    solutions:
      - title: Self-Service Password Reset
        type: self_service
        confidence: 0.9
        estimated_minutes: 5
        automated_action:
          action_type: password_reset
  - title: Printer offline
    category: Printer
`

func TestKnowledge_SeedIsIdempotent(t *testing.T) {
	svc, articles, _ := newKnowledgeFixture()
	ctx := context.Background()

	n, err := svc.Seed(ctx, []byte(seedYAML))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = svc.Seed(ctx, []byte(seedYAML))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, articles.byID, 2)

	reset, err := articles.GetByTitle(ctx, "Reset a forgotten password")
	require.NoError(t, err)
	assert.Equal(t, domain.ArticleStatusPublished, reset.Status)
	assert.Equal(t, "seed", reset.Author)
	require.NotNil(t, reset.Solutions[0].AutomatedAction)
	assert.Equal(t, "password_reset", reset.Solutions[0].AutomatedAction.ActionType)
}

func TestKnowledge_SeedRejectsBadYAML(t *testing.T) {
	svc, _, _ := newKnowledgeFixture()
	_, err := svc.Seed(context.Background(), []byte("articles: [unterminated"))
	assert.Error(t, err)
}
