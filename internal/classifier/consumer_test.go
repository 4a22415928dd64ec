package classifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/intake-engine/internal/domain"
)

type stubProvider struct {
	out   domain.Classification
	err   error
	delay time.Duration
	calls int
}

func (s *stubProvider) Classify(ctx context.Context, _ string, _ map[string]string) (domain.Classification, error) {
	s.calls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return domain.Classification{}, ctx.Err()
		}
	}
	return s.out, s.err
}

type mapCache struct {
	items map[string]domain.Classification
	sets  int
}

func (m *mapCache) Get(_ context.Context, text string) (domain.Classification, bool) {
	c, ok := m.items[text]
	return c, ok
}

func (m *mapCache) Set(_ context.Context, text string, c domain.Classification) {
	m.sets++
	m.items[text] = c
}

type stubSimilar struct {
	ids []string
	err error
}

func (s stubSimilar) SimilarTickets(context.Context, domain.Category, []string, int) ([]string, error) {
	return s.ids, s.err
}

func TestConsumer_ModelSuccess(t *testing.T) {
	provider := &stubProvider{out: domain.Classification{
		Category:    domain.CategoryEmail,
		Subcategory: "quota",
		Priority:    domain.PriorityLow,
		Confidence:  0.93,
		Keywords:    []string{"mailbox"},
	}}
	cache := &mapCache{items: map[string]domain.Classification{}}
	c := NewConsumer(Dependencies{Provider: provider, Cache: cache, Similar: stubSimilar{ids: []string{"t-1"}}})

	res := c.Classify(context.Background(), "mailbox full", nil)

	assert.Equal(t, OutcomeModel, res.Outcome)
	assert.False(t, res.FellBack())
	assert.Equal(t, domain.CategoryEmail, res.Classification.Category)
	assert.True(t, res.Classification.AutoResolutionEligible)
	assert.Equal(t, 67, res.Classification.EstimatedResolutionMinutes)
	assert.Equal(t, []string{"t-1"}, res.Classification.SimilarTicketIDs)
	assert.Equal(t, 1, cache.sets)
}

func TestConsumer_CacheHitSkipsProvider(t *testing.T) {
	provider := &stubProvider{}
	cache := &mapCache{items: map[string]domain.Classification{
		"vpn down": {Category: domain.CategoryVPN, Priority: domain.PriorityHigh, Confidence: 0.8},
	}}
	c := NewConsumer(Dependencies{Provider: provider, Cache: cache})

	res := c.Classify(context.Background(), "vpn down", nil)
	assert.Equal(t, OutcomeCached, res.Outcome)
	assert.Equal(t, 0, provider.calls)
	assert.Equal(t, "network_team", res.Classification.SuggestedAssignee)
}

func TestConsumer_FallsBackOnError(t *testing.T) {
	boom := errors.New("connection refused")
	cache := &mapCache{items: map[string]domain.Classification{}}
	c := NewConsumer(Dependencies{Provider: &stubProvider{err: boom}, Cache: cache, Similar: stubSimilar{err: boom}})

	res := c.Classify(context.Background(), "I forgot my password and need to reset it", nil)

	require.True(t, res.FellBack())
	assert.ErrorIs(t, res.FallbackReason, boom)
	assert.Equal(t, domain.CategoryPassword, res.Classification.Category)
	assert.Equal(t, domain.PriorityMedium, res.Classification.Priority)
	assert.False(t, res.Classification.AutoResolutionEligible, "subcategory not resolved yet")
	assert.Nil(t, res.Classification.SimilarTicketIDs)
	assert.Equal(t, 0, cache.sets, "fallback results are not cached")
}

func TestConsumer_FallsBackOnTimeout(t *testing.T) {
	provider := &stubProvider{delay: time.Second}
	c := NewConsumer(Dependencies{Provider: provider, Timeout: 20 * time.Millisecond})

	start := time.Now()
	res := c.Classify(context.Background(), "urgent: monitor flickering", nil)

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.True(t, res.FellBack())
	assert.ErrorIs(t, res.FallbackReason, context.DeadlineExceeded)
	assert.Equal(t, domain.CategoryHardware, res.Classification.Category)
	assert.Equal(t, domain.PriorityHigh, res.Classification.Priority)
}

func TestConsumer_NoProvider(t *testing.T) {
	c := NewConsumer(Dependencies{})
	res := c.Classify(context.Background(), "paper jam in tray 2", nil)
	assert.True(t, res.FellBack())
	assert.Equal(t, domain.CategoryPrinter, res.Classification.Category)
}
