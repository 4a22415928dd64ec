package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/intake-engine/internal/classifier"
	"github.com/spec-kit/intake-engine/internal/domain"
	"github.com/spec-kit/intake-engine/internal/events"
	"github.com/spec-kit/intake-engine/internal/learning"
	"github.com/spec-kit/intake-engine/internal/ranking"
)

type stubClassifier struct {
	result  classifier.Result
	userCtx map[string]string
}

func (s *stubClassifier) Classify(_ context.Context, _ string, userCtx map[string]string) classifier.Result {
	s.userCtx = userCtx
	return s.result
}

type stubRanker struct {
	outcome ranking.Outcome
	rc      ranking.RankContext
}

func (s *stubRanker) Rank(_ context.Context, _ domain.Classification, _ string, rc ranking.RankContext) ranking.Outcome {
	s.rc = rc
	return s.outcome
}

type fakeRecorder struct {
	outcomes []learning.Outcome
	err      error
}

func (f *fakeRecorder) Record(_ context.Context, outcome learning.Outcome) (domain.ResolutionRecord, error) {
	if f.err != nil {
		return domain.ResolutionRecord{}, f.err
	}
	if outcome.Record.TicketID == "" || outcome.Record.Category == "" {
		return domain.ResolutionRecord{}, learning.ErrInvalidOutcome
	}
	if outcome.Record.ResolvedSuccessfully {
		for _, prev := range f.outcomes {
			if prev.Record.TicketID == outcome.Record.TicketID && prev.Record.ResolvedSuccessfully {
				return domain.ResolutionRecord{}, fmt.Errorf("insert resolution record: %w", domain.ErrDuplicateResolution)
			}
		}
	}
	f.outcomes = append(f.outcomes, outcome)
	rec := outcome.Record
	rec.ID = "rec-1"
	if rec.Method == "" {
		rec.Method = domain.ResolutionManual
	}
	return rec, nil
}

type fakeTickets struct {
	created  []*domain.Ticket
	resolved map[string]string
	err      error
}

func (f *fakeTickets) Create(_ context.Context, t *domain.Ticket) error {
	if f.err != nil {
		return f.err
	}
	t.ID = "ticket-1"
	f.created = append(f.created, t)
	return nil
}

func (f *fakeTickets) GetByNumber(_ context.Context, number string) (*domain.Ticket, error) {
	for _, t := range f.created {
		if t.TicketNumber == number {
			return t, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTickets) MarkResolved(_ context.Context, number, resolution string) error {
	if f.resolved == nil {
		f.resolved = map[string]string{}
	}
	f.resolved[number] = resolution
	return nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, e events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

type memArticles struct {
	byID     map[string]*domain.KnowledgeArticle
	counters map[domain.ArticleCounter]int
	search   []domain.KnowledgeArticle
}

func newMemArticles() *memArticles {
	return &memArticles{byID: map[string]*domain.KnowledgeArticle{}, counters: map[domain.ArticleCounter]int{}}
}

func (m *memArticles) Create(_ context.Context, a *domain.KnowledgeArticle) error {
	a.ID = "00000000-0000-0000-0000-00000000000" + string(rune('0'+len(m.byID)))
	a.CreatedAt = time.Now()
	m.byID[a.ID] = a
	return nil
}

func (m *memArticles) GetByID(_ context.Context, id string) (*domain.KnowledgeArticle, error) {
	if a, ok := m.byID[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *memArticles) GetByTitle(_ context.Context, title string) (*domain.KnowledgeArticle, error) {
	for _, a := range m.byID {
		if a.Title == title {
			return a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memArticles) Search(context.Context, string, *domain.Category, int) ([]domain.KnowledgeArticle, error) {
	return m.search, nil
}

func (m *memArticles) IncrementCounter(_ context.Context, id string, c domain.ArticleCounter) error {
	if _, ok := m.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	m.counters[c]++
	return nil
}

func (m *memArticles) SetStatus(_ context.Context, id string, status domain.ArticleStatus) error {
	a, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	a.Status = status
	return nil
}

type fakeTrends struct {
	since time.Time
	limit int
}

func (f *fakeTrends) Trending(_ context.Context, since time.Time, limit int) ([]domain.TrendingIssue, error) {
	f.since, f.limit = since, limit
	return []domain.TrendingIssue{{Category: domain.CategoryVPN, TicketCount: 4}}, nil
}

type memStaff struct {
	byEmail map[string]*domain.StaffMember
}

func (m *memStaff) Create(_ context.Context, s *domain.StaffMember) error {
	if m.byEmail == nil {
		m.byEmail = map[string]*domain.StaffMember{}
	}
	s.ID = "staff-" + s.Email
	m.byEmail[s.Email] = s
	return nil
}

func (m *memStaff) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	for _, s := range m.byEmail {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memStaff) GetByEmail(_ context.Context, email string) (*domain.StaffMember, error) {
	if s, ok := m.byEmail[email]; ok {
		return s, nil
	}
	return nil, pgx.ErrNoRows
}
