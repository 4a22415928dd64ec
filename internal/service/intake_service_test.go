package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/intake-engine/internal/classifier"
	"github.com/spec-kit/intake-engine/internal/domain"
	"github.com/spec-kit/intake-engine/internal/events"
	"github.com/spec-kit/intake-engine/internal/intake"
	"github.com/spec-kit/intake-engine/internal/observability"
	"github.com/spec-kit/intake-engine/internal/ranking"
	"github.com/spec-kit/intake-engine/internal/resolution"
)

type intakeFixture struct {
	svc        *IntakeService
	classifier *stubClassifier
	ranker     *stubRanker
	recorder   *fakeRecorder
	tickets    *fakeTickets
	dispatcher *recordingDispatcher
	metrics    *observability.Metrics
}

func newIntakeFixture(c domain.Classification, outcome classifier.Outcome, solutions []domain.RankedSolution) *intakeFixture {
	f := &intakeFixture{
		classifier: &stubClassifier{result: classifier.Result{Classification: c, Outcome: outcome}},
		ranker:     &stubRanker{outcome: ranking.Outcome{Solutions: solutions}},
		recorder:   &fakeRecorder{},
		tickets:    &fakeTickets{},
		dispatcher: &recordingDispatcher{},
		metrics:    observability.NewMetrics(),
	}
	f.svc = NewIntakeService(IntakeDependencies{
		Normalizer: intake.NewRegistry(nil),
		Classifier: f.classifier,
		Ranker:     f.ranker,
		Executor:   resolution.NewExecutor(nil),
		Recorder:   f.recorder,
		Tickets:    f.tickets,
		Dispatcher: f.dispatcher,
		Metrics:    f.metrics,
		Policy:     resolution.DefaultPolicy(),
	})
	f.svc.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	return f
}

func passwordReset(confidence float64) domain.RankedSolution {
	return domain.RankedSolution{
		SolutionCandidate: domain.SolutionCandidate{
			Title:            "Self-Service Password Reset",
			Type:             domain.SolutionSelfService,
			Confidence:       confidence,
			EstimatedMinutes: 5,
			AutomatedAction:  &domain.AutomatedAction{ActionType: "password_reset"},
		},
		Score: confidence,
	}
}

func TestSubmit_AutoResolvesPasswordReset(t *testing.T) {
	f := newIntakeFixture(
		domain.Classification{Category: domain.CategoryPassword, Priority: domain.PriorityMedium, Confidence: 0.92},
		classifier.OutcomeModel,
		[]domain.RankedSolution{passwordReset(0.95)},
	)

	raw := []byte(`{"title":"Forgot password","description":"I forgot my password and cannot log in","email":"jane@example.com","name":"Jane"}`)
	result, err := f.svc.Submit(context.Background(), domain.SourceWebForm, raw)
	require.NoError(t, err)

	assert.Equal(t, IntakeResolved, result.Status)
	assert.True(t, strings.HasPrefix(result.Reference, "INC-"))
	assert.Len(t, result.Reference, 12)
	require.NotNil(t, result.Execution)
	assert.True(t, result.Execution.Succeeded())
	assert.Equal(t, 5, result.EstimatedResolutionMinutes)
	assert.Empty(t, f.tickets.created)

	require.Len(t, f.recorder.outcomes, 1)
	rec := f.recorder.outcomes[0].Record
	assert.Equal(t, result.Reference, rec.TicketID)
	assert.Equal(t, domain.ResolutionSelfService, rec.Method)
	assert.True(t, rec.ResolvedSuccessfully)
	assert.Equal(t, "Self-Service Password Reset", rec.SolutionUsed)

	assert.Equal(t, []events.EventType{events.EventIntakeAutoResolved}, f.dispatcher.types())
	assert.Equal(t, int64(1), f.metrics.Snapshot()["intakes"]["web_form|model|resolved"])
}

func TestSubmit_FailedActionRaisesTicket(t *testing.T) {
	f := newIntakeFixture(
		domain.Classification{Category: domain.CategoryPassword, Priority: domain.PriorityMedium, Confidence: 0.92},
		classifier.OutcomeModel,
		[]domain.RankedSolution{passwordReset(0.95)},
	)

	// no requester email, so the reset handler refuses
	raw := []byte(`{"description":"reset my password please"}`)
	result, err := f.svc.Submit(context.Background(), domain.SourceWebForm, raw)
	require.NoError(t, err)

	assert.Equal(t, IntakeTicketCreated, result.Status)
	assert.Equal(t, resolution.ReasonActionFailed, result.Decision.Reason)
	require.NotNil(t, result.Execution)
	assert.False(t, result.Execution.Succeeded())
	assert.Len(t, f.tickets.created, 1)
	assert.Empty(t, f.recorder.outcomes)
}

func TestSubmit_CreatesTicketBelowThresholds(t *testing.T) {
	manual := domain.RankedSolution{SolutionCandidate: domain.SolutionCandidate{
		Title: "VPN Connection Troubleshooting", Type: domain.SolutionManual, Confidence: 0.7, EstimatedMinutes: 15,
	}}
	f := newIntakeFixture(
		domain.Classification{
			Category:          domain.CategoryVPN,
			Subcategory:       "Connectivity",
			Priority:          domain.PriorityMedium,
			Confidence:        0.85,
			SuggestedAssignee: "Network Team",
		},
		classifier.OutcomeFallback,
		[]domain.RankedSolution{manual},
	)

	raw := []byte(`{"IncidentID":"SM-1","ShortText":"VPN down","Description":"VPN disconnects every hour","Priority":"Very High","ReporterEmail":"bob@example.com"}`)
	result, err := f.svc.Submit(context.Background(), domain.SourceSolman, raw)
	require.NoError(t, err)

	assert.Equal(t, IntakeTicketCreated, result.Status)
	assert.Equal(t, resolution.ReasonCategoryNotAllowed, result.Decision.Reason)
	require.Len(t, f.tickets.created, 1)

	ticket := f.tickets.created[0]
	assert.Equal(t, result.Reference, ticket.TicketNumber)
	assert.Equal(t, "VPN down", ticket.Title)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, "fallback", ticket.ClassificationSource)
	require.NotNil(t, ticket.AssignedTeam)
	assert.Equal(t, "Network Team", *ticket.AssignedTeam)
	require.NotNil(t, ticket.SourceReference)
	assert.Equal(t, "SM-1", *ticket.SourceReference)
	assert.Len(t, ticket.Suggestions, 1)

	// external priority outranks the classification
	assert.Equal(t, domain.PriorityCritical, ticket.Priority)
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, created.Add(time.Hour), ticket.ResponseDue)
	assert.Equal(t, created.Add(4*time.Hour), ticket.ResolutionDue)

	assert.Equal(t, string(domain.PriorityCritical), f.classifier.userCtx["external_priority"])
	assert.Equal(t, []events.EventType{events.EventTicketCreated}, f.dispatcher.types())
}

func TestSubmit_LongBodyGetsCategoryTitle(t *testing.T) {
	f := newIntakeFixture(
		domain.Classification{Category: domain.CategoryPrinter, Priority: domain.PriorityLow, Confidence: 0.5},
		classifier.OutcomeFallback,
		nil,
	)

	body := strings.Repeat("printer jams again ", 10)
	raw := []byte(`{"message":"` + body + `","user_email":"a@example.com"}`)
	result, err := f.svc.Submit(context.Background(), domain.SourceChat, raw)
	require.NoError(t, err)

	require.NotNil(t, result.Ticket)
	assert.Equal(t, "Printer Issue", result.Ticket.Title)
	assert.Equal(t, resolution.ReasonCategoryNotAllowed, result.Decision.Reason)
	assert.Zero(t, result.EstimatedResolutionMinutes)
}

func TestSubmit_PersistenceFailure(t *testing.T) {
	f := newIntakeFixture(
		domain.Classification{Category: domain.CategoryVPN, Priority: domain.PriorityMedium, Confidence: 0.6},
		classifier.OutcomeModel,
		nil,
	)
	f.tickets.err = errors.New("connection refused")

	_, err := f.svc.Submit(context.Background(), domain.SourceWebForm, []byte(`{"description":"vpn broken"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Empty(t, f.dispatcher.types())
}

func TestSubmit_AutoResolveRecordFailure(t *testing.T) {
	f := newIntakeFixture(
		domain.Classification{Category: domain.CategoryPassword, Priority: domain.PriorityMedium, Confidence: 0.95},
		classifier.OutcomeModel,
		[]domain.RankedSolution{passwordReset(0.95)},
	)
	f.recorder.err = errors.New("insert failed")

	raw := []byte(`{"description":"forgot password","email":"jane@example.com"}`)
	_, err := f.svc.Submit(context.Background(), domain.SourceWebForm, raw)
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestSubmit_InvalidInput(t *testing.T) {
	f := newIntakeFixture(domain.Classification{}, classifier.OutcomeFallback, nil)

	_, err := f.svc.Submit(context.Background(), domain.SourceWebForm, []byte(`{"description":"   "}`))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, intake.ErrEmptyBody)

	_, err = f.svc.Submit(context.Background(), domain.Source("fax"), []byte(`{}`))
	assert.ErrorIs(t, err, intake.ErrUnknownSource)
}

func TestGetTicket_NormalizesNumber(t *testing.T) {
	f := newIntakeFixture(domain.Classification{Category: domain.CategoryOther, Priority: domain.PriorityLow}, classifier.OutcomeFallback, nil)
	result, err := f.svc.Submit(context.Background(), domain.SourceWebForm, []byte(`{"description":"something odd"}`))
	require.NoError(t, err)

	ticket, err := f.svc.GetTicket(context.Background(), "  "+strings.ToLower(result.Reference)+" ")
	require.NoError(t, err)
	assert.Equal(t, result.Reference, ticket.TicketNumber)
}
