package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/intake-engine/internal/classifier"
	"github.com/spec-kit/intake-engine/internal/domain"
	"github.com/spec-kit/intake-engine/internal/events"
	"github.com/spec-kit/intake-engine/internal/learning"
	"github.com/spec-kit/intake-engine/internal/observability"
	"github.com/spec-kit/intake-engine/internal/ranking"
	"github.com/spec-kit/intake-engine/internal/resolution"
	"github.com/spec-kit/intake-engine/internal/sla"
)

// Normalizer turns a raw payload into a canonical intake.
type Normalizer interface {
	Normalize(source domain.Source, raw []byte) (domain.TicketIntake, error)
}

// Classifier classifies request text and never fails.
type Classifier interface {
	Classify(ctx context.Context, text string, userCtx map[string]string) classifier.Result
}

// SolutionRanker ranks solutions for a classification.
type SolutionRanker interface {
	Rank(ctx context.Context, c domain.Classification, text string, rc ranking.RankContext) ranking.Outcome
}

// ActionExecutor runs automated actions.
type ActionExecutor interface {
	Execute(ctx context.Context, action domain.AutomatedAction, who resolution.Requester) resolution.ExecutionResult
}

// ResolutionRecorder appends resolution records.
type ResolutionRecorder interface {
	Record(ctx context.Context, outcome learning.Outcome) (domain.ResolutionRecord, error)
}

// TicketStore persists tickets.
type TicketStore interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
}

// IntakeStatus is the final disposition of a submitted intake.
type IntakeStatus string

const (
	IntakeResolved      IntakeStatus = "resolved"
	IntakeTicketCreated IntakeStatus = "ticket_created"
)

// IntakeResult carries everything the pipeline produced for one intake.
type IntakeResult struct {
	Status                     IntakeStatus
	Reference                  string
	Intake                     domain.TicketIntake
	Classification             domain.Classification
	ClassificationOutcome      classifier.Outcome
	Solutions                  []domain.RankedSolution
	Articles                   []domain.KnowledgeArticle
	Decision                   resolution.Decision
	Execution                  *resolution.ExecutionResult
	Ticket                     *domain.Ticket
	Resolution                 *domain.ResolutionRecord
	EstimatedResolutionMinutes int
	Degraded                   []string
}

// IntakeService runs the intake pipeline: normalize, classify, rank,
// decide, then resolve or create a ticket.
type IntakeService struct {
	normalizer Normalizer
	classifier Classifier
	ranker     SolutionRanker
	executor   ActionExecutor
	recorder   ResolutionRecorder
	tickets    TicketStore
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	policy     resolution.Policy
	logger     *zap.Logger
	now        func() time.Time
}

// IntakeDependencies bundles collaborators for the intake service.
type IntakeDependencies struct {
	Normalizer Normalizer
	Classifier Classifier
	Ranker     SolutionRanker
	Executor   ActionExecutor
	Recorder   ResolutionRecorder
	Tickets    TicketStore
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Policy     resolution.Policy
	Logger     *zap.Logger
}

// NewIntakeService constructs the service.
func NewIntakeService(deps IntakeDependencies) *IntakeService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntakeService{
		normalizer: deps.Normalizer,
		classifier: deps.Classifier,
		ranker:     deps.Ranker,
		executor:   deps.Executor,
		recorder:   deps.Recorder,
		tickets:    deps.Tickets,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		policy:     deps.Policy,
		logger:     logger.Named("intake_service"),
		now:        time.Now,
	}
}

// Submit processes one raw payload from source. Normalization errors wrap
// ErrInvalidInput; a failed final write wraps ErrPersistence. Every other
// stage degrades instead of failing.
func (s *IntakeService) Submit(ctx context.Context, source domain.Source, raw []byte) (*IntakeResult, error) {
	in, err := s.normalizer.Normalize(source, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	text := in.Text()
	classified := s.classifier.Classify(ctx, text, classifierContext(in))
	ranked := s.ranker.Rank(ctx, classified.Classification, text, ranking.ContextFromIntake(in))
	decision := resolution.Decide(s.policy, classified.Classification, ranked.Solutions)

	result := &IntakeResult{
		Reference:             generateTicketNumber(),
		Intake:                in,
		Classification:        classified.Classification,
		ClassificationOutcome: classified.Outcome,
		Solutions:             ranked.Solutions,
		Articles:              ranked.Articles,
		Decision:              decision,
		Degraded:              ranked.Degraded,
	}
	if len(ranked.Solutions) > 0 {
		result.EstimatedResolutionMinutes = ranked.Solutions[0].EstimatedMinutes
	}

	log := s.logger.With(
		zap.String("reference", result.Reference),
		zap.String("source", string(source)),
		zap.String("category", string(classified.Classification.Category)),
		zap.String("classification", string(classified.Outcome)),
	)
	if classified.FellBack() {
		log.Info("classification fell back", zap.NamedError("reason", classified.FallbackReason))
	}

	if decision.AutoResolve {
		resolved, err := s.autoResolve(ctx, result)
		if err != nil {
			return nil, err
		}
		if resolved {
			s.metrics.RecordIntake(string(source), string(classified.Outcome), string(IntakeResolved))
			log.Info("intake auto-resolved")
			return result, nil
		}
	}

	if err := s.createTicket(ctx, result); err != nil {
		return nil, err
	}
	s.metrics.RecordIntake(string(source), string(classified.Outcome), string(IntakeTicketCreated))
	log.Info("ticket created", zap.String("reason", decision.Reason))
	return result, nil
}

// autoResolve runs the top solution's action and records the resolution.
// It reports false when the action failed and a ticket should be raised.
func (s *IntakeService) autoResolve(ctx context.Context, result *IntakeResult) (bool, error) {
	top := result.Decision.Top
	in := result.Intake

	if action := result.Decision.Action; action != nil && s.executor != nil {
		exec := s.executor.Execute(ctx, *action, resolution.Requester{
			ID:    in.RequesterID,
			Email: in.RequesterEmail,
			Name:  in.RequesterName,
		})
		result.Execution = &exec
		if !exec.Succeeded() {
			s.logger.Warn("automated action failed, raising ticket",
				zap.String("action_type", exec.ActionType),
				zap.String("message", exec.Message))
			result.Decision.AutoResolve = false
			result.Decision.Reason = resolution.ReasonActionFailed
			return false, nil
		}
	}

	c := result.Classification
	rec := domain.ResolutionRecord{
		TicketID:             result.Reference,
		Category:             c.Category,
		Subcategory:          optionalString(c.Subcategory),
		Method:               domain.ResolutionMethod(top.Type),
		ResolvedSuccessfully: true,
		ResolutionMinutes:    top.EstimatedMinutes,
		SolutionUsed:         top.Title,
		OriginalQuery:        in.Text(),
	}
	if s.recorder != nil {
		stored, err := s.recorder.Record(ctx, learning.Outcome{Record: rec, Resolver: "automation"})
		if err != nil {
			return false, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		result.Resolution = &stored
	}

	result.Status = IntakeResolved
	payload := events.IntakeAutoResolvedPayload{
		Source:         in.Source,
		Category:       c.Category,
		RequesterEmail: in.RequesterEmail,
		Solution:       top.Title,
	}
	if result.Execution != nil {
		payload.ActionType = result.Execution.ActionType
		payload.ActionStatus = string(result.Execution.Status)
	}
	s.publish(ctx, events.New(events.EventIntakeAutoResolved, result.Reference, payload))
	return true, nil
}

func (s *IntakeService) createTicket(ctx context.Context, result *IntakeResult) error {
	in := result.Intake
	c := result.Classification
	priority := c.Priority
	if in.ExternalPriority != nil && in.ExternalPriority.Rank() > priority.Rank() {
		priority = *in.ExternalPriority
	}
	createdAt := s.now().UTC()
	responseDue, resolutionDue := sla.Deadlines(priority, createdAt)

	ticket := &domain.Ticket{
		TicketNumber:         result.Reference,
		Title:                ticketTitle(in, c.Category),
		Description:          in.Body,
		Source:               in.Source,
		SourceReference:      optionalString(in.SourceReference),
		RequesterID:          in.RequesterID,
		RequesterEmail:       in.RequesterEmail,
		RequesterName:        in.RequesterName,
		Location:             optionalString(in.Location),
		AssetTag:             optionalString(in.AssetTag),
		Category:             c.Category,
		Subcategory:          optionalString(c.Subcategory),
		Priority:             priority,
		Status:               domain.TicketStatusOpen,
		AssignedTeam:         optionalString(c.SuggestedAssignee),
		Classification:       c,
		ClassificationSource: string(result.ClassificationOutcome),
		Suggestions:          result.Solutions,
		Attachments:          in.Attachments,
		ResponseDue:          responseDue,
		ResolutionDue:        resolutionDue,
		CreatedAt:            createdAt,
		UpdatedAt:            createdAt,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	result.Status = IntakeTicketCreated
	result.Ticket = ticket
	s.publish(ctx, events.New(events.EventTicketCreated, ticket.TicketNumber, events.TicketCreatedPayload{
		TicketNumber:   ticket.TicketNumber,
		Source:         ticket.Source,
		Category:       ticket.Category,
		Priority:       ticket.Priority,
		AssignedTeam:   ticket.AssignedTeam,
		RequesterEmail: ticket.RequesterEmail,
		Title:          ticket.Title,
	}))
	return nil
}

// GetTicket looks up a ticket by its number.
func (s *IntakeService) GetTicket(ctx context.Context, number string) (*domain.Ticket, error) {
	return s.tickets.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
}

func (s *IntakeService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// classifierContext passes the requester context plus any external hints.
func classifierContext(in domain.TicketIntake) map[string]string {
	out := make(map[string]string, len(in.Context)+4)
	for k, v := range in.Context {
		out[k] = v
	}
	out["source"] = string(in.Source)
	if in.Location != "" {
		out["location"] = in.Location
	}
	if in.ExternalCategory != nil {
		out["external_category"] = string(*in.ExternalCategory)
	}
	if in.ExternalPriority != nil {
		out["external_priority"] = string(*in.ExternalPriority)
	}
	return out
}

const maxTitleRunes = 100

// ticketTitle keeps an explicit title; a title derived from a long body is
// replaced with "<Category> Issue".
func ticketTitle(in domain.TicketIntake, category domain.Category) string {
	body := []rune(in.Body)
	if len(body) > maxTitleRunes && in.Title == string(body[:maxTitleRunes]) {
		return fmt.Sprintf("%s Issue", category)
	}
	return in.Title
}

func generateTicketNumber() string {
	return "INC-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func optionalString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
