package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/intake-engine/internal/domain"
	"github.com/spec-kit/intake-engine/internal/events"
	"github.com/spec-kit/intake-engine/internal/learning"
)

// TicketResolver closes tickets once an outcome is reported.
type TicketResolver interface {
	MarkResolved(ctx context.Context, number, resolution string) error
}

// ResolutionDependencies bundles collaborators for the resolution service.
type ResolutionDependencies struct {
	Recorder   ResolutionRecorder
	Tickets    TicketResolver
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// ResolutionService records staff-reported resolution outcomes.
type ResolutionService struct {
	recorder   ResolutionRecorder
	tickets    TicketResolver
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ResolutionInput is a reported outcome.
type ResolutionInput struct {
	TicketID             string
	ArticleID            *string
	Category             domain.Category
	Subcategory          *string
	Method               domain.ResolutionMethod
	ResolvedSuccessfully bool
	ResolutionMinutes    int
	UserSatisfaction     *int
	SolutionUsed         string
	ActualSolution       *string
	OriginalQuery        string
	CloseTicket          bool
}

// NewResolutionService builds the service.
func NewResolutionService(deps ResolutionDependencies) *ResolutionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResolutionService{
		recorder:   deps.Recorder,
		tickets:    deps.Tickets,
		dispatcher: deps.Dispatcher,
		logger:     logger.Named("resolution_service"),
	}
}

// Record stores the outcome and triggers learning. Validation problems wrap
// ErrInvalidInput, a repeated successful report wraps ErrConflict and other
// storage failures wrap ErrPersistence.
func (s *ResolutionService) Record(ctx context.Context, input ResolutionInput, resolver string) (*domain.ResolutionRecord, error) {
	if input.UserSatisfaction != nil && (*input.UserSatisfaction < 1 || *input.UserSatisfaction > 5) {
		return nil, fmt.Errorf("%w: user_satisfaction must be between 1 and 5", ErrInvalidInput)
	}
	rec := domain.ResolutionRecord{
		TicketID:             strings.TrimSpace(input.TicketID),
		ArticleID:            input.ArticleID,
		Category:             input.Category,
		Subcategory:          input.Subcategory,
		Method:               input.Method,
		ResolvedSuccessfully: input.ResolvedSuccessfully,
		ResolutionMinutes:    input.ResolutionMinutes,
		UserSatisfaction:     input.UserSatisfaction,
		SolutionUsed:         input.SolutionUsed,
		ActualSolution:       input.ActualSolution,
		OriginalQuery:        input.OriginalQuery,
	}

	stored, err := s.recorder.Record(ctx, learning.Outcome{Record: rec, Resolver: resolver})
	if err != nil {
		if errors.Is(err, learning.ErrInvalidOutcome) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		if errors.Is(err, domain.ErrDuplicateResolution) {
			return nil, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	if input.CloseTicket && stored.ResolvedSuccessfully && s.tickets != nil {
		note := stored.SolutionUsed
		if stored.ActualSolution != nil && *stored.ActualSolution != "" {
			note = *stored.ActualSolution
		}
		if err := s.tickets.MarkResolved(ctx, stored.TicketID, note); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("ticket close failed", zap.String("ticket", stored.TicketID), zap.Error(err))
		}
	}

	if s.dispatcher != nil {
		event := events.New(events.EventResolutionRecorded, stored.TicketID, events.ResolutionRecordedPayload{
			RecordID:   stored.ID,
			TicketID:   stored.TicketID,
			Category:   stored.Category,
			Method:     stored.Method,
			Successful: stored.ResolvedSuccessfully,
		})
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("publish event failed", zap.Error(err))
		}
	}
	return &stored, nil
}
