package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/intake-engine/internal/domain"
	"github.com/spec-kit/intake-engine/internal/events"
)

func TestResolution_RecordClosesTicketAndPublishes(t *testing.T) {
	recorder := &fakeRecorder{}
	tickets := &fakeTickets{}
	dispatcher := &recordingDispatcher{}
	svc := NewResolutionService(ResolutionDependencies{Recorder: recorder, Tickets: tickets, Dispatcher: dispatcher})

	actual := "Reinstalled the VPN client"
	rec, err := svc.Record(context.Background(), ResolutionInput{
		TicketID:             " INC-ABCD1234 ",
		Category:             domain.CategoryVPN,
		Method:               domain.ResolutionManual,
		ResolvedSuccessfully: true,
		ResolutionMinutes:    20,
		SolutionUsed:         "VPN Connection Troubleshooting",
		ActualSolution:       &actual,
		CloseTicket:          true,
	}, "agent@example.com")
	require.NoError(t, err)

	assert.Equal(t, "INC-ABCD1234", rec.TicketID)
	assert.Equal(t, "agent@example.com", recorder.outcomes[0].Resolver)
	assert.Equal(t, actual, tickets.resolved["INC-ABCD1234"])
	assert.Equal(t, []events.EventType{events.EventResolutionRecorded}, dispatcher.types())
}

func TestResolution_UnsuccessfulOutcomeKeepsTicketOpen(t *testing.T) {
	tickets := &fakeTickets{}
	svc := NewResolutionService(ResolutionDependencies{Recorder: &fakeRecorder{}, Tickets: tickets})

	_, err := svc.Record(context.Background(), ResolutionInput{
		TicketID:    "INC-1",
		Category:    domain.CategoryVPN,
		CloseTicket: true,
	}, "")
	require.NoError(t, err)
	assert.Empty(t, tickets.resolved)
}

func TestResolution_SecondSuccessfulReportConflicts(t *testing.T) {
	recorder := &fakeRecorder{}
	tickets := &fakeTickets{}
	dispatcher := &recordingDispatcher{}
	svc := NewResolutionService(ResolutionDependencies{Recorder: recorder, Tickets: tickets, Dispatcher: dispatcher})

	input := ResolutionInput{
		TicketID:             "INC-1",
		Category:             domain.CategoryVPN,
		ResolvedSuccessfully: true,
		SolutionUsed:         "Reset VPN profile",
		CloseTicket:          true,
	}
	_, err := svc.Record(context.Background(), input, "")
	require.NoError(t, err)

	input.SolutionUsed = "Reinstalled client"
	_, err = svc.Record(context.Background(), input, "")
	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrPersistence)
	assert.Len(t, recorder.outcomes, 1)
	assert.Equal(t, "Reset VPN profile", tickets.resolved["INC-1"])
	assert.Len(t, dispatcher.types(), 1)

	// unsuccessful attempts are not restricted
	input.ResolvedSuccessfully = false
	_, err = svc.Record(context.Background(), input, "")
	require.NoError(t, err)
	assert.Len(t, recorder.outcomes, 2)
}

func TestResolution_Errors(t *testing.T) {
	svc := NewResolutionService(ResolutionDependencies{Recorder: &fakeRecorder{}})

	_, err := svc.Record(context.Background(), ResolutionInput{Category: domain.CategoryVPN}, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	score := 9
	_, err = svc.Record(context.Background(), ResolutionInput{TicketID: "INC-1", Category: domain.CategoryVPN, UserSatisfaction: &score}, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	failing := NewResolutionService(ResolutionDependencies{Recorder: &fakeRecorder{err: errors.New("db down")}})
	_, err = failing.Record(context.Background(), ResolutionInput{TicketID: "INC-1", Category: domain.CategoryVPN}, "")
	assert.ErrorIs(t, err, ErrPersistence)
}
