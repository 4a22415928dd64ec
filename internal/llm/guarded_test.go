package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedCompleter struct {
	calls   atomic.Int32
	replies []error
	out     string
	delay   time.Duration
	// slow limits delay to the first n calls; zero delays every call.
	slow int
}

func (s *scriptedCompleter) Name() string { return "scripted" }

func (s *scriptedCompleter) Complete(ctx context.Context, _, _ string) (string, error) {
	n := int(s.calls.Add(1)) - 1
	if s.delay > 0 && (s.slow == 0 || n < s.slow) {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if n < len(s.replies) && s.replies[n] != nil {
		return "", s.replies[n]
	}
	return s.out, nil
}

func TestGuarded_RetriesOnce(t *testing.T) {
	inner := &scriptedCompleter{replies: []error{errors.New("boom")}, out: "ok"}
	g := NewGuarded(inner, GuardOptions{Timeout: time.Second, Retries: 1, Backoff: time.Millisecond}, nil)

	out, err := g.Complete(context.Background(), "sys", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestGuarded_TimeoutCountsAsFailure(t *testing.T) {
	inner := &scriptedCompleter{delay: 200 * time.Millisecond, out: "late"}
	breaker := NewCircuitBreaker(1, time.Minute)
	g := NewGuarded(inner, GuardOptions{Timeout: 10 * time.Millisecond, Breaker: breaker}, nil)

	_, err := g.Complete(context.Background(), "sys", "prompt")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, CircuitOpen, breaker.State())

	_, err = g.Complete(context.Background(), "sys", "prompt")
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestGuarded_NotConfiguredSkipsBreaker(t *testing.T) {
	breaker := NewCircuitBreaker(1, time.Minute)
	g := NewGuarded(noopCompleter{}, GuardOptions{Retries: 3, Breaker: breaker}, nil)

	_, err := g.Complete(context.Background(), "sys", "prompt")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, CircuitClosed, breaker.State())
}

func TestGuarded_RetryFitsCallerBudget(t *testing.T) {
	const (
		budget  = 400 * time.Millisecond
		backoff = 20 * time.Millisecond
	)
	inner := &scriptedCompleter{delay: 5 * time.Second, slow: 1, out: "ok"}
	g := NewGuarded(inner, GuardOptions{
		Timeout: AttemptTimeout(budget, 1, backoff),
		Retries: 1,
		Backoff: backoff,
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()

	out, err := g.Complete(ctx, "sys", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestAttemptTimeout(t *testing.T) {
	assert.Equal(t, 4900*time.Millisecond, AttemptTimeout(10*time.Second, 1, 200*time.Millisecond))
	assert.Equal(t, 10*time.Second, AttemptTimeout(10*time.Second, 0, 200*time.Millisecond))
	assert.Equal(t, 50*time.Millisecond, AttemptTimeout(100*time.Millisecond, 1, time.Second))
}
