package llm

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Guarded wraps a Completer with a per-attempt timeout, retries and a
// circuit breaker. Callers that share an overall deadline should size the
// timeout with AttemptTimeout, otherwise the retry never gets to run.
type Guarded struct {
	inner   Completer
	breaker *CircuitBreaker
	timeout time.Duration
	retries int
	backoff time.Duration
	logger  *zap.Logger
}

// GuardOptions configures a Guarded completer.
type GuardOptions struct {
	Timeout time.Duration
	Retries int
	Backoff time.Duration
	Breaker *CircuitBreaker
}

// AttemptTimeout splits budget across the first call and its retries so the
// last attempt still starts before a caller deadline of budget expires.
func AttemptTimeout(budget time.Duration, retries int, backoff time.Duration) time.Duration {
	if retries < 0 {
		retries = 0
	}
	spare := budget - time.Duration(retries)*backoff
	if spare <= 0 {
		spare = budget
	}
	return spare / time.Duration(retries+1)
}

// NewGuarded wraps inner.
func NewGuarded(inner Completer, opts GuardOptions, logger *zap.Logger) *Guarded {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 200 * time.Millisecond
	}
	if opts.Breaker == nil {
		opts.Breaker = NewCircuitBreaker(5, 30*time.Second)
	}
	return &Guarded{
		inner:   inner,
		breaker: opts.Breaker,
		timeout: opts.Timeout,
		retries: opts.Retries,
		backoff: opts.Backoff,
		logger:  logger.Named("llm.guard"),
	}
}

func (g *Guarded) Name() string { return g.inner.Name() }

// Complete calls the wrapped completer. ErrNotConfigured is neither
// retried nor counted against the breaker.
func (g *Guarded) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	if err := g.breaker.Allow(); err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt <= g.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(g.backoff):
			case <-ctx.Done():
				g.breaker.RecordFailure()
				return "", ctx.Err()
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		out, err := g.inner.Complete(callCtx, systemPrompt, prompt)
		cancel()
		if err == nil {
			g.breaker.RecordSuccess()
			return out, nil
		}
		if errors.Is(err, ErrNotConfigured) {
			return "", err
		}
		lastErr = err
		g.logger.Debug("completion attempt failed", zap.Int("attempt", attempt+1), zap.Error(err))
		if ctx.Err() != nil {
			break
		}
	}

	g.breaker.RecordFailure()
	return "", lastErr
}
