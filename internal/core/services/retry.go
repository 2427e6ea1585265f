package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// errEmptyResponse marks a provider reply without usable content.
var errEmptyResponse = errors.New("provider returned an empty response")

// retryPolicy bounds one logical provider operation: each attempt is paced
// by an optional token bucket and capped by a per-call timeout, and failed
// attempts are retried with exponential backoff.
type retryPolicy struct {
	attempts    int
	baseBackoff time.Duration
	maxBackoff  time.Duration
	timeout     time.Duration
	limiter     *rate.Limiter
	sleep       func(ctx context.Context, d time.Duration) error
}

// newRetryPolicy builds a policy from provider settings. attempts overrides
// the configured budget so completions and embeddings can differ.
func newRetryPolicy(p domain.ProviderSettings, attempts int) retryPolicy {
	if attempts <= 0 {
		attempts = 1
	}
	policy := retryPolicy{
		attempts:    attempts,
		baseBackoff: p.BaseBackoff,
		maxBackoff:  p.MaxBackoff,
		timeout:     p.Timeout,
		sleep:       sleepContext,
	}
	if p.RequestsPerSecond > 0 {
		policy.limiter = rate.NewLimiter(rate.Limit(p.RequestsPerSecond), 1)
	}
	return policy
}

// backoff returns the delay after the given failed attempt (1-based).
func (p retryPolicy) backoff(attempt int) time.Duration {
	if p.baseBackoff <= 0 {
		return 0
	}
	d := p.baseBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.maxBackoff > 0 && d >= p.maxBackoff {
			return p.maxBackoff
		}
	}
	if p.maxBackoff > 0 && d > p.maxBackoff {
		return p.maxBackoff
	}
	return d
}

// do runs fn until it succeeds or the budget is spent and returns the last
// error. Cancellation of ctx returns ctx.Err() at once without retrying.
// Errors wrapping domain.ErrProviderRejected are not retried.
func (p retryPolicy) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return err
			}
		}

		err := p.call(ctx, fn)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err

		if errors.Is(err, domain.ErrProviderRejected) || attempt == p.attempts {
			break
		}

		delay := p.backoff(attempt)
		logger.Warn("%s attempt %d/%d failed: %v (retrying in %s)", op, attempt, p.attempts, err, delay)
		if err := p.sleep(ctx, delay); err != nil {
			return err
		}
	}
	return lastErr
}

func (p retryPolicy) call(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.timeout <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return fn(callCtx)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
