package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Clock abstracts waiting so backoff can be driven from tests.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock waits on wall-clock time.
var SystemClock Clock = realClock{}

// RetryProvider is a decorator that retries rate limit and quota failures
// with exponential backoff. Any other error is returned at once.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	clock  Clock
}

// RetryOption customizes a RetryProvider.
type RetryOption func(*RetryProvider)

// WithClock replaces the clock used for backoff waits.
func WithClock(c Clock) RetryOption {
	return func(r *RetryProvider) { r.clock = c }
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig, opts ...RetryOption) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}
	r := &RetryProvider{inner: p, config: cfg, clock: SystemClock}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var lastErr error

	for attempt := range r.config.MaxAttempts {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return nil, err
		}

		// No wait after the final attempt.
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		wait := r.backoff(attempt, err)
		slog.WarnContext(ctx, "llm request rate limited, retrying",
			"attempt", attempt+1,
			"max_attempts", r.config.MaxAttempts,
			"wait", wait,
			"error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-r.clock.After(wait):
		}
	}

	return nil, lastErr
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// backoff returns InitialWait * Multiplier^attempt, capped at MaxWait when
// MaxWait is set. A longer server-provided RetryAfter may stretch the wait
// up to MaxWait but never past it.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	wait := r.config.InitialWait
	for range attempt {
		wait = time.Duration(float64(wait) * r.config.Multiplier)
	}
	if r.config.MaxWait > 0 && wait > r.config.MaxWait {
		wait = r.config.MaxWait
	}

	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > wait {
		wait = min(rl.RetryAfter, max(r.config.MaxWait, wait))
	}
	return wait
}
