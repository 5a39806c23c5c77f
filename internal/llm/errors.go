package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrQuotaExhausted indicates the account's quota is used up for now.
type ErrQuotaExhausted struct {
	Err error
}

func (e *ErrQuotaExhausted) Error() string {
	return fmt.Sprintf("quota exhausted: %v", e.Err)
}

func (e *ErrQuotaExhausted) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the model returned content that does not
// conform to the requested schema.
type ErrInvalidResponse struct {
	Content string
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down, unreachable or
// not configured.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated.
type ErrMaxTokensExceeded struct {
	Content string
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// GenerationError is the single error shape surfaced by TextClient.
// Retryable is true only for rate limit and quota failures.
type GenerationError struct {
	Retryable bool
	Message   string
	Err       error
}

func (e *GenerationError) Error() string {
	return "generation failed: " + e.Message
}

func (e *GenerationError) Unwrap() error { return e.Err }

// retryableMarkers are substrings that identify rate limit or quota errors
// coming from vendors that do not expose a typed status.
var retryableMarkers = []string{
	"429", "rate limit", "rate_limit", "ratelimit", "too many requests",
	"quota", "resource_exhausted",
}

// IsRetryable reports whether err is a rate limit or quota failure.
// Context errors are never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Retryable
	}
	var rl *ErrRateLimit
	if errors.As(err, &rl) {
		return true
	}
	var qe *ErrQuotaExhausted
	if errors.As(err, &qe) {
		return true
	}
	var inv *ErrInvalidResponse
	if errors.As(err, &inv) {
		return false
	}
	var mt *ErrMaxTokensExceeded
	if errors.As(err, &mt) {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, m := range retryableMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// Classify wraps err as a *GenerationError. It returns nil for nil.
func Classify(err error) *GenerationError {
	if err == nil {
		return nil
	}
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge
	}
	return &GenerationError{
		Retryable: IsRetryable(err),
		Message:   err.Error(),
		Err:       err,
	}
}
