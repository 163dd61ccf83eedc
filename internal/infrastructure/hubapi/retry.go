package hubapi

import (
	"context"
	"errors"
	"net/http"
)

// RetryPolicy decides whether a failed hub request should be tried again and
// how many milliseconds to wait first. attempt counts completed tries,
// starting at zero.
type RetryPolicy interface {
	ShouldRetry(status int, err error, attempt int) (bool, int)
}

// backoffPolicy retries transient failures with exponential backoff.
type backoffPolicy struct {
	maxRetries  int
	baseDelayMs int
}

// DefaultRetryPolicy retries network errors, 429s, and 5xx responses up to
// three extra times, backing off 200ms, 400ms, 800ms. Model lookups are
// plain GETs, so repeating them is always safe.
func DefaultRetryPolicy() RetryPolicy {
	return &backoffPolicy{maxRetries: 3, baseDelayMs: 200}
}

// NoRetryPolicy makes every request single-shot.
func NoRetryPolicy() RetryPolicy {
	return &backoffPolicy{}
}

func (p *backoffPolicy) ShouldRetry(status int, err error, attempt int) (bool, int) {
	if attempt >= p.maxRetries {
		return false, 0
	}
	// A cancelled context will not recover, however long we wait.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false, 0
	}
	if err == nil && status != http.StatusTooManyRequests && status < 500 {
		return false, 0
	}
	return true, p.baseDelayMs << attempt
}
