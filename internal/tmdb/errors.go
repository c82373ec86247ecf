package tmdb

import (
	"fmt"
	"time"
)

// NotFoundError is returned when upstream has no title for the requested id.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tmdb: title %d not found upstream", e.ID)
}

// RateLimitedError is returned on HTTP 429. RetryAfter is zero when the
// upstream did not send a hint.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("tmdb: rate limited, retry after %s", e.RetryAfter)
	}
	return "tmdb: rate limited"
}

// TransientError covers network failures and upstream 5xx responses.
// Callers may retry.
type TransientError struct {
	Status int
	Err    error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tmdb: transient failure: %v", e.Err)
	}
	return fmt.Sprintf("tmdb: upstream returned %d", e.Status)
}

func (e *TransientError) Unwrap() error { return e.Err }

// FatalError covers malformed responses and unexpected 4xx statuses.
// Retrying will not help.
type FatalError struct {
	Status int
	Err    error
}

func (e *FatalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tmdb: malformed response: %v", e.Err)
	}
	return fmt.Sprintf("tmdb: unexpected status %d", e.Status)
}

func (e *FatalError) Unwrap() error { return e.Err }

// ValidationError is returned by Normalize when an upstream title is too
// incomplete to catalog.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "tmdb: validation failed: " + e.Reason
}
