package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// Common domain errors
	ErrNotFound          = errors.New("entity not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrJobTerminal       = errors.New("job already in a terminal state")
	ErrIllegalTransition = errors.New("illegal job state transition")
	ErrProbeFailed       = errors.New("probe process failed")
	ErrProbeTimeout      = errors.New("probe exceeded wall-clock ceiling")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrQueueFull         = errors.New("dispatch queue full")
)

// RateLimitedError carries the remaining cooldown so callers can tell the
// user when a resubmission will be admitted.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// RetryAfterSeconds rounds up so a caller that waits the advertised number
// of seconds is always admitted.
func (e *RateLimitedError) RetryAfterSeconds() int {
	secs := int(e.RetryAfter / time.Second)
	if e.RetryAfter%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}
