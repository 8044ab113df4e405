package adapter

import (
	"context"
	"time"
)

// SubmissionLimiter gates job submissions per owner. Admit is an atomic
// test-and-set: when it returns true the owner's cooldown window has been
// claimed in the same operation, so two concurrent submissions can never
// both be admitted. When it returns false, retryAfter is the remaining
// cooldown.
type SubmissionLimiter interface {
	Admit(ctx context.Context, owner string) (allowed bool, retryAfter time.Duration, err error)
}
