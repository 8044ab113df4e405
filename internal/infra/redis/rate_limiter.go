package redis

import (
	"context"
	"fmt"
	"time"

	"profile-scout/internal/domain/ports/adapter"
	"profile-scout/internal/infra/metrics"
)

// Compile-time check
var _ adapter.SubmissionLimiter = (*CooldownLimiter)(nil)

// CooldownLimiter admits at most one submission per owner per cooldown
// window. SETNX with an expiry is the atomic test-and-set: the first caller
// to claim the key wins the window, so two concurrent submissions from the
// same owner can never both be admitted.
type CooldownLimiter struct {
	client   RedisClient
	cooldown time.Duration
}

func NewCooldownLimiter(client RedisClient, cooldown time.Duration) *CooldownLimiter {
	return &CooldownLimiter{client: client, cooldown: cooldown}
}

func cooldownKey(owner string) string {
	return fmt.Sprintf("submission_cooldown:%s", owner)
}

func (l *CooldownLimiter) Admit(ctx context.Context, owner string) (bool, time.Duration, error) {
	ok, err := l.client.SetNX(ctx, cooldownKey(owner), time.Now().UTC().Unix(), l.cooldown)
	if err != nil {
		return false, 0, fmt.Errorf("cooldown check: %w", err)
	}
	if ok {
		return true, 0, nil
	}

	retryAfter, err := l.client.TTL(ctx, cooldownKey(owner))
	if err != nil {
		return false, l.cooldown, fmt.Errorf("cooldown ttl: %w", err)
	}
	if retryAfter <= 0 {
		// Key expired between the two calls; the next attempt will pass.
		retryAfter = time.Second
	}
	metrics.IncRateLimited()
	return false, retryAfter, nil
}
