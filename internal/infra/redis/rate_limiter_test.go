//go:build !integration

package redis

import (
	"context"
	"sync"
	"testing"
	"time"
)

// memRedis is a small in-memory stand-in for the redis client used by unit
// tests. Keys expire against a controllable clock.
type memRedis struct {
	mu   sync.Mutex
	keys map[string]time.Time // key -> expiry
	now  time.Time
}

func newMemRedis() *memRedis {
	return &memRedis{keys: make(map[string]time.Time), now: time.Now()}
}

func (m *memRedis) advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

func (m *memRedis) Ping(ctx context.Context) error { return nil }

func (m *memRedis) Get(ctx context.Context, key string) (string, error) { return "", nil }

func (m *memRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if exp, ok := m.keys[key]; ok && exp.After(m.now) {
		return false, nil
	}
	m.keys[key] = m.now.Add(expiration)
	return true, nil
}

func (m *memRedis) TTL(ctx context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.keys[key]
	if !ok || !exp.After(m.now) {
		return -2, nil
	}
	return exp.Sub(m.now), nil
}

func (m *memRedis) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.keys, k)
	}
	return nil
}

func (m *memRedis) Close() error { return nil }

func TestCooldownLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("first submission is admitted", func(t *testing.T) {
		l := NewCooldownLimiter(newMemRedis(), 60*time.Second)
		allowed, _, err := l.Admit(ctx, "alice")
		if err != nil {
			t.Fatalf("Admit: %v", err)
		}
		if !allowed {
			t.Error("expected first submission to be admitted")
		}
	})

	t.Run("second submission within the window is denied with retry hint", func(t *testing.T) {
		mem := newMemRedis()
		l := NewCooldownLimiter(mem, 60*time.Second)
		_, _, _ = l.Admit(ctx, "alice")
		mem.advance(10 * time.Second)

		allowed, retryAfter, err := l.Admit(ctx, "alice")
		if err != nil {
			t.Fatalf("Admit: %v", err)
		}
		if allowed {
			t.Fatal("expected second submission to be denied")
		}
		if retryAfter != 50*time.Second {
			t.Errorf("expected retry after 50s (cooldown minus elapsed), got %s", retryAfter)
		}
	})

	t.Run("admitted again after the cooldown elapses", func(t *testing.T) {
		mem := newMemRedis()
		l := NewCooldownLimiter(mem, 60*time.Second)
		_, _, _ = l.Admit(ctx, "alice")
		mem.advance(61 * time.Second)

		allowed, _, err := l.Admit(ctx, "alice")
		if err != nil {
			t.Fatalf("Admit: %v", err)
		}
		if !allowed {
			t.Error("expected submission after cooldown to be admitted")
		}
	})

	t.Run("owners have independent windows", func(t *testing.T) {
		l := NewCooldownLimiter(newMemRedis(), 60*time.Second)
		_, _, _ = l.Admit(ctx, "alice")

		allowed, _, err := l.Admit(ctx, "bob")
		if err != nil {
			t.Fatalf("Admit: %v", err)
		}
		if !allowed {
			t.Error("bob must not share alice's cooldown")
		}
	})

	t.Run("concurrent submissions admit exactly one", func(t *testing.T) {
		l := NewCooldownLimiter(newMemRedis(), 60*time.Second)

		var wg sync.WaitGroup
		var mu sync.Mutex
		admitted := 0
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, _, err := l.Admit(ctx, "alice")
				if err != nil {
					t.Errorf("Admit: %v", err)
					return
				}
				if ok {
					mu.Lock()
					admitted++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		if admitted != 1 {
			t.Errorf("expected exactly one admission, got %d", admitted)
		}
	})
}
