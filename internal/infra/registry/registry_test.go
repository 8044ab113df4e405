//go:build !integration

package registry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"profile-scout/internal/domain"
	"profile-scout/internal/domain/model"
)

func newTestJob(t *testing.T, id string) *model.Job {
	t.Helper()
	j, err := model.NewJob(id, "alice", []string{"target"}, model.SearchOptions{TimeoutSeconds: 30})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	return j
}

func TestInMemoryRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("register and read back a snapshot", func(t *testing.T) {
		r := NewInMemory()
		job := newTestJob(t, "job-1")
		if err := r.Register(ctx, job); err != nil {
			t.Fatalf("Register: %v", err)
		}

		got, err := r.Get(ctx, "job-1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Status != model.JobStatusPending {
			t.Errorf("expected pending, got %s", got.Status)
		}

		// Mutating the snapshot must not leak into the registry.
		got.Status = model.JobStatusFailed
		got.Usernames[0] = "mutated"
		again, _ := r.Get(ctx, "job-1")
		if again.Status != model.JobStatusPending || again.Usernames[0] != "target" {
			t.Error("registry state was mutated through a snapshot")
		}
	})

	t.Run("duplicate registration is rejected", func(t *testing.T) {
		r := NewInMemory()
		job := newTestJob(t, "job-1")
		if err := r.Register(ctx, job); err != nil {
			t.Fatalf("Register: %v", err)
		}
		if err := r.Register(ctx, job); !errors.Is(err, domain.ErrIllegalTransition) {
			t.Errorf("expected ErrIllegalTransition, got %v", err)
		}
	})

	t.Run("lifecycle is totally ordered", func(t *testing.T) {
		r := NewInMemory()
		job := newTestJob(t, "job-1")
		_ = r.Register(ctx, job)

		// pending -> completed is illegal, must pass through running
		if err := r.MarkCompleted(ctx, "job-1"); !errors.Is(err, domain.ErrIllegalTransition) {
			t.Errorf("expected ErrIllegalTransition, got %v", err)
		}
		if err := r.MarkRunning(ctx, "job-1"); err != nil {
			t.Fatalf("MarkRunning: %v", err)
		}
		if err := r.MarkRunning(ctx, "job-1"); !errors.Is(err, domain.ErrIllegalTransition) {
			t.Errorf("second MarkRunning should fail, got %v", err)
		}
		if err := r.MarkCompleted(ctx, "job-1"); err != nil {
			t.Fatalf("MarkCompleted: %v", err)
		}

		got, _ := r.Get(ctx, "job-1")
		if got.Status != model.JobStatusCompleted {
			t.Errorf("expected completed, got %s", got.Status)
		}
		if got.StartedAt.IsZero() || got.FinishedAt.IsZero() {
			t.Error("expected started/finished timestamps to be set")
		}
	})

	t.Run("terminal state is immutable", func(t *testing.T) {
		r := NewInMemory()
		_ = r.Register(ctx, newTestJob(t, "job-1"))
		_ = r.MarkRunning(ctx, "job-1")
		_ = r.MarkFailed(ctx, "job-1", model.FailReasonTimedOut, "ceiling breached")

		if err := r.MarkCompleted(ctx, "job-1"); !errors.Is(err, domain.ErrJobTerminal) {
			t.Errorf("expected ErrJobTerminal, got %v", err)
		}
		got, _ := r.Get(ctx, "job-1")
		if got.Status != model.JobStatusFailed || got.Reason != model.FailReasonTimedOut {
			t.Errorf("terminal state changed: %s/%s", got.Status, got.Reason)
		}
	})

	t.Run("progress updates after terminal transition are ignored", func(t *testing.T) {
		r := NewInMemory()
		_ = r.Register(ctx, newTestJob(t, "job-1"))
		_ = r.MarkRunning(ctx, "job-1")
		_ = r.UpdateProgress(ctx, "job-1", 10, 3)
		_ = r.MarkCompleted(ctx, "job-1")
		_ = r.UpdateProgress(ctx, "job-1", 99, 99)

		got, _ := r.Get(ctx, "job-1")
		if got.SitesChecked != 10 || got.FoundSoFar != 3 {
			t.Errorf("late progress mutated a terminal job: %d/%d", got.SitesChecked, got.FoundSoFar)
		}
	})

	t.Run("unknown job id", func(t *testing.T) {
		r := NewInMemory()
		if _, err := r.Get(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := r.MarkRunning(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("concurrent readers and writers", func(t *testing.T) {
		r := NewInMemory()
		_ = r.Register(ctx, newTestJob(t, "job-1"))
		_ = r.MarkRunning(ctx, "job-1")

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func(n int) {
				defer wg.Done()
				_ = r.UpdateProgress(ctx, "job-1", n, n/2)
			}(i)
			go func() {
				defer wg.Done()
				j, err := r.Get(ctx, "job-1")
				if err != nil || j.Status != model.JobStatusRunning {
					t.Errorf("unexpected read: %v", err)
				}
			}()
		}
		wg.Wait()
	})
}

func TestEvictTerminal(t *testing.T) {
	ctx := context.Background()
	r := NewInMemory()

	_ = r.Register(ctx, newTestJob(t, "done"))
	_ = r.MarkRunning(ctx, "done")
	_ = r.MarkCompleted(ctx, "done")

	_ = r.Register(ctx, newTestJob(t, "live"))
	_ = r.MarkRunning(ctx, "live")

	if n := r.EvictTerminal(time.Now().UTC().Add(-time.Hour)); n != 0 {
		t.Fatalf("fresh terminal job evicted too early, n=%d", n)
	}

	if n := r.EvictTerminal(time.Now().UTC().Add(time.Hour)); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if _, err := r.Get(ctx, "done"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("evicted job still readable: %v", err)
	}
	if _, err := r.Get(ctx, "live"); err != nil {
		t.Errorf("running job must survive eviction: %v", err)
	}
}
