// File: internal/infra/registry/registry.go
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"profile-scout/internal/domain"
	"profile-scout/internal/domain/model"
	"profile-scout/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.JobRegistry = (*InMemory)(nil)

// InMemory is the process-local job registry. It is the only shared mutable
// structure across concurrent job executions; every access takes the lock
// and every read hands out a copy, so no caller can observe or produce a
// torn job state.
type InMemory struct {
	mu   sync.RWMutex
	jobs map[string]*model.Job
}

func NewInMemory() *InMemory {
	return &InMemory{jobs: make(map[string]*model.Job)}
}

func (r *InMemory) Register(ctx context.Context, job *model.Job) error {
	if job == nil || job.ID == "" {
		return domain.ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.ID]; ok {
		return fmt.Errorf("job %s: %w", job.ID, domain.ErrIllegalTransition)
	}
	cp := snapshot(job)
	r.jobs[job.ID] = cp
	return nil
}

func (r *InMemory) Get(ctx context.Context, jobID string) (*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return snapshot(j), nil
}

func (r *InMemory) MarkRunning(ctx context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	if j.Status != model.JobStatusPending {
		return fmt.Errorf("job %s: %s -> running: %w", jobID, j.Status, domain.ErrIllegalTransition)
	}
	j.Status = model.JobStatusRunning
	j.StartedAt = time.Now().UTC()
	return nil
}

func (r *InMemory) MarkCompleted(ctx context.Context, jobID string) error {
	return r.finish(jobID, model.JobStatusCompleted, model.FailReasonNone, "")
}

func (r *InMemory) MarkFailed(ctx context.Context, jobID string, reason model.FailReason, detail string) error {
	if reason == model.FailReasonNone {
		reason = model.FailReasonProcessError
	}
	return r.finish(jobID, model.JobStatusFailed, reason, detail)
}

func (r *InMemory) finish(jobID string, status model.JobStatus, reason model.FailReason, detail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	if j.Terminal() {
		return fmt.Errorf("job %s: %w", jobID, domain.ErrJobTerminal)
	}
	if j.Status != model.JobStatusRunning {
		return fmt.Errorf("job %s: %s -> %s: %w", jobID, j.Status, status, domain.ErrIllegalTransition)
	}
	j.Status = status
	j.Reason = reason
	j.LastError = detail
	j.FinishedAt = time.Now().UTC()
	return nil
}

func (r *InMemory) UpdateProgress(ctx context.Context, jobID string, sitesChecked, foundSoFar int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	if j.Status != model.JobStatusRunning {
		// Late records after the terminal transition must not move a
		// committed snapshot.
		return nil
	}
	j.SitesChecked = sitesChecked
	j.FoundSoFar = foundSoFar
	return nil
}

func (r *InMemory) Remove(ctx context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	if j.Status != model.JobStatusPending {
		return fmt.Errorf("job %s: remove while %s: %w", jobID, j.Status, domain.ErrIllegalTransition)
	}
	delete(r.jobs, jobID)
	return nil
}

// EvictTerminal drops terminal jobs that finished before the cutoff and
// returns how many were removed. Live jobs are never touched.
func (r *InMemory) EvictTerminal(before time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, j := range r.jobs {
		if j.Terminal() && j.FinishedAt.Before(before) {
			delete(r.jobs, id)
			n++
		}
	}
	return n
}

func snapshot(j *model.Job) *model.Job {
	cp := *j
	cp.Usernames = append([]string(nil), j.Usernames...)
	return &cp
}
