package repository

import (
	"context"

	"profile-scout/internal/domain/model"
)

// JobRegistry is the single source of truth for job state. Implementations
// must hand out snapshots, never aliases into their stored copies, and must
// enforce the pending -> running -> completed|failed ordering.
type JobRegistry interface {
	Register(ctx context.Context, job *model.Job) error
	Get(ctx context.Context, jobID string) (*model.Job, error)

	// MarkRunning transitions a pending job to running.
	MarkRunning(ctx context.Context, jobID string) error
	// MarkCompleted and MarkFailed are terminal; a second terminal write
	// for the same job is an error.
	MarkCompleted(ctx context.Context, jobID string) error
	MarkFailed(ctx context.Context, jobID string, reason model.FailReason, detail string) error

	// UpdateProgress bumps the live counters of a running job. Calls against
	// a terminal job are ignored so a late probe record can never make an
	// observed snapshot move backwards.
	UpdateProgress(ctx context.Context, jobID string, sitesChecked, foundSoFar int) error

	// Remove unregisters a job that never left pending. It exists only so a
	// failed dispatch can roll back; removing a job in any other state is
	// an error.
	Remove(ctx context.Context, jobID string) error
}
