package repository

import (
	"context"

	"profile-scout/internal/domain/model"
)

// HistoryStore persists canonical results per owner. Lookups for a job id
// that does not exist for that owner return domain.ErrNotFound regardless of
// whether the id belongs to someone else, so ownership is never disclosed.
type HistoryStore interface {
	Save(ctx context.Context, owner string, result *model.CanonicalResult) error
	List(ctx context.Context, owner string) ([]model.ResultSummary, error)
	Get(ctx context.Context, owner, jobID string) (*model.CanonicalResult, error)
	// Delete removes the stored result and any export artifacts derived
	// from that job.
	Delete(ctx context.Context, owner, jobID string) error
}
