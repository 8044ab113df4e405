package usecase

import (
	"context"

	"profile-scout/internal/domain/model"
	"profile-scout/internal/domain/ports/repository"
	"profile-scout/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ HistoryUseCase = (*historyUC)(nil)

// HistoryUseCase exposes stored results scoped to the requesting owner.
type HistoryUseCase interface {
	List(ctx context.Context, owner string) ([]model.ResultSummary, error)
	Get(ctx context.Context, owner, jobID string) (*model.CanonicalResult, error)
	Delete(ctx context.Context, owner, jobID string) error
}

type historyUC struct {
	store repository.HistoryStore
	log   *zerolog.Logger
}

func NewHistoryUseCase(store repository.HistoryStore, logger *zerolog.Logger) *historyUC {
	return &historyUC{store: store, log: logger}
}

func (u *historyUC) List(ctx context.Context, owner string) ([]model.ResultSummary, error) {
	defer logging.TraceDuration(u.log, "HistoryUC.List")()
	return u.store.List(ctx, owner)
}

func (u *historyUC) Get(ctx context.Context, owner, jobID string) (*model.CanonicalResult, error) {
	defer logging.TraceDuration(u.log, "HistoryUC.Get")()
	return u.store.Get(ctx, owner, jobID)
}

func (u *historyUC) Delete(ctx context.Context, owner, jobID string) error {
	defer logging.TraceDuration(u.log, "HistoryUC.Delete")()
	if err := u.store.Delete(ctx, owner, jobID); err != nil {
		return err
	}
	u.log.Info().Str("owner", owner).Str("job_id", jobID).Msg("search history record deleted")
	return nil
}
