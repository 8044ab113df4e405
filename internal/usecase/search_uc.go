package usecase

import (
	"context"
	"errors"
	"sync"

	"profile-scout/internal/domain"
	"profile-scout/internal/domain/model"
	"profile-scout/internal/domain/ports/adapter"
	"profile-scout/internal/domain/ports/repository"
	"profile-scout/internal/infra/aggregate"
	"profile-scout/internal/infra/logging"
	"profile-scout/internal/infra/metrics"
	"profile-scout/internal/infra/worker"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ SearchUseCase = (*searchUC)(nil)

// SearchUseCase owns the job lifecycle: it accepts submissions, dispatches
// them asynchronously and commits the terminal transition when the probe
// comes back.
type SearchUseCase interface {
	// Submit validates and rate-limits a submission, registers a pending
	// job and returns its id without waiting for the probe. Errors are
	// domain.ErrInvalidInput, *domain.RateLimitedError or
	// domain.ErrQueueFull.
	Submit(ctx context.Context, owner string, usernames []string, opts model.SearchOptions) (string, error)
	// Status is a non-blocking snapshot read for progress polling.
	Status(ctx context.Context, jobID string) (*model.Job, error)
}

type searchUC struct {
	registry repository.JobRegistry
	history  repository.HistoryStore
	limiter  adapter.SubmissionLimiter
	prober   adapter.Prober
	agg      *aggregate.Aggregator
	pool     *worker.Pool
	log      *zerolog.Logger
}

func NewSearchUseCase(
	registry repository.JobRegistry,
	history repository.HistoryStore,
	limiter adapter.SubmissionLimiter,
	prober adapter.Prober,
	agg *aggregate.Aggregator,
	pool *worker.Pool,
	logger *zerolog.Logger,
) *searchUC {
	return &searchUC{
		registry: registry,
		history:  history,
		limiter:  limiter,
		prober:   prober,
		agg:      agg,
		pool:     pool,
		log:      logger,
	}
}

func (u *searchUC) Submit(ctx context.Context, owner string, usernames []string, opts model.SearchOptions) (string, error) {
	defer logging.TraceDuration(u.log, "SearchUC.Submit")()

	// Validation first: an invalid submission must not consume the owner's
	// cooldown window.
	job, err := model.NewJob(ulid.Make().String(), owner, usernames, opts)
	if err != nil {
		return "", err
	}

	allowed, retryAfter, err := u.limiter.Admit(ctx, job.Owner)
	if err != nil {
		return "", err
	}
	if !allowed {
		return "", &domain.RateLimitedError{RetryAfter: retryAfter}
	}

	if err := u.registry.Register(ctx, job); err != nil {
		return "", err
	}

	// Capture what the execution needs; the job snapshot above is ours.
	jobID, jobOwner := job.ID, job.Owner
	names := job.Usernames
	if err := u.pool.Submit(func(runCtx context.Context) error {
		u.execute(runCtx, jobID, jobOwner, names, opts)
		return nil
	}); err != nil {
		// Roll back so a rejected submission leaves no pending ghost.
		if rmErr := u.registry.Remove(ctx, jobID); rmErr != nil {
			u.log.Error().Err(rmErr).Str("job_id", jobID).Msg("failed to roll back undispatched job")
		}
		return "", err
	}

	u.log.Info().Str("job_id", jobID).Str("owner", jobOwner).Int("usernames", len(names)).
		Msg("search job accepted")
	return jobID, nil
}

// execute runs on a pool worker, never on the submitting caller.
func (u *searchUC) execute(ctx context.Context, jobID, owner string, usernames []string, opts model.SearchOptions) {
	log := u.log.With().Str("job_id", jobID).Logger()

	if err := u.registry.MarkRunning(ctx, jobID); err != nil {
		log.Error().Err(err).Msg("could not mark job running")
		return
	}
	metrics.JobStarted()
	defer metrics.JobFinished()

	var mu sync.Mutex
	sitesChecked, foundSoFar := 0, 0
	progress := func(rec adapter.ProbeRecord) {
		mu.Lock()
		sitesChecked++
		if rec.Found() {
			foundSoFar++
		}
		sc, f := sitesChecked, foundSoFar
		mu.Unlock()
		_ = u.registry.UpdateProgress(ctx, jobID, sc, f)
	}

	records, err := u.prober.Run(ctx, usernames, opts, progress)
	if err != nil {
		reason := model.FailReasonProcessError
		if errors.Is(err, domain.ErrProbeTimeout) {
			reason = model.FailReasonTimedOut
		}
		// Detail stays internal; status readers only see the reason.
		log.Error().Err(err).Str("reason", string(reason)).Msg("search job failed")
		if err := u.registry.MarkFailed(ctx, jobID, reason, err.Error()); err != nil {
			log.Error().Err(err).Msg("could not mark job failed")
		}
		metrics.IncJob(string(model.JobStatusFailed))
		return
	}

	result := u.agg.Aggregate(jobID, records, usernames)

	if err := u.history.Save(ctx, owner, result); err != nil {
		log.Error().Err(err).Msg("could not persist canonical result")
		if err := u.registry.MarkFailed(ctx, jobID, model.FailReasonProcessError, err.Error()); err != nil {
			log.Error().Err(err).Msg("could not mark job failed")
		}
		metrics.IncJob(string(model.JobStatusFailed))
		return
	}

	if err := u.registry.MarkCompleted(ctx, jobID); err != nil {
		log.Error().Err(err).Msg("could not mark job completed")
		return
	}
	metrics.IncJob(string(model.JobStatusCompleted))
	log.Info().Int("sites_checked", result.TotalSitesChecked).Int("found", len(result.FoundProfiles)).
		Msg("search job completed")
}

func (u *searchUC) Status(ctx context.Context, jobID string) (*model.Job, error) {
	defer logging.TraceDuration(u.log, "SearchUC.Status")()
	return u.registry.Get(ctx, jobID)
}
