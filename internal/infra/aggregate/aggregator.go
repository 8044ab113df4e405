// File: internal/infra/aggregate/aggregator.go
package aggregate

import (
	"time"

	"profile-scout/internal/domain/model"
	"profile-scout/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

// Aggregator normalizes raw probe records into a canonical result document.
type Aggregator struct {
	log *zerolog.Logger
}

func New(logger *zerolog.Logger) *Aggregator {
	return &Aggregator{log: logger}
}

type pairKey struct {
	username string
	site     string
}

// Aggregate groups records into found/not-found lists preserving emission
// order. Duplicate (username, site) records keep the first occurrence,
// records for usernames outside the submitted set are dropped and logged,
// and a username with zero records is fine. The output depends only on the
// record sequence, never on map iteration order.
func (a *Aggregator) Aggregate(jobID string, records []adapter.ProbeRecord, usernames []string) *model.CanonicalResult {
	submitted := make(map[string]struct{}, len(usernames))
	for _, u := range usernames {
		submitted[u] = struct{}{}
	}

	res := &model.CanonicalResult{
		JobID:            jobID,
		Usernames:        append([]string(nil), usernames...),
		FoundProfiles:    []model.FoundProfile{},
		NotFoundProfiles: []model.NotFoundProfile{},
		SearchedAt:       time.Now().UTC(),
	}

	seen := make(map[pairKey]struct{}, len(records))
	for _, rec := range records {
		if _, ok := submitted[rec.Username]; !ok {
			a.log.Warn().Str("job_id", jobID).Str("username", rec.Username).Str("site", rec.Site).
				Msg("dropping record for username outside the submitted set")
			continue
		}
		key := pairKey{rec.Username, rec.Site}
		if _, dup := seen[key]; dup {
			// first occurrence wins
			continue
		}
		seen[key] = struct{}{}

		if rec.Found() {
			res.FoundProfiles = append(res.FoundProfiles, model.FoundProfile{
				Username: rec.Username,
				Site:     rec.Site,
				URL:      rec.URL,
			})
		} else {
			res.NotFoundProfiles = append(res.NotFoundProfiles, model.NotFoundProfile{
				Username: rec.Username,
				Site:     rec.Site,
			})
		}
	}

	res.TotalSitesChecked = len(res.FoundProfiles) + len(res.NotFoundProfiles)
	return res
}
