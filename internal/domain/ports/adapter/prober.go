package adapter

import (
	"context"

	"profile-scout/internal/domain/model"
)

// ProbeRecord is one (username, site) outcome as emitted by the external
// probe tool. Found carries the profile URL when the tool reported one.
type ProbeRecord struct {
	Username string `json:"username"`
	Site     string `json:"site"`
	Status   string `json:"status"` // "found" | "not_found"
	URL      string `json:"url,omitempty"`
}

func (r ProbeRecord) Found() bool { return r.Status == "found" }

// ProgressFunc receives each record as soon as the tool emits it.
type ProgressFunc func(rec ProbeRecord)

// Prober runs the external probing tool for one job. Run blocks until the
// tool exits or the wall-clock ceiling kills it, returning every record
// captured in emission order. Ceiling breach is domain.ErrProbeTimeout,
// any other abnormal exit is domain.ErrProbeFailed.
type Prober interface {
	Run(ctx context.Context, usernames []string, opts model.SearchOptions, progress ProgressFunc) ([]ProbeRecord, error)
}
