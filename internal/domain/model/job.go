package model

import (
	"regexp"
	"strings"
	"time"

	"profile-scout/internal/domain"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// FailReason distinguishes a hung probe from a crashed one.
type FailReason string

const (
	FailReasonNone         FailReason = ""
	FailReasonTimedOut     FailReason = "timed_out"
	FailReasonProcessError FailReason = "process_error"
)

const (
	MaxUsernames          = 50
	MinTimeoutSeconds     = 1
	MaxTimeoutSeconds     = 300
	DefaultTimeoutSeconds = 60

	// AnonymousOwner marks submissions that arrive without an identity.
	AnonymousOwner = "anonymous"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,64}$`)

// SearchOptions are the knobs forwarded to the probe tool.
type SearchOptions struct {
	TimeoutSeconds int  `json:"timeout_seconds" yaml:"timeout_seconds"`
	IncludeNSFW    bool `json:"include_nsfw" yaml:"include_nsfw"`
	LocalDataOnly  bool `json:"local_data_only" yaml:"local_data_only"`
	ShowAllSites   bool `json:"show_all_sites" yaml:"show_all_sites"`
}

func (o SearchOptions) Validate() error {
	if o.TimeoutSeconds < MinTimeoutSeconds || o.TimeoutSeconds > MaxTimeoutSeconds {
		return domain.ErrInvalidInput
	}
	return nil
}

// Job is one batch search request tracked through its lifecycle.
// The registry owns the stored copy; everything handed out is a snapshot.
type Job struct {
	ID        string
	Owner     string
	Usernames []string
	Options   SearchOptions
	Status    JobStatus
	Reason    FailReason
	LastError string

	// Progress counters, meaningful only once the job is running.
	SitesChecked int
	FoundSoFar   int

	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewJob validates and normalizes a submission. Usernames are trimmed and
// deduplicated case-preserving, first occurrence wins the ordering.
func NewJob(id, owner string, usernames []string, opts SearchOptions) (*Job, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	if owner == "" {
		owner = AnonymousOwner
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	normalized := NormalizeUsernames(usernames)
	if len(normalized) == 0 || len(normalized) > MaxUsernames {
		return nil, domain.ErrInvalidInput
	}
	for _, u := range normalized {
		if !usernameRe.MatchString(u) {
			return nil, domain.ErrInvalidInput
		}
	}

	return &Job{
		ID:        id,
		Owner:     owner,
		Usernames: normalized,
		Options:   opts,
		Status:    JobStatusPending,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// NormalizeUsernames trims whitespace, drops empties and keeps the first
// occurrence of each name (exact, case-preserving comparison).
func NormalizeUsernames(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, u := range in {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

func (j *Job) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
