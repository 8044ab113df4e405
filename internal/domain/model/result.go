package model

import "time"

// FoundProfile is one (username, site) pair the probe confirmed.
type FoundProfile struct {
	Username string `json:"username"`
	Site     string `json:"site"`
	URL      string `json:"url"`
}

// NotFoundProfile is one (username, site) pair the probe ruled out.
type NotFoundProfile struct {
	Username string `json:"username"`
	Site     string `json:"site"`
}

// CanonicalResult is the normalized outcome document for a completed job.
// It is created once by the aggregator and read-only afterwards; every
// probed (username, site) pair appears in exactly one of the two lists.
type CanonicalResult struct {
	JobID             string            `json:"job_id"`
	Usernames         []string          `json:"usernames"`
	FoundProfiles     []FoundProfile    `json:"found_profiles"`
	NotFoundProfiles  []NotFoundProfile `json:"not_found_profiles"`
	TotalSitesChecked int               `json:"total_sites_checked"`
	SearchedAt        time.Time         `json:"searched_at"`
}

// ResultSummary is the listing view of a stored result, enough for a
// history page without loading the full document.
type ResultSummary struct {
	JobID             string    `json:"job_id"`
	Usernames         []string  `json:"usernames"`
	ProfilesFound     int       `json:"profiles_found"`
	ProfilesNotFound  int       `json:"profiles_not_found"`
	TotalSitesChecked int       `json:"total_sites_checked"`
	SearchedAt        time.Time `json:"searched_at"`
}

func (r *CanonicalResult) Summary() ResultSummary {
	return ResultSummary{
		JobID:             r.JobID,
		Usernames:         r.Usernames,
		ProfilesFound:     len(r.FoundProfiles),
		ProfilesNotFound:  len(r.NotFoundProfiles),
		TotalSitesChecked: r.TotalSitesChecked,
		SearchedAt:        r.SearchedAt,
	}
}
