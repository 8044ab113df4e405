package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"profile-scout/internal/domain"
	"profile-scout/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

// searchRequest is the expected JSON body for submitting a search.
type searchRequest struct {
	Usernames      []string `json:"usernames"`
	TimeoutSeconds int      `json:"timeout_seconds"`
	IncludeNSFW    bool     `json:"include_nsfw"`
	LocalDataOnly  bool     `json:"local_data_only"`
	ShowAllSites   bool     `json:"show_all_sites"`
}

type searchAcceptedResponse struct {
	JobID string `json:"job_id"`
}

// jobStatusResponse is the polling snapshot. The failure detail stays out of
// the API on purpose; clients only get the coarse reason.
type jobStatusResponse struct {
	JobID        string     `json:"job_id"`
	Status       string     `json:"status"`
	Usernames    []string   `json:"usernames"`
	SitesChecked int        `json:"sites_checked"`
	FoundSoFar   int        `json:"found_so_far"`
	Reason       string     `json:"reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

func (s *Server) submitHandler(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TimeoutSeconds == 0 {
		req.TimeoutSeconds = model.DefaultTimeoutSeconds
	}

	opts := model.SearchOptions{
		TimeoutSeconds: req.TimeoutSeconds,
		IncludeNSFW:    req.IncludeNSFW,
		LocalDataOnly:  req.LocalDataOnly,
		ShowAllSites:   req.ShowAllSites,
	}

	jobID, err := s.searchUC.Submit(r.Context(), ownerFrom(r), req.Usernames, opts)
	if err != nil {
		var rle *domain.RateLimitedError
		switch {
		case errors.As(err, &rle):
			w.Header().Set("Retry-After", strconv.Itoa(rle.RetryAfterSeconds()))
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":               "submission rate limited",
				"retry_after_seconds": rle.RetryAfterSeconds(),
			})
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid search request")
		case errors.Is(err, domain.ErrQueueFull):
			writeError(w, http.StatusServiceUnavailable, "search queue is full")
		default:
			s.log.Error().Err(err).Msg("search submission failed")
			writeError(w, http.StatusInternalServerError, "failed to submit search")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, searchAcceptedResponse{JobID: jobID})
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := s.searchUC.Status(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown job")
			return
		}
		s.log.Error().Err(err).Str("job_id", jobID).Msg("status lookup failed")
		writeError(w, http.StatusInternalServerError, "failed to read job status")
		return
	}

	writeJSON(w, http.StatusOK, statusResponse(job))
}

func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	format := chi.URLParam(r, "format")

	// A job the registry still tracks as live has no result yet.
	if job, err := s.searchUC.Status(r.Context(), jobID); err == nil && !job.Terminal() {
		writeError(w, http.StatusConflict, "search has not completed yet")
		return
	}

	blob, err := s.exportUC.Export(r.Context(), ownerFrom(r), jobID, format)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnsupportedFormat):
			writeError(w, http.StatusBadRequest, "unsupported export format")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "no result for this job")
		default:
			s.log.Error().Err(err).Str("job_id", jobID).Str("format", format).Msg("export failed")
			writeError(w, http.StatusInternalServerError, "failed to export result")
		}
		return
	}

	w.Header().Set("Content-Type", blob.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", blob.FileName))
	w.WriteHeader(http.StatusOK)
	w.Write(blob.Data)
}

func (s *Server) historyListHandler(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.historyUC.List(r.Context(), ownerFrom(r))
	if err != nil {
		s.log.Error().Err(err).Msg("history listing failed")
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Data []model.ResultSummary `json:"data"`
	}{Data: summaries})
}

func (s *Server) historyGetHandler(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	result, err := s.historyUC.Get(r.Context(), ownerFrom(r), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown history record")
			return
		}
		s.log.Error().Err(err).Str("job_id", jobID).Msg("history lookup failed")
		writeError(w, http.StatusInternalServerError, "failed to read history record")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) historyDeleteHandler(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	if err := s.historyUC.Delete(r.Context(), ownerFrom(r), jobID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown history record")
			return
		}
		s.log.Error().Err(err).Str("job_id", jobID).Msg("history delete failed")
		writeError(w, http.StatusInternalServerError, "failed to delete history record")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func statusResponse(job *model.Job) jobStatusResponse {
	resp := jobStatusResponse{
		JobID:        job.ID,
		Status:       string(job.Status),
		Usernames:    job.Usernames,
		SitesChecked: job.SitesChecked,
		FoundSoFar:   job.FoundSoFar,
		Reason:       string(job.Reason),
		CreatedAt:    job.CreatedAt,
	}
	if !job.StartedAt.IsZero() {
		t := job.StartedAt
		resp.StartedAt = &t
	}
	if !job.FinishedAt.IsZero() {
		t := job.FinishedAt
		resp.FinishedAt = &t
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
