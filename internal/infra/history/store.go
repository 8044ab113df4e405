// File: internal/infra/history/store.go
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"profile-scout/internal/domain"
	"profile-scout/internal/domain/model"
	"profile-scout/internal/domain/ports/repository"
	"profile-scout/internal/infra/export"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ repository.HistoryStore = (*FileStore)(nil)

// FileStore persists one JSON document per completed job under
// <historyDir>/<owner>/<job_id>.json. Owner names are sanitized before they
// touch the filesystem, and lookups never leave the owner's directory, so a
// foreign job id is indistinguishable from a missing one.
type FileStore struct {
	historyDir   string
	artifactsDir string
	maxPerOwner  int
	mu           sync.Mutex
	log          *zerolog.Logger
}

func NewFileStore(historyDir, artifactsDir string, maxPerOwner int, logger *zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(historyDir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	if maxPerOwner <= 0 {
		maxPerOwner = 50
	}
	return &FileStore{
		historyDir:   historyDir,
		artifactsDir: artifactsDir,
		maxPerOwner:  maxPerOwner,
		log:          logger,
	}, nil
}

// sanitizeOwner keeps alphanumerics, '-' and '_' so an owner name can never
// escape the history directory.
func sanitizeOwner(owner string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(owner) {
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-' || c == '_' {
			b.WriteRune(c)
		}
	}
	if b.Len() == 0 {
		return model.AnonymousOwner
	}
	return b.String()
}

func sanitizeJobID(jobID string) string {
	var b strings.Builder
	for _, c := range jobID {
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

func (s *FileStore) ownerDir(owner string) string {
	return filepath.Join(s.historyDir, sanitizeOwner(owner))
}

func (s *FileStore) recordPath(owner, jobID string) string {
	return filepath.Join(s.ownerDir(owner), sanitizeJobID(jobID)+".json")
}

func (s *FileStore) Save(ctx context.Context, owner string, result *model.CanonicalResult) error {
	if result == nil || result.JobID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.ownerDir(owner)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create owner dir: %w", err)
	}

	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	// Atomic publish: temp file in the same dir, then rename.
	final := s.recordPath(owner, result.JobID)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("publish record: %w", err)
	}

	s.pruneLocked(owner)
	return nil
}

// pruneLocked drops the oldest records beyond the per-owner cap, cascading
// to their export artifacts.
func (s *FileStore) pruneLocked(owner string) {
	summaries, err := s.loadSummaries(owner)
	if err != nil || len(summaries) <= s.maxPerOwner {
		return
	}
	for _, old := range summaries[s.maxPerOwner:] {
		if err := os.Remove(s.recordPath(owner, old.JobID)); err != nil {
			s.log.Warn().Err(err).Str("job_id", old.JobID).Msg("failed to prune history record")
			continue
		}
		s.removeArtifacts(old.JobID)
	}
}

func (s *FileStore) List(ctx context.Context, owner string) ([]model.ResultSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadSummaries(owner)
}

// loadSummaries returns the owner's records newest-first.
func (s *FileStore) loadSummaries(owner string) ([]model.ResultSummary, error) {
	entries, err := os.ReadDir(s.ownerDir(owner))
	if os.IsNotExist(err) {
		return []model.ResultSummary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history dir: %w", err)
	}

	summaries := make([]model.ResultSummary, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		res, err := s.readRecord(filepath.Join(s.ownerDir(owner), e.Name()))
		if err != nil {
			s.log.Warn().Err(err).Str("file", e.Name()).Msg("skipping unreadable history record")
			continue
		}
		summaries = append(summaries, res.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].SearchedAt.Equal(summaries[j].SearchedAt) {
			return summaries[i].JobID > summaries[j].JobID
		}
		return summaries[i].SearchedAt.After(summaries[j].SearchedAt)
	})
	return summaries, nil
}

func (s *FileStore) readRecord(path string) (*model.CanonicalResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var res model.CanonicalResult
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *FileStore) Get(ctx context.Context, owner, jobID string) (*model.CanonicalResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.readRecord(s.recordPath(owner, jobID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read record: %w", err)
	}
	return res, nil
}

func (s *FileStore) Delete(ctx context.Context, owner, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.recordPath(owner, jobID)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete record: %w", err)
	}
	s.removeArtifacts(jobID)
	return nil
}

// removeArtifacts deletes every export file derived from the job.
func (s *FileStore) removeArtifacts(jobID string) {
	if s.artifactsDir == "" {
		return
	}
	for _, format := range export.Formats {
		path := filepath.Join(s.artifactsDir, export.FileName(jobID, format))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", path).Msg("failed to remove export artifact")
		}
	}
}
