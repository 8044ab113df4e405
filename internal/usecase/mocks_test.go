// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"
	"time"

	"profile-scout/internal/domain"
	"profile-scout/internal/domain/model"
	"profile-scout/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}

// mockLimiter is a settable submission limiter for unit tests.
type mockLimiter struct {
	AdmitFunc func(ctx context.Context, owner string) (bool, time.Duration, error)
}

func (m *mockLimiter) Admit(ctx context.Context, owner string) (bool, time.Duration, error) {
	if m.AdmitFunc != nil {
		return m.AdmitFunc(ctx, owner)
	}
	return true, 0, nil
}

// mockProber records what it was asked to run and replies with canned
// records or a canned error.
type mockProber struct {
	mu        sync.Mutex
	calls     [][]string
	RunFunc   func(ctx context.Context, usernames []string, opts model.SearchOptions, progress adapter.ProgressFunc) ([]adapter.ProbeRecord, error)
	records   []adapter.ProbeRecord
	runErr    error
	emitDelay time.Duration
}

func (m *mockProber) Run(ctx context.Context, usernames []string, opts model.SearchOptions, progress adapter.ProgressFunc) ([]adapter.ProbeRecord, error) {
	m.mu.Lock()
	m.calls = append(m.calls, append([]string(nil), usernames...))
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx, usernames, opts, progress)
	}
	if m.emitDelay > 0 {
		time.Sleep(m.emitDelay)
	}
	if m.runErr != nil {
		return nil, m.runErr
	}
	for _, rec := range m.records {
		if progress != nil {
			progress(rec)
		}
	}
	return m.records, nil
}

func (m *mockProber) lastCall() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}

// memHistory is a small in-memory history store used by unit tests.
type memHistory struct {
	mu      sync.RWMutex
	store   map[string]map[string]*model.CanonicalResult // owner -> job id -> result
	saveErr error
}

func newMemHistory() *memHistory {
	return &memHistory{store: make(map[string]map[string]*model.CanonicalResult)}
}

func (m *memHistory) Save(ctx context.Context, owner string, result *model.CanonicalResult) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store[owner] == nil {
		m.store[owner] = make(map[string]*model.CanonicalResult)
	}
	cp := *result
	m.store[owner][result.JobID] = &cp
	return nil
}

func (m *memHistory) List(ctx context.Context, owner string) ([]model.ResultSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.ResultSummary, 0, len(m.store[owner]))
	for _, r := range m.store[owner] {
		out = append(out, r.Summary())
	}
	return out, nil
}

func (m *memHistory) Get(ctx context.Context, owner, jobID string) (*model.CanonicalResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.store[owner][jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memHistory) Delete(ctx context.Context, owner, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[owner][jobID]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store[owner], jobID)
	return nil
}
