//go:build !integration

package web

import (
	"context"
	"io"
	"net/http"

	"profile-scout/internal/domain/model"
	"profile-scout/internal/usecase"

	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// --- Mock use cases ---

type mockSearchUC struct {
	SubmitFunc func(ctx context.Context, owner string, usernames []string, opts model.SearchOptions) (string, error)
	StatusFunc func(ctx context.Context, jobID string) (*model.Job, error)
}

func (m *mockSearchUC) Submit(ctx context.Context, owner string, usernames []string, opts model.SearchOptions) (string, error) {
	return m.SubmitFunc(ctx, owner, usernames, opts)
}

func (m *mockSearchUC) Status(ctx context.Context, jobID string) (*model.Job, error) {
	return m.StatusFunc(ctx, jobID)
}

type mockHistoryUC struct {
	ListFunc   func(ctx context.Context, owner string) ([]model.ResultSummary, error)
	GetFunc    func(ctx context.Context, owner, jobID string) (*model.CanonicalResult, error)
	DeleteFunc func(ctx context.Context, owner, jobID string) error
}

func (m *mockHistoryUC) List(ctx context.Context, owner string) ([]model.ResultSummary, error) {
	return m.ListFunc(ctx, owner)
}

func (m *mockHistoryUC) Get(ctx context.Context, owner, jobID string) (*model.CanonicalResult, error) {
	return m.GetFunc(ctx, owner, jobID)
}

func (m *mockHistoryUC) Delete(ctx context.Context, owner, jobID string) error {
	return m.DeleteFunc(ctx, owner, jobID)
}

type mockExportUC struct {
	ExportFunc func(ctx context.Context, owner, jobID, format string) (*usecase.ExportBlob, error)
}

func (m *mockExportUC) Export(ctx context.Context, owner, jobID, format string) (*usecase.ExportBlob, error) {
	return m.ExportFunc(ctx, owner, jobID, format)
}

func newTestServer(search *mockSearchUC, history *mockHistoryUC, export *mockExportUC) http.Handler {
	if search == nil {
		search = &mockSearchUC{}
	}
	if history == nil {
		history = &mockHistoryUC{}
	}
	if export == nil {
		export = &mockExportUC{}
	}
	return NewServer(search, history, export, newTestLogger()).Router()
}
