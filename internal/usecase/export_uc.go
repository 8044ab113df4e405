package usecase

import (
	"context"

	"profile-scout/internal/domain/ports/repository"
	"profile-scout/internal/infra/export"
	"profile-scout/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ExportUseCase = (*exportUC)(nil)

// ExportBlob is a rendered export ready to hand to a download handler.
type ExportBlob struct {
	Data        []byte
	ContentType string
	FileName    string
}

// ExportUseCase renders a stored result into a download format and keeps
// the artifact on disk so deleting the job can cascade to it.
type ExportUseCase interface {
	Export(ctx context.Context, owner, jobID, format string) (*ExportBlob, error)
}

type exportUC struct {
	store        repository.HistoryStore
	exporter     *export.Exporter
	artifactsDir string
	log          *zerolog.Logger
}

func NewExportUseCase(store repository.HistoryStore, exporter *export.Exporter, artifactsDir string, logger *zerolog.Logger) *exportUC {
	return &exportUC{
		store:        store,
		exporter:     exporter,
		artifactsDir: artifactsDir,
		log:          logger,
	}
}

func (u *exportUC) Export(ctx context.Context, owner, jobID, format string) (*ExportBlob, error) {
	defer logging.TraceDuration(u.log, "ExportUC.Export")()

	result, err := u.store.Get(ctx, owner, jobID)
	if err != nil {
		return nil, err
	}

	blob, err := u.exporter.Export(result, format)
	if err != nil {
		return nil, err
	}

	if _, err := export.WriteArtifact(u.artifactsDir, jobID, format, blob); err != nil {
		// The download still succeeds; only the cached artifact is lost.
		u.log.Warn().Err(err).Str("job_id", jobID).Str("format", format).
			Msg("failed to persist export artifact")
	}

	return &ExportBlob{
		Data:        blob,
		ContentType: export.ContentType(format),
		FileName:    export.FileName(jobID, format),
	}, nil
}
