// File: internal/infra/export/exporter.go
package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"profile-scout/internal/domain"
	"profile-scout/internal/domain/model"
	"profile-scout/internal/infra/metrics"

	"github.com/google/uuid"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatTXT  = "txt"
	FormatPDF  = "pdf"
	FormatZIP  = "zip"
)

// Formats lists every supported export format key.
var Formats = []string{FormatJSON, FormatCSV, FormatTXT, FormatPDF, FormatZIP}

var contentTypes = map[string]string{
	FormatJSON: "application/json; charset=utf-8",
	FormatCSV:  "text/csv; charset=utf-8",
	FormatTXT:  "text/plain; charset=utf-8",
	FormatPDF:  "application/pdf",
	FormatZIP:  "application/zip",
}

// Exporter renders canonical results. Export is a pure function of its
// input: the same result and format always produce the same bytes (the PDF
// creation date is pinned to the result's search timestamp for this reason).
type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Export(res *model.CanonicalResult, format string) ([]byte, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	var (
		blob []byte
		err  error
	)
	switch format {
	case FormatJSON:
		blob, err = e.exportJSON(res)
	case FormatCSV:
		blob, err = e.exportCSV(res)
	case FormatTXT:
		blob, err = e.exportTXT(res)
	case FormatPDF:
		blob, err = e.exportPDF(res)
	case FormatZIP:
		blob, err = e.exportZIP(res)
	default:
		metrics.IncExport(format, "unsupported")
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
	if err != nil {
		metrics.IncExport(format, "error")
		return nil, err
	}
	metrics.IncExport(format, "ok")
	return blob, nil
}

// ContentType returns the MIME type for a supported format.
func ContentType(format string) string {
	if ct, ok := contentTypes[strings.ToLower(format)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// FileName is the canonical artifact name for a (job, format) pair.
func FileName(jobID, format string) string {
	return fmt.Sprintf("search_results_%s.%s", jobID, strings.ToLower(format))
}

func (e *Exporter) exportJSON(res *model.CanonicalResult) ([]byte, error) {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return append(b, '\n'), nil
}

func (e *Exporter) exportCSV(res *model.CanonicalResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"username", "site", "status", "url"}); err != nil {
		return nil, err
	}
	for _, p := range res.FoundProfiles {
		if err := w.Write([]string{p.Username, p.Site, "found", p.URL}); err != nil {
			return nil, err
		}
	}
	for _, p := range res.NotFoundProfiles {
		if err := w.Write([]string{p.Username, p.Site, "not_found", ""}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Exporter) exportTXT(res *model.CanonicalResult) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Search Results - %s\n", res.JobID)
	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "Timestamp: %s\n\n", res.SearchedAt.Format("2006-01-02 15:04:05 UTC"))

	fmt.Fprintf(&b, "Usernames searched: %s\n", strings.Join(res.Usernames, ", "))
	fmt.Fprintf(&b, "Profiles found: %d\n", len(res.FoundProfiles))
	fmt.Fprintf(&b, "Profiles not found: %d\n", len(res.NotFoundProfiles))
	fmt.Fprintf(&b, "Total sites checked: %d\n\n", res.TotalSitesChecked)

	if len(res.FoundProfiles) > 0 {
		b.WriteString("Found profiles:\n")
		b.WriteString(strings.Repeat("-", 30) + "\n")
		for _, p := range res.FoundProfiles {
			fmt.Fprintf(&b, "* %s @ %s\n  %s\n", p.Username, p.Site, p.URL)
		}
		b.WriteString("\n")
	}

	if len(res.NotFoundProfiles) > 0 {
		b.WriteString("Not found:\n")
		b.WriteString(strings.Repeat("-", 30) + "\n")
		for _, p := range res.NotFoundProfiles {
			fmt.Fprintf(&b, "* %s @ %s\n", p.Username, p.Site)
		}
	}

	return []byte(b.String()), nil
}

// exportZIP bundles one file per other format. Entry timestamps are pinned
// to the search timestamp so the bundle stays stable across re-exports.
func (e *Exporter) exportZIP(res *model.CanonicalResult) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, format := range []string{FormatJSON, FormatCSV, FormatTXT, FormatPDF} {
		blob, err := e.Export(res, format)
		if err != nil {
			return nil, fmt.Errorf("bundle %s: %w", format, err)
		}
		hdr := &zip.FileHeader{
			Name:     FileName(res.JobID, format),
			Method:   zip.Deflate,
			Modified: res.SearchedAt,
		}
		f, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, err
		}
		if _, err := f.Write(blob); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteArtifact publishes a blob under dir atomically: it lands in a temp
// file first and is renamed into place, so a reader never sees a partial
// export and a failed render leaves nothing behind.
func WriteArtifact(dir, jobID, format string, blob []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifacts dir: %w", err)
	}
	final := filepath.Join(dir, FileName(jobID, format))
	tmp := final + ".tmp-" + uuid.NewString()

	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("publish artifact: %w", err)
	}
	return final, nil
}
