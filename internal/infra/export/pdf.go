package export

import (
	"bytes"
	"fmt"
	"strings"

	"profile-scout/internal/domain/model"

	"github.com/jung-kurt/gofpdf"
)

// exportPDF renders a formatted report: summary counts followed by the
// found/not-found tables.
func (e *Exporter) exportPDF(res *model.CanonicalResult) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Pin the embedded creation date and catalog ordering so re-exports of
	// the same result are content-identical.
	pdf.SetCreationDate(res.SearchedAt)
	pdf.SetCatalogSort(true)
	pdf.SetTitle("Search Results "+res.JobID, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Search Results - Profile Scout", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Timestamp: "+res.SearchedAt.Format("2006-01-02 15:04:05 UTC"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Job: "+res.JobID, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, "Usernames searched: "+strings.Join(res.Usernames, ", "), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Profiles found: %d", len(res.FoundProfiles)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Profiles not found: %d", len(res.NotFoundProfiles)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Total sites checked: %d", res.TotalSitesChecked), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	if len(res.FoundProfiles) > 0 {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, "Found profiles", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, p := range res.FoundProfiles {
			pdf.CellFormat(0, 6, fmt.Sprintf("%s @ %s", p.Username, p.Site), "", 1, "L", false, 0, "")
			pdf.SetTextColor(0, 0, 200)
			pdf.CellFormat(0, 6, "    "+p.URL, "", 1, "L", false, 0, p.URL)
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.Ln(4)
	}

	if len(res.NotFoundProfiles) > 0 {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, "Not found", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, p := range res.NotFoundProfiles {
			pdf.CellFormat(0, 6, fmt.Sprintf("%s @ %s", p.Username, p.Site), "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
