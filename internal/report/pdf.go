package report

import (
	"bytes"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/m-mizutani/goerr/v2"

	"pet-health-bot/internal/domain/apperr"
	"pet-health-bot/internal/domain/health"
	"pet-health-bot/internal/domain/pets"
)

const dateLayout = "2006-01-02"

// row is one rendered history entry.
type row struct {
	Heading string // "2024-01-10 — vaccination"
	Body    string // detail, plus the next-due line when present
}

// buildRows lays the events out chronologically, one entry per event.
// The input is already occurred-on ascending (store contract).
func buildRows(events []health.Event) []row {
	rows := make([]row, 0, len(events))
	for _, e := range events {
		r := row{
			Heading: e.OccurredOn.Format(dateLayout) + " — " + string(e.Kind),
			Body:    e.Detail,
		}
		if e.NextDue != nil {
			r.Body += "\nNext due: " + e.NextDue.Format(dateLayout)
		}
		rows = append(rows, r)
	}
	return rows
}

// render produces the final PDF. The configured UTF-8 font covers the
// full glyph set of the stored text; a missing font asset is a render
// failure rather than a silent fallback to a Latin-only font.
func render(pet pets.Pet, events []health.Event, fontDir string, now time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AliasNbPages("")

	family := "Helvetica"
	if fontDir != "" {
		family = "report"
		pdf.AddUTF8Font(family, "", filepath.Join(fontDir, "DejaVuSans.ttf"))
		pdf.AddUTF8Font(family, "B", filepath.Join(fontDir, "DejaVuSans-Bold.ttf"))
		if err := pdf.Error(); err != nil {
			return nil, goerr.Wrap(err, "failed to load report font",
				goerr.T(apperr.TagRender), goerr.V("font_dir", fontDir))
		}
	}

	// Repeated page header: pet identity on every page.
	pdf.SetHeaderFuncMode(func() {
		pdf.SetFont(family, "B", 16)
		pdf.SetTextColor(44, 62, 80)
		pdf.CellFormat(0, 9, "Health history: "+pet.Name, "", 1, "L", false, 0, "")

		pdf.SetFont(family, "", 10)
		pdf.SetTextColor(0, 0, 0)
		info := "Species: " + string(pet.Species)
		if pet.BirthDate != nil {
			info += "   Born: " + pet.BirthDate.Format(dateLayout)
		}
		info += "   Report date: " + now.Format(dateLayout)
		pdf.CellFormat(0, 6, info, "", 1, "L", false, 0, "")

		pdf.SetDrawColor(189, 195, 199)
		x, y := pdf.GetX(), pdf.GetY()+1
		pdf.Line(x, y, 190, y)
		pdf.Ln(4)
	}, true)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(family, "", 8)
		pdf.SetTextColor(127, 140, 141)
		pdf.CellFormat(0, 10, fmt.Sprintf("page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	rows := buildRows(events)
	if len(rows) == 0 {
		pdf.SetFont(family, "", 10)
		pdf.MultiCell(0, 5, "No records yet.", "", "L", false)
	}
	for _, r := range rows {
		pdf.SetFont(family, "B", 10)
		pdf.SetTextColor(52, 73, 94)
		pdf.CellFormat(0, 6, r.Heading, "", 1, "L", false, 0, "")

		pdf.SetFont(family, "", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(0, 5, r.Body, "", "L", false)
		pdf.Ln(2)
	}

	pdf.Ln(6)
	pdf.SetFont(family, "", 8)
	pdf.SetTextColor(127, 140, 141)
	pdf.CellFormat(0, 5, "Generated automatically.", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, goerr.Wrap(err, "failed to render report", goerr.T(apperr.TagRender), goerr.V("pet_id", pet.ID))
	}
	return buf.Bytes(), nil
}
