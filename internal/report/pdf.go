package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/aquascope/hydro/backend/internal/contracts"
)

// WritePDF renders a summary report: category totals followed by a
// record table. Layout is deliberately plain.
func WritePDF(w io.Writer, samples []*contracts.Sample) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Groundwater Quality Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Groundwater Quality Report")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Generated %s - %d samples",
		time.Now().UTC().Format("2006-01-02 15:04 UTC"), len(samples)))
	pdf.Ln(10)

	// Category totals
	counts := map[string]int{}
	for _, s := range samples {
		counts[s.Category]++
	}
	pdf.SetFont("Helvetica", "B", 10)
	for _, cat := range []string{"safe", "moderate", "unsafe"} {
		pdf.Cell(40, 6, fmt.Sprintf("%s: %d", cat, counts[cat]))
	}
	pdf.Ln(10)

	// Record table
	type col struct {
		title string
		width float64
	}
	cols := []col{
		{"Station", 28}, {"District", 32}, {"State", 28}, {"Sampled", 24},
		{"HPI", 22}, {"MI", 22}, {"CD", 22}, {"Category", 24},
	}

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, c := range cols {
			pdf.CellFormat(c.width, 7, c.title, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}
	header()

	pdf.SetFont("Helvetica", "", 9)
	for _, s := range samples {
		if pdf.GetY() > 185 {
			pdf.AddPage()
			header()
			pdf.SetFont("Helvetica", "", 9)
		}

		cells := []string{
			s.StationID,
			s.District,
			s.State,
			formatTime(s.SampledAt),
			fmt.Sprintf("%.3f", s.HPI),
			fmt.Sprintf("%.3f", s.MI),
			fmt.Sprintf("%.3f", s.CD),
			s.Category,
		}
		for i, c := range cols {
			pdf.CellFormat(c.width, 6, cells[i], "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
