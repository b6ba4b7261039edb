// Package render draws report tables into PDF documents suitable for
// sending back through the chat transport.
package render

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	"github.com/fortunamfo/branchbot/internal/domain"
)

// Column widths in mm for the five schedule columns; the first column is
// narrow (labels), the rest share the A4 body evenly.
var colWidths = []float64{30, 38, 38, 38, 38}

const rowHeight = 7.0

// PDF renders report tables with gofpdf. Safe for concurrent use: every
// Render call builds its own document.
type PDF struct{}

// NewPDF creates the renderer.
func NewPDF() *PDF {
	return &PDF{}
}

// Render draws the table into a single-column PDF: bold title, shaded
// header, zebra body rows, highlighted payment column and totals row.
// Returns the document bytes and a unique filename.
func (p *PDF) Render(table *domain.ReportTable) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 10, table.Title, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// Header row
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(204, 238, 255)
	for i, h := range table.Header {
		pdf.CellFormat(colWidths[i], rowHeight, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	// Body rows, zebra-striped; the payment column is emphasized the
	// way the branch's printed schedules are.
	for rowIdx, row := range table.Body {
		if len(row) != len(colWidths) {
			return nil, "", fmt.Errorf("render: row %d has %d cells, want %d", rowIdx, len(row), len(colWidths))
		}
		for i, cell := range row {
			fill := false
			switch {
			case i == 3:
				pdf.SetFont("Helvetica", "B", 8)
				pdf.SetFillColor(230, 230, 230)
				fill = true
			case rowIdx%2 == 0:
				pdf.SetFont("Helvetica", "", 8)
				pdf.SetFillColor(249, 249, 249)
				fill = true
			default:
				pdf.SetFont("Helvetica", "", 8)
			}
			pdf.CellFormat(colWidths[i], rowHeight, cell, "1", 0, "C", fill, 0, "")
		}
		pdf.Ln(-1)
	}

	// Totals row
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(179, 230, 255)
	for i, cell := range table.Totals {
		pdf.CellFormat(colWidths[i], rowHeight, cell, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), uuid.NewString() + ".pdf", nil
}

// RenderRates draws a bank-rates board as a compact three-column table.
func (p *PDF) RenderRates(board *domain.RateBoard, title string) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(200, 0, 0)
	pdf.CellFormat(0, 6, "Service is provided in national currency (soum) only.", "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)

	widths := []float64{60, 60, 60}
	headers := []string{"Bank", "Buy (soum)", "Sell (soum)"}
	pdf.SetFillColor(169, 208, 245)
	for i, h := range headers {
		pdf.CellFormat(widths[i], rowHeight, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, r := range board.Rates {
		pdf.CellFormat(widths[0], rowHeight, r.Bank, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], rowHeight, groupDigits(r.Buy), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], rowHeight, groupDigits(r.Sell), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("render rates: %w", err)
	}
	return buf.Bytes(), uuid.NewString() + ".pdf", nil
}

func groupDigits(n int) string {
	s := fmt.Sprintf("%d", n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + " " + s[i:]
	}
	return s
}
