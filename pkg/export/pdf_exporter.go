package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth   = 277.0
	lineHeight  = 5.0
	headerCellH = 8.0
	pageBottom  = 198.0
)

// PDFExporter renders datasets into landscape tabular PDFs.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and one table.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	return e.RenderSheets(title, []Sheet{{Data: data}})
}

// RenderSheets renders every sheet as its own captioned table. Cell values
// may span several lines; each row grows to its tallest cell.
func (e *PDFExporter) RenderSheets(title string, sheets []Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("pdf requires at least one sheet")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(title)), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	for i, sheet := range sheets {
		if len(sheet.Data.Headers) == 0 {
			return nil, fmt.Errorf("pdf requires at least one header")
		}
		if i > 0 {
			pdf.Ln(6)
		}
		if sheet.Title != "" {
			pdf.SetFont("Arial", "B", 11)
			pdf.CellFormat(0, 8, tr(sheet.Title), "", 1, "L", false, 0, "")
		}

		colWidth := pageWidth / float64(len(sheet.Data.Headers))
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, header := range sheet.Data.Headers {
			pdf.CellFormat(colWidth, headerCellH, tr(header), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 8)
		for _, row := range sheet.Data.Rows {
			record := sheet.Data.record(row)
			lines := 1
			for _, value := range record {
				if n := len(pdf.SplitLines([]byte(tr(value)), colWidth-2)); n > lines {
					lines = n
				}
			}
			height := float64(lines) * lineHeight
			if pdf.GetY()+height > pageBottom {
				pdf.AddPage()
			}
			x, y := pdf.GetXY()
			for col, value := range record {
				pdf.Rect(x+float64(col)*colWidth, y, colWidth, height, "D")
				pdf.SetXY(x+float64(col)*colWidth, y)
				pdf.MultiCell(colWidth, lineHeight, tr(value), "", "L", false)
			}
			pdf.SetXY(x, y+height)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
