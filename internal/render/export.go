package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/noah-isme/timetable-console/internal/dto"
	"github.com/noah-isme/timetable-console/pkg/export"
	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
)

// Output formats understood by Encode.
const (
	FormatText = "text"
	FormatHTML = "html"
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

const (
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json"
	contentTypeCSV  = "text/csv"
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var contentTypes = map[string]string{
	"txt":  contentTypeText,
	"html": contentTypeHTML,
	"json": contentTypeJSON,
	"csv":  contentTypeCSV,
	"pdf":  contentTypePDF,
	"xlsx": contentTypeXLSX,
}

const (
	exportTitle   = "Generated Timetables"
	cellSeparator = "\n"
	timeHeader    = "Time"
)

// Document is an encoded result set ready to be written or served.
type Document struct {
	Format      string
	ContentType string
	Extension   string
	Body        []byte
}

// Formats lists every supported output format.
func Formats() []string {
	return []string{FormatText, FormatHTML, FormatJSON, FormatCSV, FormatPDF, FormatXLSX}
}

// ExportFormats lists the file export formats offered by the dashboard.
func ExportFormats() []string {
	return []string{FormatCSV, FormatPDF, FormatXLSX}
}

// Sheets turns every (option, batch) grid into one titled table, in order.
func Sheets(view dto.ResultsView) []export.Sheet {
	sheets := make([]export.Sheet, 0)
	for _, option := range view.Options {
		for _, grid := range option.Grids {
			sheets = append(sheets, export.Sheet{Title: GridTitle(option.Option, grid.Batch), Data: gridDataset(grid)})
		}
	}
	return sheets
}

func gridDataset(grid dto.GridView) export.Dataset {
	headers := append([]string{timeHeader}, grid.Days...)
	rows := make([]map[string]string, 0, len(grid.Rows)+len(grid.Unplaced))
	for _, row := range grid.Rows {
		record := map[string]string{timeHeader: row.Timeslot}
		for _, cell := range row.Cells {
			record[cell.Day] = CellText(cell, cellSeparator)
		}
		rows = append(rows, record)
	}
	for _, u := range grid.Unplaced {
		rows = append(rows, map[string]string{timeHeader: fmt.Sprintf("unplaced: %s %s", u.Day, u.Timeslot), headers[1]: EntryText(u.Entry)})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

// Encode renders a generation view in the requested format. File formats
// need at least one grid.
func Encode(format string, view dto.GenerationView) (Document, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatText
	}
	if !supported(format) {
		return Document{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q (want one of %s)", format, strings.Join(Formats(), ", ")))
	}
	var results dto.ResultsView
	if view.Results != nil {
		results = *view.Results
	}

	switch format {
	case FormatText:
		buf := &bytes.Buffer{}
		NewText(buf).Generation(view)
		return Document{Format: FormatText, ContentType: contentTypeText, Extension: "txt", Body: buf.Bytes()}, nil
	case FormatHTML:
		body, err := ResultsDocument(view)
		if err != nil {
			return Document{}, err
		}
		return Document{Format: format, ContentType: contentTypeHTML, Extension: "html", Body: body}, nil
	case FormatJSON:
		body, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return Document{}, fmt.Errorf("encode json: %w", err)
		}
		return Document{Format: format, ContentType: contentTypeJSON, Extension: "json", Body: body}, nil
	}

	sheets := Sheets(results)
	if len(sheets) == 0 {
		return Document{}, appErrors.Clone(appErrors.ErrNotFound, "no timetable grids to export")
	}
	switch format {
	case FormatCSV:
		body, err := export.NewCSVExporter().RenderSheets(sheets)
		if err != nil {
			return Document{}, err
		}
		return Document{Format: format, ContentType: contentTypeCSV, Extension: "csv", Body: body}, nil
	case FormatPDF:
		body, err := export.NewPDFExporter().RenderSheets(exportTitle, sheets)
		if err != nil {
			return Document{}, err
		}
		return Document{Format: format, ContentType: contentTypePDF, Extension: "pdf", Body: body}, nil
	default:
		body, err := export.NewXLSXExporter().RenderSheets(sheets)
		if err != nil {
			return Document{}, err
		}
		return Document{Format: format, ContentType: contentTypeXLSX, Extension: "xlsx", Body: body}, nil
	}
}

// ContentTypeOf returns the content type of a saved export by its extension.
func ContentTypeOf(name string) string {
	if ct, ok := contentTypes[strings.TrimPrefix(path.Ext(name), ".")]; ok {
		return ct
	}
	return "application/octet-stream"
}

func supported(format string) bool {
	for _, f := range Formats() {
		if f == format {
			return true
		}
	}
	return false
}
