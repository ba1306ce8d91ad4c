package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// XLSXExporter renders each sheet onto its own worksheet.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// RenderSheets writes a workbook with one worksheet per sheet, in order.
func (e *XLSXExporter) RenderSheets(sheets []Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one sheet")
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx header style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx cell style: %w", err)
	}

	used := make(map[string]int, len(sheets))
	for i, sheet := range sheets {
		if len(sheet.Data.Headers) == 0 {
			return nil, fmt.Errorf("xlsx requires at least one header")
		}
		name := SheetName(sheet.Title, i, used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", name, err)
		}

		for col, header := range sheet.Data.Headers {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(name, cell, header); err != nil {
				return nil, fmt.Errorf("write xlsx header: %w", err)
			}
		}
		last, err := excelize.CoordinatesToCellName(len(sheet.Data.Headers), 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
			return nil, fmt.Errorf("style xlsx header: %w", err)
		}

		for r, row := range sheet.Data.Rows {
			for col, value := range sheet.Data.record(row) {
				cell, err := excelize.CoordinatesToCellName(col+1, r+2)
				if err != nil {
					return nil, err
				}
				if err := f.SetCellValue(name, cell, value); err != nil {
					return nil, fmt.Errorf("write xlsx cell: %w", err)
				}
				if err := f.SetCellStyle(name, cell, cell, cellStyle); err != nil {
					return nil, fmt.Errorf("style xlsx cell: %w", err)
				}
			}
		}

		lastCol, err := excelize.ColumnNumberToName(len(sheet.Data.Headers))
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(name, "A", lastCol, 28); err != nil {
			return nil, fmt.Errorf("size xlsx columns: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// SheetName turns a title into a worksheet name excel accepts: no
// reserved characters, at most 31 characters, unique within the workbook.
func SheetName(title string, index int, used map[string]int) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = fmt.Sprintf("Sheet %d", index+1)
	}
	name = truncate(name, maxSheetName)

	key := strings.ToLower(name)
	if n, ok := used[key]; ok {
		suffix := fmt.Sprintf(" (%d)", n+1)
		used[key] = n + 1
		name = truncate(name, maxSheetName-len(suffix)) + suffix
		key = strings.ToLower(name)
	}
	used[key] = 1
	return name
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
