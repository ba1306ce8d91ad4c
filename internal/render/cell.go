package render

import (
	"strconv"
	"strings"

	"github.com/noah-isme/timetable-console/internal/dto"
)

// EntryText formats one scheduled class.
func EntryText(e dto.Entry) string {
	return e.Subject + " / " + e.Faculty + " / " + e.Room
}

// CellText joins every class of a cell with sep, in input order.
func CellText(cell dto.Cell, sep string) string {
	parts := make([]string, 0, len(cell.Entries))
	for _, e := range cell.Entries {
		parts = append(parts, EntryText(e))
	}
	return strings.Join(parts, sep)
}

// GridTitle names a batch grid within an option.
func GridTitle(option int, batch string) string {
	return "Option " + strconv.Itoa(option) + " – Batch " + batch
}

// RowText renders a list row the way the manage page shows it.
func RowText(row dto.ListRow) string {
	if row.Detail == "" {
		return row.Title
	}
	return row.Title + " " + row.Detail
}
