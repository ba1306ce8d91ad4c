package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/noah-isme/timetable-console/internal/dto"
)

const divider = "\x00"

// Text writes view-models as plain terminal output.
type Text struct {
	w io.Writer
}

// NewText builds a text renderer over w.
func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

// List prints one resource list: its rows, or its placeholder.
func (t *Text) List(title string, view dto.ListView) {
	fmt.Fprintf(t.w, "%s\n", title)
	if len(view.Rows) == 0 {
		fmt.Fprintf(t.w, "  %s\n", view.Placeholder)
		return
	}
	for _, row := range view.Rows {
		fmt.Fprintf(t.w, "  [%s] %s\n", row.ID, RowText(row))
		if row.Summary != "" {
			fmt.Fprintf(t.w, "      %s\n", row.Summary)
		}
	}
}

// Selection prints the options of a selection control.
func (t *Text) Selection(view dto.SelectView) {
	fmt.Fprintf(t.w, "%s\n", view.Prompt)
	for _, opt := range view.Options {
		marker := " "
		if opt.Value == view.Selected {
			marker = "*"
		}
		fmt.Fprintf(t.w, " %s[%s] %s\n", marker, opt.Value, opt.Label)
	}
}

// Manage prints every list of the manage page.
func (t *Text) Manage(view dto.ManageView) {
	t.List("Rooms", view.Rooms)
	fmt.Fprintln(t.w)
	t.List("Batches", view.Batches)
	fmt.Fprintln(t.w)
	t.List("Subjects", view.Subjects)
	fmt.Fprintln(t.w)
	t.List("Faculty", view.Faculties)
}

// Generation prints the status line, any notice and the result area.
func (t *Text) Generation(view dto.GenerationView) {
	if view.Status != "" {
		fmt.Fprintln(t.w, view.Status)
	}
	t.notice(view.Notice)
	if view.Results != nil {
		t.Results(*view.Results)
	}
}

// Results prints every option in server order.
func (t *Text) Results(view dto.ResultsView) {
	t.notice(view.Notice)
	for _, option := range view.Options {
		fmt.Fprintf(t.w, "\n=== Option %d (Fitness Score: %d) ===\n", option.Option, option.Fitness)
		fmt.Fprintln(t.w, option.Badge.Text)
		t.notice(option.Notice)
		for _, grid := range option.Grids {
			fmt.Fprintln(t.w)
			t.Grid(grid)
		}
	}
}

// Grid prints one batch grid as a boxed table. Each class takes one line;
// classes sharing a cell are separated by a rule.
func (t *Text) Grid(grid dto.GridView) {
	fmt.Fprintf(t.w, "Timetable for Batch: %s\n", grid.Batch)

	header := append([]string{"Time"}, grid.Days...)
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}

	body := make([][][]string, len(grid.Rows))
	for r, row := range grid.Rows {
		cols := make([][]string, len(header))
		cols[0] = []string{row.Timeslot}
		for c, cell := range row.Cells {
			lines := make([]string, 0, 2*len(cell.Entries))
			for i, e := range cell.Entries {
				if i > 0 {
					lines = append(lines, divider)
				}
				lines = append(lines, EntryText(e))
			}
			cols[c+1] = lines
		}
		for c, lines := range cols {
			for _, line := range lines {
				if w := runewidth.StringWidth(line); line != divider && w > widths[c] {
					widths[c] = w
				}
			}
		}
		body[r] = cols
	}

	rule := t.rule(widths)
	fmt.Fprintln(t.w, rule)
	t.line(widths, header)
	fmt.Fprintln(t.w, rule)
	for _, cols := range body {
		height := 1
		for _, lines := range cols {
			if len(lines) > height {
				height = len(lines)
			}
		}
		for i := 0; i < height; i++ {
			cells := make([]string, len(cols))
			for c, lines := range cols {
				if i < len(lines) {
					cells[c] = lines[i]
				}
			}
			t.line(widths, cells)
		}
		fmt.Fprintln(t.w, rule)
	}

	if len(grid.Unplaced) > 0 {
		fmt.Fprintln(t.w, "Unplaced classes (day or timeslot not on the grid):")
		for _, u := range grid.Unplaced {
			fmt.Fprintf(t.w, "  %s %s: %s\n", u.Day, u.Timeslot, EntryText(u.Entry))
		}
	}
}

func (t *Text) notice(n *dto.Notice) {
	if n == nil {
		return
	}
	prefix := ""
	if n.Level == dto.NoticeWarning {
		prefix = "Warning: "
	}
	fmt.Fprintf(t.w, "%s%s\n", prefix, n.Text)
}

func (t *Text) rule(widths []int) string {
	var b strings.Builder
	b.WriteByte('+')
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteByte('+')
	}
	return b.String()
}

func (t *Text) line(widths []int, cells []string) {
	var b strings.Builder
	b.WriteByte('|')
	for c, w := range widths {
		cell := cells[c]
		if cell == divider {
			cell = strings.Repeat("-", w)
		}
		b.WriteByte(' ')
		b.WriteString(runewidth.FillRight(cell, w))
		b.WriteString(" |")
	}
	fmt.Fprintln(t.w, b.String())
}
