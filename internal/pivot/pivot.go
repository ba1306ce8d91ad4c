package pivot

import (
	"sort"

	"github.com/noah-isme/timetable-console/internal/dto"
	"github.com/noah-isme/timetable-console/internal/models"
)

type cellKey struct {
	batch    string
	day      string
	timeslot string
}

// Batches returns the distinct batch labels of a timetable in ascending
// lexical order.
func Batches(timetable []models.AssignmentRecord) []string {
	seen := make(map[string]struct{})
	batches := make([]string, 0)
	for _, rec := range timetable {
		if _, ok := seen[rec.Batch]; ok {
			continue
		}
		seen[rec.Batch] = struct{}{}
		batches = append(batches, rec.Batch)
	}
	sort.Strings(batches)
	return batches
}

// Pivot groups a timetable by (batch, day, timeslot) and lays every batch out
// as a dense grid: rows are timeslots, columns are days, both in axis order.
// A cell lists every matching record in input order; empty cells are kept.
// Records whose day or timeslot is not on the axes are returned as the
// batch's unplaced entries instead of being dropped.
func Pivot(timetable []models.AssignmentRecord, axes Axes) []dto.GridView {
	cells := make(map[cellKey][]dto.Entry)
	unplaced := make(map[string][]dto.UnplacedEntry)

	for _, rec := range timetable {
		entry := dto.Entry{Subject: rec.Subject, Faculty: rec.Faculty, Room: rec.Room}
		if !axes.Places(rec.Day, rec.Timeslot) {
			unplaced[rec.Batch] = append(unplaced[rec.Batch], dto.UnplacedEntry{Day: rec.Day, Timeslot: rec.Timeslot, Entry: entry})
			continue
		}
		k := cellKey{batch: rec.Batch, day: rec.Day, timeslot: rec.Timeslot}
		cells[k] = append(cells[k], entry)
	}

	batches := Batches(timetable)
	grids := make([]dto.GridView, 0, len(batches))
	for _, batch := range batches {
		grid := dto.GridView{
			Batch:    batch,
			Days:     append([]string(nil), axes.Days...),
			Rows:     make([]dto.GridRow, 0, len(axes.Timeslots)),
			Unplaced: unplaced[batch],
		}
		for _, slot := range axes.Timeslots {
			row := dto.GridRow{Timeslot: slot, Cells: make([]dto.Cell, 0, len(axes.Days))}
			for _, day := range axes.Days {
				entries := append([]dto.Entry{}, cells[cellKey{batch: batch, day: day, timeslot: slot}]...)
				row.Cells = append(row.Cells, dto.Cell{Day: day, Entries: entries})
			}
			grid.Rows = append(grid.Rows, row)
		}
		grids = append(grids, grid)
	}
	return grids
}
