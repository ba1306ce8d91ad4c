package pivot

import (
	"fmt"

	"github.com/noah-isme/timetable-console/pkg/config"
	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
)

var (
	defaultDays      = []string{"Mon", "Tue", "Wed", "Thu", "Fri"}
	defaultTimeslots = []string{"9-10", "10-11", "11-12", "1-2", "2-3"}
)

// Axes are the fixed grid axes. They must match the labels the generator
// emits, so they come from configuration shared with the backend rather than
// from the data being rendered.
type Axes struct {
	Days      []string
	Timeslots []string

	days      map[string]struct{}
	timeslots map[string]struct{}
}

// NewAxes validates and indexes the day and timeslot labels in order.
func NewAxes(days, timeslots []string) (Axes, error) {
	dayIndex, err := index("day", days)
	if err != nil {
		return Axes{}, err
	}
	slotIndex, err := index("timeslot", timeslots)
	if err != nil {
		return Axes{}, err
	}
	return Axes{
		Days:      append([]string(nil), days...),
		Timeslots: append([]string(nil), timeslots...),
		days:      dayIndex,
		timeslots: slotIndex,
	}, nil
}

// DefaultAxes returns the five weekdays and five time bands the backend uses
// out of the box.
func DefaultAxes() Axes {
	axes, _ := NewAxes(defaultDays, defaultTimeslots)
	return axes
}

// AxesFromConfig builds axes from TIMETABLE_DAYS / TIMETABLE_TIMESLOTS,
// falling back to the defaults for an unset list.
func AxesFromConfig(cfg config.TimetableConfig) (Axes, error) {
	days := cfg.Days
	if len(days) == 0 {
		days = defaultDays
	}
	timeslots := cfg.Timeslots
	if len(timeslots) == 0 {
		timeslots = defaultTimeslots
	}
	return NewAxes(days, timeslots)
}

// Places reports whether a (day, timeslot) pair lands on the grid.
func (a Axes) Places(day, timeslot string) bool {
	_, okDay := a.days[day]
	_, okSlot := a.timeslots[timeslot]
	return okDay && okSlot
}

func index(axis string, labels []string) (map[string]struct{}, error) {
	if len(labels) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s axis is empty", axis))
	}
	set := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		if label == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s axis has a blank label", axis))
		}
		if _, dup := set[label]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s axis repeats %q", axis, label))
		}
		set[label] = struct{}{}
	}
	return set, nil
}
