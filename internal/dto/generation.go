package dto

// Notice levels map to the tone a renderer uses.
const (
	NoticeInfo    = "info"
	NoticeWarning = "warning"
	NoticeSuccess = "success"
)

// Generation trigger states.
const (
	GenerationIdle       = "idle"
	GenerationGenerating = "generating"
)

// Badge kinds for a result option.
const (
	BadgePerfect = "perfect"
	BadgeReview  = "review"
)

// Notice is a single informational or warning message.
type Notice struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Entry is one class inside a grid cell.
type Entry struct {
	Subject string `json:"subject"`
	Faculty string `json:"faculty"`
	Room    string `json:"room"`
}

// Cell holds every class scheduled for one (batch, day, timeslot).
type Cell struct {
	Day     string  `json:"day"`
	Entries []Entry `json:"entries"`
}

// GridRow is one timeslot of a batch grid.
type GridRow struct {
	Timeslot string `json:"timeslot"`
	Cells    []Cell `json:"cells"`
}

// UnplacedEntry is a class whose day or timeslot is not on the grid axes.
type UnplacedEntry struct {
	Day      string `json:"day"`
	Timeslot string `json:"timeslot"`
	Entry
}

// GridView is the timetable of one batch within one option.
type GridView struct {
	Batch    string          `json:"batch"`
	Days     []string        `json:"days"`
	Rows     []GridRow       `json:"rows"`
	Unplaced []UnplacedEntry `json:"unplaced,omitempty"`
}

// Badge is the qualitative verdict derived from a fitness score.
type Badge struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// OptionView is one ranked result section.
type OptionView struct {
	Option  int        `json:"option"`
	Fitness int        `json:"fitness"`
	Badge   Badge      `json:"badge"`
	Grids   []GridView `json:"grids"`

	// Notice replaces Grids when the option has no batches.
	Notice *Notice `json:"notice,omitempty"`
}

// ResultsView is the rendered result area. Notice is set alone when there
// are no options.
type ResultsView struct {
	Notice  *Notice      `json:"notice,omitempty"`
	Options []OptionView `json:"options,omitempty"`
}

// GenerationView is the dashboard state driven by the generation trigger.
type GenerationView struct {
	State   string       `json:"state"`
	Status  string       `json:"status"`
	Notice  *Notice      `json:"notice,omitempty"`
	Results *ResultsView `json:"results,omitempty"`
}
