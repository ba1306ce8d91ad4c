package dto

// ListRow is one rendered item of a resource list.
type ListRow struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Title   string `json:"title"`
	Detail  string `json:"detail,omitempty"`
	Summary string `json:"summary,omitempty"`

	// Deletable marks the row as carrying a delete affordance.
	Deletable bool `json:"deletable"`
}

// ListView is the rendered state of one resource list region. Exactly one of
// Rows or Placeholder is populated once the list has been loaded.
type ListView struct {
	Resource    string    `json:"resource"`
	Loaded      bool      `json:"loaded"`
	Rows        []ListRow `json:"rows"`
	Placeholder string    `json:"placeholder,omitempty"`
}

// SelectOption is one entry of a selection control.
type SelectOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SelectView is a selection control fed from a resource list.
type SelectView struct {
	Prompt   string         `json:"prompt"`
	Options  []SelectOption `json:"options"`
	Selected string         `json:"selected"`
}

// ManageView is the combined state of the manage page.
type ManageView struct {
	Rooms         ListView   `json:"rooms"`
	Batches       ListView   `json:"batches"`
	Subjects      ListView   `json:"subjects"`
	Faculties     ListView   `json:"faculties"`
	FacultySelect SelectView `json:"faculty_select"`
	SubjectSelect SelectView `json:"subject_select"`
	Alerts        []string   `json:"alerts,omitempty"`
}
