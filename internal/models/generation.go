package models

const (
	GenerationStatusSuccess = "success"
	GenerationStatusError   = "error"
)

// AssignmentRecord is one scheduled class slot. Every field is a display
// label, not a foreign key.
type AssignmentRecord struct {
	Batch    string `json:"batch"`
	Day      string `json:"day"`
	Timeslot string `json:"timeslot"`
	Subject  string `json:"subject"`
	Faculty  string `json:"faculty"`
	Room     string `json:"room"`
}

// GenerationResult is one ranked option returned by the generator. Fitness 0
// means no hard constraint violations; higher means more conflicts.
type GenerationResult struct {
	Option    int                `json:"option"`
	Fitness   int                `json:"fitness"`
	Timetable []AssignmentRecord `json:"timetable"`
}

// GenerationResponse is the body of POST /api/generate.
type GenerationResponse struct {
	Status  string             `json:"status"`
	Results []GenerationResult `json:"results,omitempty"`
	Message string             `json:"message,omitempty"`
}

// Succeeded reports whether the backend produced a result set.
func (r GenerationResponse) Succeeded() bool {
	return r.Status == GenerationStatusSuccess
}
