package models

// Faculty is a teacher together with the subjects they can teach. Subjects
// reflects the backend's current assignment and is never edited locally.
type Faculty struct {
	ID       ID               `json:"id"`
	Name     string           `json:"name"`
	Subjects []SubjectSummary `json:"subjects"`
}

// SubjectCodes returns the codes of the assigned subjects in backend order.
func (f Faculty) SubjectCodes() []string {
	codes := make([]string, 0, len(f.Subjects))
	for _, s := range f.Subjects {
		codes = append(codes, s.Code)
	}
	return codes
}
