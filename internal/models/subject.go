package models

// Subject represents a taught subject and its weekly load.
type Subject struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	HoursPerWeek int    `json:"hours_per_week"`
}

// SubjectSummary is the short form of a subject embedded in faculty rows.
type SubjectSummary struct {
	ID   ID     `json:"id"`
	Code string `json:"code"`
}
