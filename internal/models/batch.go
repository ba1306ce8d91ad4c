package models

// Batch is a student group attending classes as a unit.
type Batch struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}
