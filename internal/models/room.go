package models

// Room is a teaching room known to the generator.
type Room struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}
