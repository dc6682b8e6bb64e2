package models

import "time"

// Topic groups words under a common theme.
type Topic struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
