package domain

import "time"

// Tag is a relational tag row. Names are unique and normalized to
// lowercase before storage; tags are only ever created, never deleted.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
