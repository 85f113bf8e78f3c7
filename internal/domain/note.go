package domain

import "time"

// Note is a relational note row. The owner never changes after creation;
// visibility beyond the owner is expressed through note_shares rows.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteView is the denormalized form of a note served on the read path:
// the row itself plus its full tag list and shared-user list. This is
// what the query cache stores.
type NoteView struct {
	Note
	Tags       []Tag     `json:"tags"`
	SharedWith []Contact `json:"shared_with"`
}

// HasAllTags reports whether the note carries every tag id in want.
// An empty want set always matches.
func (v *NoteView) HasAllTags(want []string) bool {
	for _, id := range want {
		found := false
		for _, t := range v.Tags {
			if t.ID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
