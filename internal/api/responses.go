package api

import (
	"time"

	"github.com/notivo/notivo-server/internal/domain"
)

// TagResponse contains tag data in API responses.
type TagResponse struct {
	ID        string    `json:"id" doc:"Tag ID"`
	Name      string    `json:"name" doc:"Canonical tag name"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

// ContactResponse contains another user's public data.
type ContactResponse struct {
	ID       string `json:"id" doc:"User ID"`
	Username string `json:"username" doc:"Username"`
}

// NoteResponse contains a note with its tags and share list.
type NoteResponse struct {
	ID         string            `json:"id" doc:"Note ID"`
	Title      string            `json:"title" doc:"Note title"`
	Body       string            `json:"body" doc:"Note body"`
	OwnerID    string            `json:"owner_id" doc:"Owning user ID"`
	Tags       []TagResponse     `json:"tags" doc:"Tags on this note"`
	SharedWith []ContactResponse `json:"shared_with" doc:"Users this note is shared with"`
	CreatedAt  time.Time         `json:"created_at" doc:"Creation time"`
	UpdatedAt  time.Time         `json:"updated_at" doc:"Last update time"`
}

func toTagResponse(t domain.Tag) TagResponse {
	return TagResponse{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt}
}

func toContactResponse(c domain.Contact) ContactResponse {
	return ContactResponse{ID: c.ID, Username: c.Username}
}

func toNoteResponse(v *domain.NoteView) NoteResponse {
	resp := NoteResponse{
		ID:         v.ID,
		Title:      v.Title,
		Body:       v.Body,
		OwnerID:    v.OwnerID,
		Tags:       make([]TagResponse, 0, len(v.Tags)),
		SharedWith: make([]ContactResponse, 0, len(v.SharedWith)),
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
	for _, t := range v.Tags {
		resp.Tags = append(resp.Tags, toTagResponse(t))
	}
	for _, c := range v.SharedWith {
		resp.SharedWith = append(resp.SharedWith, toContactResponse(c))
	}
	return resp
}

func toNoteResponses(views []*domain.NoteView) []NoteResponse {
	out := make([]NoteResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toNoteResponse(v))
	}
	return out
}
