package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/notivo/notivo-server/internal/service"
)

func (s *Server) registerNoteRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listNotes",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes",
		Summary:     "List notes",
		Description: "Returns the caller's visible notes, optionally filtered by text and tags",
		Tags:        []string{"Notes"},
	}, s.handleListNotes)

	huma.Register(s.api, huma.Operation{
		OperationID: "createNote",
		Method:      http.MethodPost,
		Path:        "/api/v1/notes",
		Summary:     "Create note",
		Description: "Creates a note owned by the caller",
		Tags:        []string{"Notes"},
	}, s.handleCreateNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateNote",
		Method:      http.MethodPatch,
		Path:        "/api/v1/notes/{id}",
		Summary:     "Update note",
		Description: "Partially updates a note the caller owns",
		Tags:        []string{"Notes"},
	}, s.handleUpdateNote)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteNote",
		Method:        http.MethodDelete,
		Path:          "/api/v1/notes/{id}",
		Summary:       "Delete note",
		Description:   "Deletes a note the caller owns",
		Tags:          []string{"Notes"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteNote)
}

// === DTOs ===

// ListNotesInput contains the search parameters for listing notes.
type ListNotesInput struct {
	Text string `query:"text" doc:"Case-insensitive substring over title and body"`
	Tags string `query:"tags" doc:"Comma-separated tag IDs; a note must carry all of them"`
}

// ListNotesResponse contains a list of notes.
type ListNotesResponse struct {
	Notes []NoteResponse `json:"notes" doc:"Matching notes, newest first"`
}

// ListNotesOutput wraps the list notes response for Huma.
type ListNotesOutput struct {
	Body ListNotesResponse
}

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Title      string   `json:"title" validate:"required,max=200" doc:"Note title"`
	Body       string   `json:"body" validate:"max=10000" doc:"Note body"`
	Tags       []string `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=50" doc:"Tag labels, canonicalized server-side"`
	SharedWith []string `json:"shared_with,omitempty" doc:"User IDs to share the note with"`
}

// CreateNoteInput wraps the create note request for Huma.
type CreateNoteInput struct {
	Body CreateNoteRequest
}

// NoteOutput wraps a single note response for Huma.
type NoteOutput struct {
	Body NoteResponse
}

// UpdateNoteRequest is the request body for updating a note. Absent
// fields are left untouched.
type UpdateNoteRequest struct {
	Title      *string   `json:"title,omitempty" validate:"omitempty,max=200" doc:"Note title"`
	Body       *string   `json:"body,omitempty" validate:"omitempty,max=10000" doc:"Note body"`
	Tags       *[]string `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=50" doc:"Replacement tag labels"`
	SharedWith *[]string `json:"shared_with,omitempty" doc:"Replacement share list"`
}

// UpdateNoteInput wraps the update note request for Huma.
type UpdateNoteInput struct {
	ID   string `path:"id" doc:"Note ID"`
	Body UpdateNoteRequest
}

// DeleteNoteInput contains parameters for deleting a note.
type DeleteNoteInput struct {
	ID string `path:"id" doc:"Note ID"`
}

// === Handlers ===

func (s *Server) handleListNotes(ctx context.Context, input *ListNotesInput) (*ListNotesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	filter := service.NoteFilter{Text: input.Text}
	if input.Tags != "" {
		filter.TagIDs = strings.Split(input.Tags, ",")
	}

	views, err := s.services.Note.ListNotes(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	return &ListNotesOutput{Body: ListNotesResponse{Notes: toNoteResponses(views)}}, nil
}

func (s *Server) handleCreateNote(ctx context.Context, input *CreateNoteInput) (*NoteOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	view, err := s.services.Note.CreateNote(ctx, userID,
		input.Body.Title, input.Body.Body, input.Body.Tags, input.Body.SharedWith)
	if err != nil {
		return nil, err
	}

	return &NoteOutput{Body: toNoteResponse(view)}, nil
}

func (s *Server) handleUpdateNote(ctx context.Context, input *UpdateNoteInput) (*NoteOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	view, err := s.services.Note.UpdateNote(ctx, input.ID, userID, service.UpdateNoteParams{
		Title:      input.Body.Title,
		Body:       input.Body.Body,
		TagNames:   input.Body.Tags,
		SharedWith: input.Body.SharedWith,
	})
	if err != nil {
		return nil, err
	}

	return &NoteOutput{Body: toNoteResponse(view)}, nil
}

func (s *Server) handleDeleteNote(ctx context.Context, input *DeleteNoteInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Note.DeleteNote(ctx, input.ID, userID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}
