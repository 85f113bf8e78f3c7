package api

import "github.com/notivo/notivo-server/internal/service"

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Note *service.NoteService
	Tag  *service.TagService
	User *service.UserService
}
