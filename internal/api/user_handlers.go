package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "registerUser",
		Method:        http.MethodPost,
		Path:          "/api/v1/users",
		Summary:       "Register user",
		Description:   "Creates a new user account",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
	}, s.handleRegisterUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List users",
		Description: "Returns all registered users",
		Tags:        []string{"Users"},
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}",
		Summary:     "Get user",
		Description: "Returns a user by ID",
		Tags:        []string{"Users"},
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "listContacts",
		Method:      http.MethodGet,
		Path:        "/api/v1/contacts",
		Summary:     "List contacts",
		Description: "Returns every other user, as share targets for the caller",
		Tags:        []string{"Users"},
	}, s.handleListContacts)
}

// === DTOs ===

// UserResponse contains user data in API responses.
type UserResponse struct {
	ID        string    `json:"id" doc:"User ID"`
	Username  string    `json:"username" doc:"Username"`
	CreatedAt time.Time `json:"created_at" doc:"Registration time"`
}

// RegisterUserRequest is the request body for registration.
type RegisterUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum" doc:"Unique username"`
}

// RegisterUserInput wraps the registration request for Huma.
type RegisterUserInput struct {
	Body RegisterUserRequest
}

// UserOutput wraps a single user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// ListUsersOutput wraps the user list for Huma.
type ListUsersOutput struct {
	Body struct {
		Users []UserResponse `json:"users" doc:"All registered users"`
	}
}

// ListContactsOutput wraps the contact list for Huma.
type ListContactsOutput struct {
	Body struct {
		Contacts []ContactResponse `json:"contacts" doc:"Other users the caller can share with"`
	}
}

// GetUserInput contains parameters for fetching a user.
type GetUserInput struct {
	ID string `path:"id" doc:"User ID"`
}

// === Handlers ===

func (s *Server) handleRegisterUser(ctx context.Context, input *RegisterUserInput) (*UserOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	u, err := s.services.User.Register(ctx, input.Body.Username)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: UserResponse{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}}, nil
}

func (s *Server) handleListUsers(ctx context.Context, _ *struct{}) (*ListUsersOutput, error) {
	users, err := s.services.User.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	out := &ListUsersOutput{}
	out.Body.Users = make([]UserResponse, 0, len(users))
	for _, u := range users {
		out.Body.Users = append(out.Body.Users, UserResponse{
			ID:        u.ID,
			Username:  u.Username,
			CreatedAt: u.CreatedAt,
		})
	}
	return out, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *GetUserInput) (*UserOutput, error) {
	u, err := s.services.User.GetUser(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: UserResponse{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}}, nil
}

func (s *Server) handleListContacts(ctx context.Context, _ *struct{}) (*ListContactsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	contacts, err := s.services.User.ListContacts(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &ListContactsOutput{}
	out.Body.Contacts = make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		out.Body.Contacts = append(out.Body.Contacts, toContactResponse(c))
	}
	return out, nil
}
