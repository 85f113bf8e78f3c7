package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns the global tag catalog",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "createTags",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags",
		Summary:     "Create tags",
		Description: "Resolves each label to a tag, creating missing ones. Idempotent.",
		Tags:        []string{"Tags"},
	}, s.handleCreateTags)
}

// === DTOs ===

// ListTagsResponse contains the tag catalog.
type ListTagsResponse struct {
	Tags []TagResponse `json:"tags" doc:"All known tags"`
}

// ListTagsOutput wraps the list tags response for Huma.
type ListTagsOutput struct {
	Body ListTagsResponse
}

// CreateTagsRequest is the request body for upserting tags.
type CreateTagsRequest struct {
	Names []string `json:"names" validate:"required,min=1,dive,min=1,max=50" doc:"Tag labels to resolve"`
}

// CreateTagsInput wraps the create tags request for Huma.
type CreateTagsInput struct {
	Body CreateTagsRequest
}

// CreateTagsOutput wraps the resolved tags for Huma.
type CreateTagsOutput struct {
	Body ListTagsResponse
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*ListTagsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	tags, err := s.services.Tag.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	out := &ListTagsOutput{}
	out.Body.Tags = make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		out.Body.Tags = append(out.Body.Tags, toTagResponse(t))
	}
	return out, nil
}

func (s *Server) handleCreateTags(ctx context.Context, input *CreateTagsInput) (*CreateTagsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	tags, err := s.services.Tag.UpsertTags(ctx, input.Body.Names)
	if err != nil {
		return nil, err
	}

	out := &CreateTagsOutput{}
	out.Body.Tags = make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		out.Body.Tags = append(out.Body.Tags, toTagResponse(*t))
	}
	return out, nil
}
