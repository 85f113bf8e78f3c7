package service

import (
	"context"
	"log/slog"

	"github.com/notivo/notivo-server/internal/cache"
	"github.com/notivo/notivo-server/internal/domain"
	"github.com/notivo/notivo-server/internal/normalize"
	"github.com/notivo/notivo-server/internal/store/sqlite"
)

// TagService manages the global tag catalog and its cached document.
// Tag writes never invalidate search caches; cached search results embed
// tag data that was correct when written and the catalog document is
// appended in step instead.
type TagService struct {
	store  *sqlite.Store
	cache  *cache.Cache
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store *sqlite.Store, c *cache.Cache, logger *slog.Logger) *TagService {
	return &TagService{store: store, cache: c, logger: logger}
}

// UpsertTags canonicalizes the given labels and resolves each to a tag,
// creating the ones that do not exist. Existing names are returned
// as-is, so the call is idempotent.
func (s *TagService) UpsertTags(ctx context.Context, names []string) ([]*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tags, err := s.store.UpsertTags(ctx, normalize.TagNames(names))
	if err != nil {
		return nil, err
	}

	appended := make([]domain.Tag, len(tags))
	for i, t := range tags {
		appended[i] = *t
	}
	if err := s.cache.AppendTags(appended); err != nil {
		s.logger.Warn("failed to append tags to catalog cache", "error", err)
	}

	return tags, nil
}

// ListTags serves the tag catalog cache-first, rebuilding the cached
// document from the relational store on a miss.
func (s *TagService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, ok, err := s.cache.LookupTags()
	if err != nil {
		s.logger.Warn("tag catalog cache lookup failed, falling back to store", "error", err)
	}
	if ok {
		return doc.Tags, nil
	}

	rows, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	tags := make([]domain.Tag, len(rows))
	for i, t := range rows {
		tags[i] = *t
	}

	if err := s.cache.StoreTags(tags); err != nil {
		s.logger.Warn("failed to rebuild tag catalog cache", "error", err)
	}
	return tags, nil
}
