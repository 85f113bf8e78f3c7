package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/notivo/notivo-server/internal/cache"
	"github.com/notivo/notivo-server/internal/domain"
	"github.com/notivo/notivo-server/internal/errors"
	"github.com/notivo/notivo-server/internal/normalize"
	"github.com/notivo/notivo-server/internal/store/sqlite"
)

// NoteService orchestrates note reads and writes. Writes go to the
// relational store first; only after commit does the service touch the
// cache, so a failed write never leaves cached state to clean up.
type NoteService struct {
	store        *sqlite.Store
	cache        *cache.Cache
	materializer *Materializer
	logger       *slog.Logger
}

// NewNoteService creates a new note service.
func NewNoteService(store *sqlite.Store, c *cache.Cache, m *Materializer, logger *slog.Logger) *NoteService {
	return &NoteService{store: store, cache: c, materializer: m, logger: logger}
}

// NoteFilter is a search over a user's visible notes. Text matches as a
// case-insensitive substring of title or body; TagIDs requires every
// listed tag. Both filters must hold; the zero filter matches everything.
type NoteFilter struct {
	Text   string
	TagIDs []string
}

// UpdateNoteParams carries the optional fields of a note update. Nil
// fields are left as they are.
type UpdateNoteParams struct {
	Title      *string
	Body       *string
	TagNames   *[]string
	SharedWith *[]string
}

// ListNotes serves a user's filtered note list cache-first. A cache hit
// answers without touching the relational store and refreshes the
// sliding window; a miss materializes from the store, filters, and
// caches the result under the normalized filter key. Cache failures on
// the read path degrade to store reads rather than failing the request.
func (s *NoteService) ListNotes(ctx context.Context, userID string, filter NoteFilter) ([]*domain.NoteView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := normalize.SearchKey(filter.Text, filter.TagIDs)

	doc, ok, err := s.cache.LookupSearch(userID, key)
	if err != nil {
		s.logger.Warn("search cache lookup failed, falling back to store",
			"user_id", userID, "error", err)
	}
	if ok {
		s.logger.Debug("search cache hit", "user_id", userID, "filter_key", key)
		return doc.Results, nil
	}

	views, err := s.materializer.Materialize(ctx, userID)
	if err != nil {
		return nil, err
	}
	filtered := filterViews(views, filter)

	if err := s.cache.StoreSearch(userID, key, filtered); err != nil {
		s.logger.Warn("failed to cache search results",
			"user_id", userID, "filter_key", key, "error", err)
	}

	return filtered, nil
}

// filterViews applies the text and tag predicates in memory over the
// materialized set.
func filterViews(views []*domain.NoteView, filter NoteFilter) []*domain.NoteView {
	text := normalize.Text(filter.Text)
	tagIDs := normalize.TagIDs(filter.TagIDs)

	filtered := make([]*domain.NoteView, 0, len(views))
	for _, v := range views {
		if text != "" &&
			!strings.Contains(strings.ToLower(v.Title), text) &&
			!strings.Contains(strings.ToLower(v.Body), text) {
			continue
		}
		if !v.HasAllTags(tagIDs) {
			continue
		}
		filtered = append(filtered, v)
	}
	return filtered
}

// CreateNote creates a note owned by ownerID, tags it, and shares it.
// After commit, the cached searches of the owner and every recipient are
// invalidated.
func (s *NoteService) CreateNote(ctx context.Context, ownerID, title, body string, tagNames, sharedWith []string) (*domain.NoteView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if ok, err := s.store.UserExists(ctx, ownerID); err != nil {
		return nil, err
	} else if !ok {
		return nil, errors.NotFoundf("user %s not found", ownerID)
	}

	mut, err := s.store.CreateNote(ctx, ownerID, title, body,
		normalize.TagNames(tagNames), sharedWith)
	if err != nil {
		return nil, err
	}

	s.invalidate("note_create", append([]string{ownerID}, mut.NewShared...))
	s.appendTagCache(mut.View.Tags)

	s.logger.Info("note created",
		"note_id", mut.View.ID,
		"owner_id", ownerID,
		"shared_with", len(mut.NewShared))
	return mut.View, nil
}

// UpdateNote applies a partial update on behalf of actorID. The
// invalidation set covers the owner plus everyone the note was shared
// with before or after the change, so a revoked recipient loses their
// cached copy too.
func (s *NoteService) UpdateNote(ctx context.Context, noteID, actorID string, params UpdateNoteParams) (*domain.NoteView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	patch := sqlite.NotePatch{
		Title:      params.Title,
		Body:       params.Body,
		SharedWith: params.SharedWith,
	}
	if params.TagNames != nil {
		names := normalize.TagNames(*params.TagNames)
		patch.TagNames = &names
	}

	mut, err := s.store.UpdateNote(ctx, noteID, actorID, patch)
	if err != nil {
		return nil, err
	}

	impacted := append([]string{mut.View.OwnerID}, mut.OldShared...)
	impacted = append(impacted, mut.NewShared...)
	s.invalidate("note_update", impacted)
	s.appendTagCache(mut.View.Tags)

	s.logger.Info("note updated", "note_id", noteID, "actor_id", actorID)
	return mut.View, nil
}

// DeleteNote removes a note on behalf of actorID and invalidates the
// owner plus everyone it was shared with.
func (s *NoteService) DeleteNote(ctx context.Context, noteID, actorID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mut, err := s.store.DeleteNote(ctx, noteID, actorID)
	if err != nil {
		return err
	}

	s.invalidate("note_delete", append([]string{mut.View.OwnerID}, mut.OldShared...))

	s.logger.Info("note deleted", "note_id", noteID, "actor_id", actorID)
	return nil
}

// invalidate drops the cached searches of every impacted user. Each user
// is handled independently; a user whose invalidation keeps failing is
// logged as a cache inconsistency and the operation still succeeds, the
// TTL sweep being the backstop.
func (s *NoteService) invalidate(mutation string, userIDs []string) {
	seen := make(map[string]bool, len(userIDs))
	for _, uid := range userIDs {
		if uid == "" || seen[uid] {
			continue
		}
		seen[uid] = true

		if err := s.cache.InvalidateUser(uid); err != nil {
			s.logger.Error("cache invalidation exhausted retries, stale entries remain until TTL",
				"code", errors.CodeCacheInconsistency,
				"mutation", mutation,
				"user_id", uid,
				"error", err)
		}
	}
}

// appendTagCache keeps the cached tag catalog in step with tags that a
// note write may have created. Best effort.
func (s *NoteService) appendTagCache(tags []domain.Tag) {
	if len(tags) == 0 {
		return
	}
	if err := s.cache.AppendTags(tags); err != nil {
		s.logger.Warn("failed to append tags to catalog cache", "error", err)
	}
}
