package sqlite

import (
	"context"
	"testing"

	"github.com/notivo/notivo-server/internal/errors"
)

func TestCreateNote(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")

	mut, err := s.CreateNote(ctx, alice.ID, "Standup", "notes from standup",
		[]string{"work"}, []string{bob.ID})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}

	v := mut.View
	if v.OwnerID != alice.ID {
		t.Errorf("expected owner %s, got %s", alice.ID, v.OwnerID)
	}
	if len(v.Tags) != 1 || v.Tags[0].Name != "work" {
		t.Fatalf("expected tag work, got %v", v.Tags)
	}
	if len(v.SharedWith) != 1 || v.SharedWith[0].ID != bob.ID {
		t.Fatalf("expected shared with bob, got %v", v.SharedWith)
	}
	if v.SharedWith[0].Username != "bob" || !v.SharedWith[0].CreatedAt.Equal(bob.CreatedAt) {
		t.Errorf("expected full contact for bob, got %+v", v.SharedWith[0])
	}
	if len(mut.NewShared) != 1 || mut.NewShared[0] != bob.ID {
		t.Errorf("expected NewShared [bob], got %v", mut.NewShared)
	}
	if mut.OldShared != nil {
		t.Errorf("expected no OldShared on create, got %v", mut.OldShared)
	}
}

func TestCreateNoteSkipsOwnerInShares(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")

	mut, err := s.CreateNote(ctx, alice.ID, "Solo", "body", nil, []string{alice.ID})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	if len(mut.NewShared) != 0 {
		t.Errorf("expected owner dropped from shares, got %v", mut.NewShared)
	}
}

func TestCreateNoteUnknownShareTarget(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")

	_, err := s.CreateNote(ctx, alice.ID, "Bad", "body", nil, []string{"user-missing"})
	if !errors.Is(err, errors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// The whole write must roll back.
	views, err := s.VisibleNotes(ctx, alice.ID)
	if err != nil {
		t.Fatalf("visible notes: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("expected rollback to leave no notes, got %d", len(views))
	}
}

func TestUpdateNoteFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	mut, err := s.CreateNote(ctx, alice.ID, "Draft", "first pass", nil, nil)
	if err != nil {
		t.Fatalf("create note: %v", err)
	}

	title := "Final"
	updated, err := s.UpdateNote(ctx, mut.View.ID, alice.ID, NotePatch{Title: &title})
	if err != nil {
		t.Fatalf("update note: %v", err)
	}
	if updated.View.Title != "Final" {
		t.Errorf("expected title Final, got %s", updated.View.Title)
	}
	if updated.View.Body != "first pass" {
		t.Errorf("expected body untouched, got %s", updated.View.Body)
	}
	if !updated.View.UpdatedAt.After(mut.View.UpdatedAt) {
		t.Errorf("expected updated_at to advance")
	}
}

func TestUpdateNoteShareDiff(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")
	carol := mustCreateUser(t, s, "carol")

	mut, err := s.CreateNote(ctx, alice.ID, "Plan", "body", nil, []string{bob.ID})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}

	// Swap bob out for carol.
	shared := []string{carol.ID}
	updated, err := s.UpdateNote(ctx, mut.View.ID, alice.ID, NotePatch{SharedWith: &shared})
	if err != nil {
		t.Fatalf("update note: %v", err)
	}
	if len(updated.OldShared) != 1 || updated.OldShared[0] != bob.ID {
		t.Errorf("expected OldShared [bob], got %v", updated.OldShared)
	}
	if len(updated.NewShared) != 1 || updated.NewShared[0] != carol.ID {
		t.Errorf("expected NewShared [carol], got %v", updated.NewShared)
	}

	// Bob no longer sees the note, carol does.
	bobViews, err := s.VisibleNotes(ctx, bob.ID)
	if err != nil {
		t.Fatalf("bob visible: %v", err)
	}
	if len(bobViews) != 0 {
		t.Errorf("expected bob to see nothing, got %d", len(bobViews))
	}
	carolViews, err := s.VisibleNotes(ctx, carol.ID)
	if err != nil {
		t.Fatalf("carol visible: %v", err)
	}
	if len(carolViews) != 1 {
		t.Errorf("expected carol to see the note, got %d", len(carolViews))
	}
}

func TestUpdateNoteTagDiff(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	mut, err := s.CreateNote(ctx, alice.ID, "Plan", "body", []string{"work", "urgent"}, nil)
	if err != nil {
		t.Fatalf("create note: %v", err)
	}

	tags := []string{"urgent", "home"}
	updated, err := s.UpdateNote(ctx, mut.View.ID, alice.ID, NotePatch{TagNames: &tags})
	if err != nil {
		t.Fatalf("update note: %v", err)
	}
	if len(updated.View.Tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(updated.View.Tags))
	}
	names := []string{updated.View.Tags[0].Name, updated.View.Tags[1].Name}
	if names[0] != "home" || names[1] != "urgent" {
		t.Errorf("expected [home urgent], got %v", names)
	}
}

func TestUpdateNoteForbiddenAndNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")
	mut, err := s.CreateNote(ctx, alice.ID, "Private", "body", nil, []string{bob.ID})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}

	// Sharing grants read, not write.
	title := "Hijacked"
	_, err = s.UpdateNote(ctx, mut.View.ID, bob.ID, NotePatch{Title: &title})
	if !errors.Is(err, errors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	_, err = s.UpdateNote(ctx, "note-missing", alice.ID, NotePatch{Title: &title})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteNote(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")
	mut, err := s.CreateNote(ctx, alice.ID, "Temp", "body", []string{"work"}, []string{bob.ID})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}

	deleted, err := s.DeleteNote(ctx, mut.View.ID, alice.ID)
	if err != nil {
		t.Fatalf("delete note: %v", err)
	}
	if len(deleted.OldShared) != 1 || deleted.OldShared[0] != bob.ID {
		t.Errorf("expected OldShared [bob], got %v", deleted.OldShared)
	}

	views, err := s.VisibleNotes(ctx, alice.ID)
	if err != nil {
		t.Fatalf("visible notes: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("expected note gone, got %d", len(views))
	}

	// Cascade must clean the link tables.
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM note_shares`).Scan(&count); err != nil {
		t.Fatalf("count shares: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 share rows after cascade, got %d", count)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM note_tags`).Scan(&count); err != nil {
		t.Fatalf("count tag links: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 tag link rows after cascade, got %d", count)
	}
}

func TestDeleteNoteForbidden(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")
	mut, err := s.CreateNote(ctx, alice.ID, "Keep", "body", nil, []string{bob.ID})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}

	_, err = s.DeleteNote(ctx, mut.View.ID, bob.ID)
	if !errors.Is(err, errors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
