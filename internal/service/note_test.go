package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notivo/notivo-server/internal/errors"
)

func TestListNotesCacheHitSkipsStore(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	_, err := env.notes.CreateNote(ctx, alice.ID, "Standup", "notes", []string{"work"}, nil)
	require.NoError(t, err)

	first, err := env.notes.ListNotes(ctx, alice.ID, NoteFilter{})
	require.NoError(t, err)
	require.Len(t, first, 1)
	callsAfterMiss := env.materializer.Calls()

	second, err := env.notes.ListNotes(ctx, alice.ID, NoteFilter{})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, callsAfterMiss, env.materializer.Calls(),
		"a cache hit must not touch the relational store")
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestListNotesDistinctFiltersCachedSeparately(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	_, err := env.notes.CreateNote(ctx, alice.ID, "Grocery run", "milk and eggs", nil, nil)
	require.NoError(t, err)
	_, err = env.notes.CreateNote(ctx, alice.ID, "Standup", "sprint notes", nil, nil)
	require.NoError(t, err)

	all, err := env.notes.ListNotes(ctx, alice.ID, NoteFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	grocery, err := env.notes.ListNotes(ctx, alice.ID, NoteFilter{Text: "grocery"})
	require.NoError(t, err)
	require.Len(t, grocery, 1)
	assert.Equal(t, "Grocery run", grocery[0].Title)

	// The equivalent filter normalizes to the same key and hits.
	calls := env.materializer.Calls()
	again, err := env.notes.ListNotes(ctx, alice.ID, NoteFilter{Text: "  GROCERY "})
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, calls, env.materializer.Calls())
}

func TestListNotesTextMatchesTitleOrBody(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	_, err := env.notes.CreateNote(ctx, alice.ID, "Recipes", "tomato soup", nil, nil)
	require.NoError(t, err)

	byTitle, err := env.notes.ListNotes(ctx, alice.ID, NoteFilter{Text: "recipe"})
	require.NoError(t, err)
	assert.Len(t, byTitle, 1)

	byBody, err := env.notes.ListNotes(ctx, alice.ID, NoteFilter{Text: "soup"})
	require.NoError(t, err)
	assert.Len(t, byBody, 1)

	none, err := env.notes.ListNotes(ctx, alice.ID, NoteFilter{Text: "pasta"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListNotesTagFilterRequiresAllTags(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	both, err := env.notes.CreateNote(ctx, alice.ID, "Both", "b", []string{"work", "urgent"}, nil)
	require.NoError(t, err)
	_, err = env.notes.CreateNote(ctx, alice.ID, "Only work", "b", []string{"work"}, nil)
	require.NoError(t, err)

	var workID, urgentID string
	for _, tag := range both.Tags {
		switch tag.Name {
		case "work":
			workID = tag.ID
		case "urgent":
			urgentID = tag.ID
		}
	}
	require.NotEmpty(t, workID)
	require.NotEmpty(t, urgentID)

	views, err := env.notes.ListNotes(ctx, alice.ID, NoteFilter{TagIDs: []string{workID, urgentID}})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Both", views[0].Title)

	views, err = env.notes.ListNotes(ctx, alice.ID, NoteFilter{TagIDs: []string{workID}})
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestListNotesEmptyForUnknownUser(t *testing.T) {
	env := setupTest(t)

	views, err := env.notes.ListNotes(context.Background(), "user-ghost", NoteFilter{})
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestCreateNoteInvalidatesOwnerAndRecipients(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")

	// Warm all three caches.
	for _, u := range []string{alice.ID, bob.ID, carol.ID} {
		_, err := env.notes.ListNotes(ctx, u, NoteFilter{})
		require.NoError(t, err)
	}
	warm := env.materializer.Calls()

	_, err := env.notes.CreateNote(ctx, alice.ID, "Shared", "body", nil, []string{bob.ID})
	require.NoError(t, err)

	// Owner and recipient both miss and see the note.
	aliceViews, err := env.notes.ListNotes(ctx, alice.ID, NoteFilter{})
	require.NoError(t, err)
	assert.Len(t, aliceViews, 1)

	bobViews, err := env.notes.ListNotes(ctx, bob.ID, NoteFilter{})
	require.NoError(t, err)
	assert.Len(t, bobViews, 1)

	assert.Equal(t, warm+2, env.materializer.Calls())

	// Carol was not impacted; her cached empty list still serves.
	_, err = env.notes.ListNotes(ctx, carol.ID, NoteFilter{})
	require.NoError(t, err)
	assert.Equal(t, warm+2, env.materializer.Calls())
}

func TestUnshareInvalidatesFormerRecipient(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	note, err := env.notes.CreateNote(ctx, alice.ID, "Plan", "body", nil, []string{bob.ID})
	require.NoError(t, err)

	bobViews, err := env.notes.ListNotes(ctx, bob.ID, NoteFilter{})
	require.NoError(t, err)
	require.Len(t, bobViews, 1)

	nobody := []string{}
	_, err = env.notes.UpdateNote(ctx, note.ID, alice.ID, UpdateNoteParams{SharedWith: &nobody})
	require.NoError(t, err)

	// Bob's cached list was invalidated; the fresh read excludes the note.
	calls := env.materializer.Calls()
	bobViews, err = env.notes.ListNotes(ctx, bob.ID, NoteFilter{})
	require.NoError(t, err)
	assert.Empty(t, bobViews)
	assert.Equal(t, calls+1, env.materializer.Calls())
}

func TestDeleteNoteInvalidatesAllReaders(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	note, err := env.notes.CreateNote(ctx, alice.ID, "Temp", "body", nil, []string{bob.ID})
	require.NoError(t, err)

	for _, u := range []string{alice.ID, bob.ID} {
		views, err := env.notes.ListNotes(ctx, u, NoteFilter{})
		require.NoError(t, err)
		require.Len(t, views, 1)
	}

	require.NoError(t, env.notes.DeleteNote(ctx, note.ID, alice.ID))

	for _, u := range []string{alice.ID, bob.ID} {
		views, err := env.notes.ListNotes(ctx, u, NoteFilter{})
		require.NoError(t, err)
		assert.Empty(t, views)
	}
}

func TestFailedUpdateLeavesCacheIntact(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	note, err := env.notes.CreateNote(ctx, alice.ID, "Private", "body", nil, []string{bob.ID})
	require.NoError(t, err)

	_, err = env.notes.ListNotes(ctx, alice.ID, NoteFilter{})
	require.NoError(t, err)
	calls := env.materializer.Calls()

	title := "Hijacked"
	_, err = env.notes.UpdateNote(ctx, note.ID, bob.ID, UpdateNoteParams{Title: &title})
	require.True(t, errors.Is(err, errors.ErrForbidden))

	// The rejected write must not have invalidated anyone.
	views, err := env.notes.ListNotes(ctx, alice.ID, NoteFilter{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Private", views[0].Title)
	assert.Equal(t, calls, env.materializer.Calls())
}

func TestCreateNoteUnknownOwner(t *testing.T) {
	env := setupTest(t)

	_, err := env.notes.CreateNote(context.Background(), "user-ghost", "T", "b", nil, nil)
	require.True(t, errors.Is(err, errors.ErrNotFound))
}
