package sqlite

import (
	"context"
	"database/sql"

	"github.com/notivo/notivo-server/internal/domain"
	"github.com/notivo/notivo-server/internal/errors"
	"github.com/notivo/notivo-server/internal/id"
)

// noteColumns is the ordered list of columns selected in note queries.
// Must match the scan order in scanNote.
const noteColumns = `id, owner_id, title, body, created_at, updated_at`

// scanNote scans a sql.Row (or sql.Rows via its Scan method) into a domain.Note.
func scanNote(scanner interface{ Scan(dest ...any) error }) (*domain.Note, error) {
	var n domain.Note
	var createdAt, updatedAt string

	if err := scanner.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Body, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	n.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	n.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// NotePatch carries the optional fields of a note update. Nil fields are
// left untouched; non-nil slices replace the full set.
type NotePatch struct {
	Title      *string
	Body       *string
	TagNames   *[]string
	SharedWith *[]string
}

// NoteMutation is the committed outcome of a note write. OldShared and
// NewShared are the share sets before and after the transaction; callers
// use them to compute the invalidation fan-out.
type NoteMutation struct {
	View      *domain.NoteView
	OldShared []string
	NewShared []string
}

// CreateNote inserts a note with its tag links and share rows in a single
// transaction. Tag names must already be normalized; share targets must be
// existing users other than the owner.
func (s *Store) CreateNote(ctx context.Context, ownerID, title, body string, tagNames, sharedWith []string) (*NoteMutation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "begin create note")
	}
	defer tx.Rollback()

	now := nowUTC()
	n := &domain.Note{
		ID:        id.MustGenerate("note"),
		OwnerID:   ownerID,
		Title:     title,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO notes (id, owner_id, title, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.OwnerID, n.Title, n.Body, formatTime(n.CreatedAt), formatTime(n.UpdatedAt)); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "create note")
	}

	tags, err := upsertTagsTx(ctx, tx, tagNames)
	if err != nil {
		return nil, err
	}
	for _, t := range tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO note_tags (note_id, tag_id) VALUES (?, ?)`, n.ID, t.ID); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "link tag")
		}
	}

	shared, err := insertSharesTx(ctx, tx, n.ID, n.OwnerID, sharedWith)
	if err != nil {
		return nil, err
	}

	view, err := buildViewTx(ctx, tx, n)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "commit create note")
	}
	return &NoteMutation{View: view, NewShared: shared}, nil
}

// UpdateNote applies a patch to a note inside a single transaction. Only
// the owner may update; a missing note is NOT_FOUND and any other actor is
// FORBIDDEN. Share and tag sets are replaced by diffing against the
// current rows rather than delete-all-reinsert.
func (s *Store) UpdateNote(ctx context.Context, noteID, actorID string, patch NotePatch) (*NoteMutation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "begin update note")
	}
	defer tx.Rollback()

	n, err := loadNoteTx(ctx, tx, noteID)
	if err != nil {
		return nil, err
	}
	if n.OwnerID != actorID {
		return nil, errors.Forbiddenf("only the owner may modify note %s", noteID)
	}

	oldShared, err := sharesTx(ctx, tx, noteID)
	if err != nil {
		return nil, err
	}
	newShared := oldShared

	if patch.Title != nil {
		n.Title = *patch.Title
	}
	if patch.Body != nil {
		n.Body = *patch.Body
	}
	n.UpdatedAt = nowUTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE notes SET title = ?, body = ?, updated_at = ? WHERE id = ?`,
		n.Title, n.Body, formatTime(n.UpdatedAt), n.ID); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "update note")
	}

	if patch.TagNames != nil {
		if err := replaceTagsTx(ctx, tx, n.ID, *patch.TagNames); err != nil {
			return nil, err
		}
	}

	if patch.SharedWith != nil {
		newShared, err = replaceSharesTx(ctx, tx, n.ID, n.OwnerID, oldShared, *patch.SharedWith)
		if err != nil {
			return nil, err
		}
	}

	view, err := buildViewTx(ctx, tx, n)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "commit update note")
	}
	return &NoteMutation{View: view, OldShared: oldShared, NewShared: newShared}, nil
}

// DeleteNote removes a note and, via cascade, its share and tag rows.
// Returns the share set the note had before deletion.
func (s *Store) DeleteNote(ctx context.Context, noteID, actorID string) (*NoteMutation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "begin delete note")
	}
	defer tx.Rollback()

	n, err := loadNoteTx(ctx, tx, noteID)
	if err != nil {
		return nil, err
	}
	if n.OwnerID != actorID {
		return nil, errors.Forbiddenf("only the owner may delete note %s", noteID)
	}

	oldShared, err := sharesTx(ctx, tx, noteID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, noteID); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "delete note")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "commit delete note")
	}
	return &NoteMutation{View: &domain.NoteView{Note: *n}, OldShared: oldShared}, nil
}

// loadNoteTx fetches a note inside a transaction, mapping a missing row to
// NOT_FOUND.
func loadNoteTx(ctx context.Context, tx *sql.Tx, noteID string) (*domain.Note, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ?`, noteID)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("note %s not found", noteID)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "get note")
	}
	return n, nil
}

// sharesTx returns the user IDs a note is currently shared with, sorted by
// user ID for deterministic diffs.
func sharesTx(ctx context.Context, tx *sql.Tx, noteID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT user_id FROM note_shares WHERE note_id = ? ORDER BY user_id ASC`, noteID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "get shares")
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "scan share")
		}
		users = append(users, uid)
	}
	return users, rows.Err()
}

// insertSharesTx validates and inserts share rows for a fresh note. The
// owner is dropped from the set; unknown users fail validation and roll
// the whole write back.
func insertSharesTx(ctx context.Context, tx *sql.Tx, noteID, ownerID string, sharedWith []string) ([]string, error) {
	var inserted []string
	for _, uid := range sharedWith {
		if uid == ownerID {
			continue
		}
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, uid).Scan(&one)
		if err == sql.ErrNoRows {
			return nil, errors.Validationf("cannot share with unknown user %s", uid)
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "check share target")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO note_shares (note_id, user_id) VALUES (?, ?)`, noteID, uid); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "insert share")
		}
		inserted = append(inserted, uid)
	}
	return inserted, nil
}

// replaceSharesTx diffs the desired share set against the current one and
// applies only the additions and removals. Returns the resulting set.
func replaceSharesTx(ctx context.Context, tx *sql.Tx, noteID, ownerID string, current, desired []string) ([]string, error) {
	want := make(map[string]bool, len(desired))
	for _, uid := range desired {
		if uid != ownerID {
			want[uid] = true
		}
	}
	have := make(map[string]bool, len(current))
	for _, uid := range current {
		have[uid] = true
	}

	for uid := range have {
		if !want[uid] {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM note_shares WHERE note_id = ? AND user_id = ?`, noteID, uid); err != nil {
				return nil, errors.Wrap(err, errors.CodeInternal, "remove share")
			}
		}
	}

	var toAdd []string
	for uid := range want {
		if !have[uid] {
			toAdd = append(toAdd, uid)
		}
	}
	if _, err := insertSharesTx(ctx, tx, noteID, ownerID, toAdd); err != nil {
		return nil, err
	}

	return sharesTx(ctx, tx, noteID)
}

// replaceTagsTx resolves the desired tag names and diffs the note_tags
// rows against them.
func replaceTagsTx(ctx context.Context, tx *sql.Tx, noteID string, names []string) error {
	tags, err := upsertTagsTx(ctx, tx, names)
	if err != nil {
		return err
	}
	want := make(map[string]bool, len(tags))
	for _, t := range tags {
		want[t.ID] = true
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT tag_id FROM note_tags WHERE note_id = ?`, noteID)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "get note tags")
	}
	have := make(map[string]bool)
	for rows.Next() {
		var tid string
		if err := rows.Scan(&tid); err != nil {
			rows.Close()
			return errors.Wrap(err, errors.CodeInternal, "scan note tag")
		}
		have[tid] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "iterate note tags")
	}

	for tid := range have {
		if !want[tid] {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM note_tags WHERE note_id = ? AND tag_id = ?`, noteID, tid); err != nil {
				return errors.Wrap(err, errors.CodeInternal, "remove tag link")
			}
		}
	}
	for _, t := range tags {
		if !have[t.ID] {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO note_tags (note_id, tag_id) VALUES (?, ?)`, noteID, t.ID); err != nil {
				return errors.Wrap(err, errors.CodeInternal, "insert tag link")
			}
		}
	}
	return nil
}

// buildViewTx assembles the denormalized view of a single note inside the
// writing transaction so the response reflects exactly what was committed.
func buildViewTx(ctx context.Context, tx *sql.Tx, n *domain.Note) (*domain.NoteView, error) {
	view := &domain.NoteView{Note: *n}

	rows, err := tx.QueryContext(ctx,
		`SELECT t.id, t.name, t.created_at FROM tags t
		 JOIN note_tags nt ON nt.tag_id = t.id
		 WHERE nt.note_id = ? ORDER BY t.name ASC`, n.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "view tags")
	}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			rows.Close()
			return nil, errors.Wrap(err, errors.CodeInternal, "scan view tag")
		}
		view.Tags = append(view.Tags, *t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "iterate view tags")
	}

	rows, err = tx.QueryContext(ctx,
		`SELECT u.id, u.username, u.created_at FROM users u
		 JOIN note_shares ns ON ns.user_id = u.id
		 WHERE ns.note_id = ? ORDER BY u.username ASC`, n.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "view shares")
	}
	for rows.Next() {
		var c domain.Contact
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Username, &createdAt); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, errors.CodeInternal, "scan view share")
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, errors.CodeInternal, "parse view share time")
		}
		view.SharedWith = append(view.SharedWith, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "iterate view shares")
	}

	return view, nil
}
