package sqlite

import (
	"context"

	"github.com/notivo/notivo-server/internal/domain"
	"github.com/notivo/notivo-server/internal/errors"
)

// VisibleNotes returns the denormalized views of every note the user owns
// or has been shared, newest first with ID as tie-break. Tags and share
// contacts are attached with one batched query each rather than per note.
// An unknown user simply sees nothing.
func (s *Store) VisibleNotes(ctx context.Context, userID string) ([]*domain.NoteView, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes
		 WHERE owner_id = ?
		    OR id IN (SELECT note_id FROM note_shares WHERE user_id = ?)
		 ORDER BY created_at DESC, id ASC`, userID, userID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "visible notes")
	}
	defer rows.Close()

	var views []*domain.NoteView
	byID := make(map[string]*domain.NoteView)
	var ids []string
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "scan visible note")
		}
		v := &domain.NoteView{Note: *n}
		views = append(views, v)
		byID[n.ID] = v
		ids = append(ids, n.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "iterate visible notes")
	}
	if len(views) == 0 {
		return nil, nil
	}

	if err := s.attachTags(ctx, byID, ids); err != nil {
		return nil, err
	}
	if err := s.attachShares(ctx, byID, ids); err != nil {
		return nil, err
	}
	return views, nil
}

// attachTags fills Tags for all views in one IN query.
func (s *Store) attachTags(ctx context.Context, byID map[string]*domain.NoteView, noteIDs []string) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT nt.note_id, t.id, t.name, t.created_at FROM note_tags nt
		 JOIN tags t ON t.id = nt.tag_id
		 WHERE nt.note_id IN (`+placeholders(len(noteIDs))+`)
		 ORDER BY t.name ASC`,
		toAnySlice(noteIDs)...)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "attach tags")
	}
	defer rows.Close()

	for rows.Next() {
		var noteID, createdAt string
		var t domain.Tag
		if err := rows.Scan(&noteID, &t.ID, &t.Name, &createdAt); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "scan note tag")
		}
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "parse tag time")
		}
		if v, ok := byID[noteID]; ok {
			v.Tags = append(v.Tags, t)
		}
	}
	return rows.Err()
}

// attachShares fills SharedWith for all views in one IN query.
func (s *Store) attachShares(ctx context.Context, byID map[string]*domain.NoteView, noteIDs []string) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ns.note_id, u.id, u.username, u.created_at FROM note_shares ns
		 JOIN users u ON u.id = ns.user_id
		 WHERE ns.note_id IN (`+placeholders(len(noteIDs))+`)
		 ORDER BY u.username ASC`,
		toAnySlice(noteIDs)...)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "attach shares")
	}
	defer rows.Close()

	for rows.Next() {
		var noteID, createdAt string
		var c domain.Contact
		if err := rows.Scan(&noteID, &c.ID, &c.Username, &createdAt); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "scan note share")
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "parse share time")
		}
		if v, ok := byID[noteID]; ok {
			v.SharedWith = append(v.SharedWith, c)
		}
	}
	return rows.Err()
}
