package sqlite

import (
	"context"
	"database/sql"

	"github.com/notivo/notivo-server/internal/domain"
	"github.com/notivo/notivo-server/internal/errors"
	"github.com/notivo/notivo-server/internal/id"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `id, name, created_at`

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tag.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag
	var createdAt string

	if err := scanner.Scan(&t.ID, &t.Name, &createdAt); err != nil {
		return nil, err
	}

	var err error
	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpsertTags resolves each canonical tag name to a tag row, creating rows
// for names that do not exist yet. Names must already be normalized
// (lowercased, trimmed, deduplicated). The returned slice preserves the
// input order.
func (s *Store) UpsertTags(ctx context.Context, names []string) ([]*domain.Tag, error) {
	if len(names) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "begin upsert tags")
	}
	defer tx.Rollback()

	tags, err := upsertTagsTx(ctx, tx, names)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "commit upsert tags")
	}
	return tags, nil
}

// upsertTagsTx is the transactional core of UpsertTags, shared with note
// creation and update which resolve tags inside their own transactions.
func upsertTagsTx(ctx context.Context, tx *sql.Tx, names []string) ([]*domain.Tag, error) {
	tags := make([]*domain.Tag, 0, len(names))
	for _, name := range names {
		row := tx.QueryRowContext(ctx,
			`SELECT `+tagColumns+` FROM tags WHERE name = ?`, name)
		t, err := scanTag(row)
		if err == nil {
			tags = append(tags, t)
			continue
		}
		if err != sql.ErrNoRows {
			return nil, errors.Wrap(err, errors.CodeInternal, "find tag")
		}

		t = &domain.Tag{ID: id.MustGenerate("tag"), Name: name, CreatedAt: nowUTC()}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tags (id, name, created_at) VALUES (?, ?, ?)`,
			t.ID, t.Name, formatTime(t.CreatedAt)); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "create tag")
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// ListTags returns all tags ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "list tags")
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "scan tag")
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// GetTagsByIDs returns the tags matching the given IDs. Unknown IDs are
// silently skipped.
func (s *Store) GetTagsByIDs(ctx context.Context, ids []string) ([]*domain.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id IN (`+placeholders(len(ids))+`)`,
		toAnySlice(ids)...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "get tags by ids")
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "scan tag")
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
