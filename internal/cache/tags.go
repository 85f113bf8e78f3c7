package cache

import (
	"encoding/json/v2"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/notivo/notivo-server/internal/domain"
)

// tagsKey is the singleton document listing every tag in the system.
var tagsKey = []byte("tags:global")

// TagsDocument is the cached tag catalog.
type TagsDocument struct {
	Tags        []domain.Tag `json:"tags"`
	LastUpdated time.Time    `json:"lastUpdated"`
}

// StoreTags replaces the cached tag catalog. No TTL: the catalog is kept
// in step on every tag write and rebuilt on a miss.
func (c *Cache) StoreTags(tags []domain.Tag) error {
	doc := &TagsDocument{Tags: tags, LastUpdated: c.now().UTC()}
	return c.set(tagsKey, doc, 0)
}

// LookupTags returns the cached tag catalog, or ok=false on a miss.
func (c *Cache) LookupTags() (*TagsDocument, bool, error) {
	var doc TagsDocument
	found, err := c.get(tagsKey, &doc)
	if err != nil || !found {
		return nil, false, err
	}
	return &doc, true, nil
}

// AppendTags adds tags to the cached catalog, skipping IDs already
// present. A missing catalog document is left missing; the next read
// rebuilds it from the relational store.
func (c *Cache) AppendTags(tags []domain.Tag) error {
	return c.update(func(txn *badger.Txn) error {
		item, err := txn.Get(tagsKey)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		var doc TagsDocument
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		}); err != nil {
			return err
		}

		have := make(map[string]bool, len(doc.Tags))
		for _, t := range doc.Tags {
			have[t.ID] = true
		}
		changed := false
		for _, t := range tags {
			if !have[t.ID] {
				doc.Tags = append(doc.Tags, t)
				have[t.ID] = true
				changed = true
			}
		}
		if !changed {
			return nil
		}

		doc.LastUpdated = c.now().UTC()
		data, err := json.Marshal(&doc)
		if err != nil {
			return err
		}
		return txn.Set(tagsKey, data)
	})
}
