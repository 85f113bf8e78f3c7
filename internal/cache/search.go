package cache

import (
	"encoding/json/v2"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/notivo/notivo-server/internal/domain"
)

// invalidateRetries bounds the delete attempts during write fan-out.
// An exhausted budget is surfaced to the caller, which logs the
// inconsistency; the TTL sweep remains the backstop.
const invalidateRetries = 3

const searchPrefix = "search:"

// SearchDocument is one cached result set for a (user, filter) pair.
// LastUpdated carries the sliding-window clock: a read inside the window
// pushes it forward, a read past it counts as a miss even if the sweep
// has not removed the entry yet.
type SearchDocument struct {
	UserID      string             `json:"userId"`
	FilterKey   string             `json:"filterKey"`
	Results     []*domain.NoteView `json:"results"`
	LastUpdated time.Time          `json:"lastUpdated"`
}

// searchKey builds the storage key for a user's cached filter result.
func searchKey(userID, filterKey string) []byte {
	return []byte(searchPrefix + userID + ":" + filterKey)
}

// userSearchPrefix is the key prefix covering every cached search for one
// user.
func userSearchPrefix(userID string) []byte {
	return []byte(searchPrefix + userID + ":")
}

// StoreSearch caches a freshly materialized result set for the given user
// and filter key, stamped with the current time and the sliding TTL.
func (c *Cache) StoreSearch(userID, filterKey string, results []*domain.NoteView) error {
	doc := &SearchDocument{
		UserID:      userID,
		FilterKey:   filterKey,
		Results:     results,
		LastUpdated: c.now().UTC(),
	}
	return c.set(searchKey(userID, filterKey), doc, c.ttl)
}

// LookupSearch returns the cached document for the given user and filter
// key, or ok=false on a miss. A hit refreshes the sliding window: the
// document is re-stamped and its expiry pushed out. An entry older than
// the TTL is treated as a miss regardless of whether the sweep has
// collected it.
func (c *Cache) LookupSearch(userID, filterKey string) (*SearchDocument, bool, error) {
	key := searchKey(userID, filterKey)

	// The read and the touch share one transaction so a concurrent
	// invalidation aborts the touch instead of being overwritten; the
	// conflict retry re-reads and sees the miss.
	var doc *SearchDocument
	err := c.update(func(txn *badger.Txn) error {
		doc = nil

		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		var d SearchDocument
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &d)
		}); err != nil {
			return err
		}

		now := c.now().UTC()
		if now.Sub(d.LastUpdated) > c.ttl {
			// Expired but not yet swept.
			return txn.Delete(key)
		}

		// Touch: refresh both the stamp and the entry expiry.
		d.LastUpdated = now
		data, err := json.Marshal(&d)
		if err != nil {
			return err
		}
		entry := badger.NewEntry(key, data)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		if err := txn.SetEntry(entry); err != nil {
			return err
		}
		doc = &d
		return nil
	})
	if err != nil || doc == nil {
		return nil, false, err
	}
	return doc, true, nil
}

// InvalidateUser drops every cached search document belonging to the
// user. The delete is idempotent and retried a few times before the error
// is handed back.
func (c *Cache) InvalidateUser(userID string) error {
	prefix := userSearchPrefix(userID)

	var err error
	for attempt := 0; attempt < invalidateRetries; attempt++ {
		err = c.dropPrefix(prefix)
		if err == nil {
			return nil
		}
	}
	return err
}

// dropPrefix deletes every key under the given prefix in one transaction.
func (c *Cache) dropPrefix(prefix []byte) error {
	return c.update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := txn.Delete(it.Item().KeyCopy(nil)); err != nil {
				return err
			}
		}
		return nil
	})
}
