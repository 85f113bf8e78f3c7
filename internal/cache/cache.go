// Package cache provides the Badger-backed document cache that sits in
// front of the relational store: per-user search result documents with a
// sliding TTL, plus the auxiliary tags and contacts documents. Everything
// in here is derived data; the relational store can rebuild any entry.
package cache

import (
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// conflictRetries bounds read-modify-write retries when concurrent
// transactions collide.
const conflictRetries = 3

// Cache wraps a Badger database instance holding denormalized documents.
type Cache struct {
	db     *badger.DB
	logger *slog.Logger
	ttl    time.Duration

	// now is swapped out in tests to control TTL arithmetic.
	now func() time.Time
}

// Open creates the document cache at the given path. ttl is the sliding
// window for search documents; reads inside the window refresh it.
func Open(path string, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.SyncWrites = true
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("document cache opened", "path", path, "ttl", ttl)
	}

	return &Cache{db: db, logger: logger, ttl: ttl, now: time.Now}, nil
}

// Close gracefully closes the database connection.
func (c *Cache) Close() error {
	if c.logger != nil {
		c.logger.Info("closing document cache")
	}
	return c.db.Close()
}

// Ping verifies the database is readable.
func (c *Cache) Ping() error {
	err := c.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte("ping"))
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil
	}
	return err
}

// TTL returns the sliding window configured for search documents.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// get retrieves a document by key. Returns false when the key is absent.
func (c *Cache) get(key []byte, dest any) (bool, error) {
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// set stores a document by key, with an expiry when ttl > 0.
func (c *Cache) set(key []byte, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, data)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// update runs fn under db.Update, retrying on transaction conflicts.
func (c *Cache) update(fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < conflictRetries; attempt++ {
		err = c.db.Update(fn)
		if err != badger.ErrConflict {
			return err
		}
	}
	return err
}
