// Package service provides the business logic layer of the Notivo
// server: write orchestration over the relational store, cache
// invalidation fan-out, and cache-aside reads.
package service

import (
	"context"
	"sync/atomic"

	"github.com/notivo/notivo-server/internal/domain"
	"github.com/notivo/notivo-server/internal/store/sqlite"
)

// Materializer builds the denormalized view of everything a user can see
// by querying the relational store. It is the slow path behind the search
// cache; Calls exposes how often it ran so cache behavior is observable.
type Materializer struct {
	store *sqlite.Store
	calls atomic.Int64
}

// NewMaterializer creates a materializer over the relational store.
func NewMaterializer(store *sqlite.Store) *Materializer {
	return &Materializer{store: store}
}

// Materialize returns the full, unfiltered set of notes visible to the
// user, newest first. Unknown users get an empty set.
func (m *Materializer) Materialize(ctx context.Context, userID string) ([]*domain.NoteView, error) {
	m.calls.Add(1)
	return m.store.VisibleNotes(ctx, userID)
}

// Calls reports how many times the relational store was consulted.
func (m *Materializer) Calls() int64 {
	return m.calls.Load()
}
