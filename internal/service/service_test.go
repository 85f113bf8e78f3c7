package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/notivo/notivo-server/internal/cache"
	"github.com/notivo/notivo-server/internal/domain"
	"github.com/notivo/notivo-server/internal/store/sqlite"
)

// testEnv bundles the services over one temporary store and cache.
type testEnv struct {
	store        *sqlite.Store
	cache        *cache.Cache
	materializer *Materializer
	notes        *NoteService
	tags         *TagService
	users        *UserService
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	c, err := cache.Open(t.TempDir(), 24*time.Hour, logger)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	m := NewMaterializer(s)
	return &testEnv{
		store:        s,
		cache:        c,
		materializer: m,
		notes:        NewNoteService(s, c, m, logger),
		tags:         NewTagService(s, c, logger),
		users:        NewUserService(s, c, logger),
	}
}

func (e *testEnv) register(t *testing.T, username string) *domain.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), username)
	require.NoError(t, err)
	return u
}
