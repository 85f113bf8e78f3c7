package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/notivo/notivo-server/internal/cache"
	"github.com/notivo/notivo-server/internal/ratelimit"
	"github.com/notivo/notivo-server/internal/service"
	"github.com/notivo/notivo-server/internal/store/sqlite"
	"github.com/notivo/notivo-server/internal/validation"
)

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api humatest.TestAPI
}

func setupTestServer(t *testing.T) *testServer {
	return setupTestServerWithLimiter(t, nil)
}

func setupTestServerWithLimiter(t *testing.T, limiter *ratelimit.KeyedRateLimiter) *testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	c, err := cache.Open(t.TempDir(), 24*time.Hour, logger)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	materializer := service.NewMaterializer(st)
	services := &Services{
		Note: service.NewNoteService(st, c, materializer, logger),
		Tag:  service.NewTagService(st, c, logger),
		User: service.NewUserService(st, c, logger),
	}

	s := NewServer(st, c, services, validation.New(), limiter, logger)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
	}
}

// registerUser registers a user through the API and returns its ID.
func (ts *testServer) registerUser(t *testing.T, username string) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/users", map[string]any{"username": username})
	require.Equal(t, http.StatusCreated, resp.Code, "registration failed: %s", resp.Body.String())

	var body UserResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.NotEmpty(t, body.ID)
	return body.ID
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, "healthy", body.Status)
	require.Equal(t, "healthy", body.Components["relational"].Status)
	require.Equal(t, "healthy", body.Components["cache"].Status)
	require.Equal(t, "sliding ttl 24h0m0s", body.Components["cache"].Message)
}
