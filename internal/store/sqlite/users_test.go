package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/notivo/notivo-server/internal/domain"
	"github.com/notivo/notivo-server/internal/errors"
	"github.com/notivo/notivo-server/internal/id"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "alice")

	got, err := s.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("expected alice, got %s", got.Username)
	}
	if !got.CreatedAt.Equal(u.CreatedAt) {
		t.Errorf("created_at mismatch: %v vs %v", got.CreatedAt, u.CreatedAt)
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "alice")

	dup := &domain.User{ID: id.MustGenerate("user"), Username: "alice", CreatedAt: time.Now().UTC()}
	err := s.CreateUser(ctx, dup)
	if !errors.Is(err, errors.ErrConflict) {
		t.Fatalf("expected conflict for duplicate username, got %v", err)
	}
}

func TestCreateUserUsernameCaseSensitive(t *testing.T) {
	s := newTestStore(t)

	// Uniqueness applies to the username exactly as stored, so "Alice"
	// and "alice" are distinct accounts.
	lower := mustCreateUser(t, s, "alice")
	upper := mustCreateUser(t, s, "Alice")

	users, err := s.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if lower.ID == upper.ID {
		t.Fatal("expected distinct user ids")
	}
}

func TestGetUserByIDNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUserByID(context.Background(), "user-missing")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "alice")
	mustCreateUser(t, s, "bob")

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}

func TestUserExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "alice")

	ok, err := s.UserExists(ctx, u.ID)
	if err != nil {
		t.Fatalf("user exists: %v", err)
	}
	if !ok {
		t.Error("expected user to exist")
	}

	ok, err = s.UserExists(ctx, "user-missing")
	if err != nil {
		t.Fatalf("user exists: %v", err)
	}
	if ok {
		t.Error("expected user to not exist")
	}
}

func TestGetUsersByIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustCreateUser(t, s, "alice")
	mustCreateUser(t, s, "bob")

	users, err := s.GetUsersByIDs(ctx, []string{a.ID, "user-missing"})
	if err != nil {
		t.Fatalf("get users by ids: %v", err)
	}
	if len(users) != 1 || users[0].ID != a.ID {
		t.Fatalf("expected only alice, got %d users", len(users))
	}

	users, err = s.GetUsersByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("get users by empty ids: %v", err)
	}
	if users != nil {
		t.Errorf("expected nil for empty input, got %v", users)
	}
}
