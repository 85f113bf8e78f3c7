package sqlite

import (
	"context"
	"testing"
)

func TestUpsertTagsCreatesAndReuses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.UpsertTags(ctx, []string{"work", "urgent"})
	if err != nil {
		t.Fatalf("upsert tags: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(first))
	}

	second, err := s.UpsertTags(ctx, []string{"urgent", "home"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(second))
	}
	if second[0].ID != first[1].ID {
		t.Errorf("expected urgent to reuse existing id %s, got %s", first[1].ID, second[0].ID)
	}

	all, err := s.ListTags(ctx)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 tags total, got %d", len(all))
	}
}

func TestUpsertTagsEmpty(t *testing.T) {
	s := newTestStore(t)

	tags, err := s.UpsertTags(context.Background(), nil)
	if err != nil {
		t.Fatalf("upsert empty: %v", err)
	}
	if tags != nil {
		t.Errorf("expected nil, got %v", tags)
	}
}

func TestListTagsOrderedByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.UpsertTags(ctx, []string{"zebra", "alpha", "mango"}); err != nil {
		t.Fatalf("upsert tags: %v", err)
	}

	tags, err := s.ListTags(ctx)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	want := []string{"alpha", "mango", "zebra"}
	for i, name := range want {
		if tags[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, tags[i].Name)
		}
	}
}

func TestGetTagsByIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.UpsertTags(ctx, []string{"work", "home"})
	if err != nil {
		t.Fatalf("upsert tags: %v", err)
	}

	tags, err := s.GetTagsByIDs(ctx, []string{created[0].ID, "tag-missing"})
	if err != nil {
		t.Fatalf("get tags by ids: %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "work" {
		t.Fatalf("expected only work, got %d tags", len(tags))
	}
}
