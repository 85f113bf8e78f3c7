package normalize

import (
	"testing"
)

func TestText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  ", ""},
		{"Work", "work"},
		{" Project Plan ", "project plan"},
		{"ALREADY lower", "already lower"},
	}

	for _, tt := range tests {
		if got := Text(tt.in); got != tt.want {
			t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTagIDs_DedupeAndSort(t *testing.T) {
	got := TagIDs([]string{"b", "a", "b", " c ", ""})

	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("TagIDs: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TagIDs[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTagIDs_Empty(t *testing.T) {
	if got := TagIDs(nil); len(got) != 0 {
		t.Errorf("TagIDs(nil): got %v, want empty", got)
	}
	if got := TagIDs([]string{}); len(got) != 0 {
		t.Errorf("TagIDs([]): got %v, want empty", got)
	}
}

func TestTagNames_PreservesOrder(t *testing.T) {
	got := TagNames([]string{"Work", "URGENT", "work", "", "  home "})

	want := []string{"work", "urgent", "home"}
	if len(got) != len(want) {
		t.Fatalf("TagNames: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TagNames[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSearchKey_Idempotence(t *testing.T) {
	// Equivalent filters must produce identical cache keys.
	a := SearchKey("Work", []string{"b", "a"})
	b := SearchKey(" work ", []string{"a", "b"})
	if a != b {
		t.Errorf("equivalent filters produced different keys: %q vs %q", a, b)
	}

	if a != "work|a,b" {
		t.Errorf("key: got %q, want %q", a, "work|a,b")
	}
}

func TestSearchKey_EmptyFilter(t *testing.T) {
	if got := SearchKey("", nil); got != "|" {
		t.Errorf("empty filter key: got %q, want %q", got, "|")
	}
}

func TestSearchKey_DistinctFilters(t *testing.T) {
	// Different filters must not collide.
	keys := map[string]bool{}
	for _, k := range []string{
		SearchKey("", nil),
		SearchKey("plan", nil),
		SearchKey("", []string{"a"}),
		SearchKey("plan", []string{"a"}),
		SearchKey("plan", []string{"a", "b"}),
	} {
		if keys[k] {
			t.Errorf("duplicate key %q", k)
		}
		keys[k] = true
	}
}
