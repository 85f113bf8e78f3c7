// Package normalize provides filter normalization and cache-key construction
// for the query cache. Two requests that mean the same query must normalize
// to the same key, so key construction lives in one place.
package normalize

import (
	"slices"
	"strings"
)

// Text lowercases and trims a free-text filter. Empty text means
// "no text filter" and normalizes to the empty string.
func Text(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// TagName lowercases and trims a tag label. Tag names are stored in this
// form, so upsert lookups and filter matching share it.
func TagName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// TagNames normalizes a list of tag labels, dropping empties and
// duplicates while preserving first-seen order.
func TagNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = TagName(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// TagIDs deduplicates and sorts a tag-id filter ascending. Empty and
// nil inputs both normalize to an empty slice.
func TagIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// SearchKey builds the cache key for a (text, tagIDs) filter. Inputs are
// normalized first, so equivalent filters always produce identical keys:
//
//	SearchKey(" Work ", []string{"b", "a"}) == SearchKey("work", []string{"a", "b"})
func SearchKey(text string, tagIDs []string) string {
	return Text(text) + "|" + strings.Join(TagIDs(tagIDs), ",")
}
