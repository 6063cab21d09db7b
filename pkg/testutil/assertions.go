package testutil

import (
	"slices"
	"testing"

	"github.com/vanderheijden86/flexlist/pkg/model"
)

// AssertIDs verifies the ids of items in order.
func AssertIDs(t testing.TB, items []model.Item, want ...string) {
	t.Helper()
	if got := model.IDs(items); !slices.Equal(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}
}

// AssertNoDuplicateIDs verifies every id appears once.
func AssertNoDuplicateIDs(t testing.TB, items []model.Item) {
	t.Helper()
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if seen[it.ID()] {
			t.Errorf("duplicate id: %s", it.ID())
		}
		seen[it.ID()] = true
	}
}

// AssertContiguousSections verifies that the rows of each header form
// one run.
func AssertContiguousSections(t testing.TB, items []model.Item) {
	t.Helper()
	closed := make(map[string]bool)
	var current string
	for _, it := range items {
		h := model.HeaderOf(it)
		if h == nil {
			continue
		}
		if h.ID() == current {
			continue
		}
		if closed[h.ID()] {
			t.Errorf("section %s resumes at %s", h.ID(), it.ID())
		}
		if current != "" {
			closed[current] = true
		}
		current = h.ID()
	}
}
