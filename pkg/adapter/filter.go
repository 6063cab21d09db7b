package adapter

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/vanderheijden86/flexlist/pkg/debug"
	"github.com/vanderheijden86/flexlist/pkg/metrics"
	"github.com/vanderheijden86/flexlist/pkg/model"
	"github.com/vanderheijden86/flexlist/pkg/notify"
)

// Normalize trims and lower-cases a search constraint.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// DefaultFilter matches when the item's title starts with constraint or
// any whitespace-separated word of it does. Items implementing
// model.Filterable decide for themselves.
func DefaultFilter(it model.Item, constraint string) bool {
	if f, ok := it.(model.Filterable); ok {
		return f.Filter(constraint)
	}
	title := strings.ToLower(it.Title())
	if strings.HasPrefix(title, constraint) {
		return true
	}
	for _, w := range strings.Fields(title) {
		if strings.HasPrefix(w, constraint) {
			return true
		}
	}
	return false
}

// SetSearchText stores the normalized filter text. It takes effect on
// the next FilterItems.
func (l *List) SetSearchText(text string) { l.searchText = Normalize(text) }

// SearchText returns the normalized filter text.
func (l *List) SearchText() string { return l.searchText }

// HasSearchText reports whether a filter is active.
func (l *List) HasSearchText() bool { return l.searchText != "" }

// HasNewSearchText reports whether text differs from the text of the
// last FilterItems.
func (l *List) HasNewSearchText(text string) bool { return Normalize(text) != l.oldSearchText }

// FilterItems re-derives the rows from the source with the current
// search text, excluding pending deletions, and animates the list to
// them. Pending deletions are relocated against the new rows.
func (l *List) FilterItems() {
	defer metrics.Timer(metrics.FilterItems)()
	defer debug.LogEnterExit("FilterItems")()

	rows, full := l.build()
	l.animateTo(rows, false)
	l.relocateBin(full, len(full))
	if l.searchText != "" && len(l.items) > 0 {
		l.obs.ItemRangeChanged(0, len(l.items), notify.Filter)
	}
	l.oldSearchText = l.searchText
	l.refreshSelectionFlags()
}

// keepTop reports whether a top-level item survives the filter.
func (l *List) keepTop(it model.Item) bool {
	if l.searchText == "" || model.IsHeader(it) {
		return true
	}
	return l.matchTree(it)
}

// matchTree matches it and its descendants. When some children match,
// the group is expanded and the other children are filtered out; when
// none do, the group stands on its own title and its children are left
// alone.
func (l *List) matchTree(it model.Item) bool {
	own := l.filter(it, l.searchText)
	e, ok := it.(model.Expandable)
	if !ok {
		return own
	}
	hit := false
	var miss []string
	for _, c := range e.SubItems() {
		if c.Hidden() {
			continue
		}
		if l.matchTree(c) {
			hit = true
		} else {
			miss = append(miss, c.ID())
		}
	}
	if !hit {
		return own
	}
	for _, id := range miss {
		l.filteredOut[id] = true
	}
	e.SetExpanded(true)
	return true
}

// build derives rows from the source. full maps every row id, and every
// pending deletion the filter would show, to its index in the sequence
// obtained if all pending deletions were restored.
func (l *List) build() (rows []model.Item, full map[string]int) {
	clear(l.filteredOut)
	full = make(map[string]int)
	seen := make(map[string]bool)
	n := 0

	var walk func(items []model.Item, top, pending bool)
	walk = func(items []model.Item, top, pending bool) {
		for _, it := range items {
			if it.Hidden() || l.filteredOut[it.ID()] || (top && !l.keepTop(it)) {
				continue
			}
			gone := pending || l.deleted[it.ID()]
			if top && l.headersShown && !gone {
				if h := model.HeaderOf(it); h != nil && !seen[h.ID()] {
					seen[h.ID()] = true
					full[h.ID()] = n
					n++
					if !l.deleted[h.ID()] {
						rows = append(rows, h)
					}
				}
			}
			full[it.ID()] = n
			n++
			if !gone {
				rows = append(rows, it)
			}
			if e, ok := it.(model.Expandable); ok && e.Expanded() {
				walk(e.SubItems(), false, gone)
			}
		}
	}
	walk(l.source, true, false)
	return rows, full
}

// animateTo turns the rows into target with the fewest range
// notifications, using a line diff over the row ids.
func (l *List) animateTo(target []model.Item, adjust bool) {
	defer metrics.Timer(metrics.AnimateTo)()

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	a, b, _ := dmp.DiffLinesToRunes(joinIDs(l.items), joinIDs(target))
	diffs := dmp.DiffMainRunes(a, b, false)

	pos, ti := 0, 0
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			copy(l.items[pos:pos+n], target[ti:ti+n])
			pos += n
			ti += n
		case diffmatchpatch.DiffDelete:
			l.removeAt(pos, n, adjust)
		case diffmatchpatch.DiffInsert:
			l.insertAt(pos, slices.Clone(target[ti:ti+n]), adjust)
			pos += n
			ti += n
		}
	}
	debug.Assertf(len(l.items) == len(target), "animateTo ended with %d rows, want %d", len(l.items), len(target))
}

func joinIDs(items []model.Item) string {
	var sb strings.Builder
	for _, it := range items {
		sb.WriteString(it.ID())
		sb.WriteByte('\n')
	}
	return sb.String()
}
