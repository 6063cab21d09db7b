package adapter

import (
	"slices"

	"github.com/vanderheijden86/flexlist/pkg/metrics"
	"github.com/vanderheijden86/flexlist/pkg/model"
	"github.com/vanderheijden86/flexlist/pkg/notify"
)

// IsExpanded reports whether the row at pos is an expanded item.
func (l *List) IsExpanded(pos int) bool {
	e, ok := l.Item(pos).(model.Expandable)
	return ok && e.Expanded()
}

// ExpandedPositions returns the positions of expanded rows.
func (l *List) ExpandedPositions() []int {
	var out []int
	for i := range l.items {
		if l.IsExpanded(i) {
			out = append(out, i)
		}
	}
	return out
}

// Expand materializes the children of the expandable row at pos right
// after it. It is a no-op for rows that are not expandable, already
// expanded, or without visible children.
func (l *List) Expand(pos int) bool {
	defer metrics.Timer(metrics.Expand)()
	return l.expand(pos, l.autoCollapse)
}

func (l *List) expand(pos int, autoCollapse bool) bool {
	if !l.valid(pos) {
		l.warn("expand", pos, "position out of range")
		return false
	}
	e, ok := l.items[pos].(model.Expandable)
	if !ok || e.Expanded() || len(l.visibleChildren(e)) == 0 {
		return false
	}

	if autoCollapse {
		for p := len(l.items) - 1; p >= 0; p-- {
			o, ok := l.items[p].(model.Expandable)
			if ok && o.ID() != e.ID() && o.Expanded() && o.Level() == e.Level() {
				l.collapse(p, false)
			}
		}
		pos = l.indexOf(e.ID())
	}

	e.SetExpanded(true)
	l.insertAt(pos+1, l.expandedRows(e), true)
	l.obs.ItemRangeChanged(pos, 1, notify.Expanded)
	return true
}

// Collapse removes the materialized children of the row at pos, nested
// expansions included. It is refused while one of those children is
// selected.
func (l *List) Collapse(pos int) bool {
	defer metrics.Timer(metrics.Collapse)()
	return l.collapse(pos, false)
}

func (l *List) collapse(pos int, force bool) bool {
	if !l.valid(pos) {
		l.warn("collapse", pos, "position out of range")
		return false
	}
	e, ok := l.items[pos].(model.Expandable)
	if !ok || !e.Expanded() {
		return false
	}
	n := l.blockSize(e)
	if !force && l.hasSelectedIn(pos+1, pos+n) {
		l.warn("collapse", pos, "refusing to collapse over a selected child")
		return false
	}
	collapseNested(e)
	l.removeAt(pos+1, n, true)
	l.obs.ItemRangeChanged(pos, 1, notify.Collapsed)
	l.refreshSelectionFlags()
	return true
}

func collapseNested(e model.Expandable) {
	e.SetExpanded(false)
	for _, c := range e.SubItems() {
		if ce, ok := c.(model.Expandable); ok && ce.Expanded() {
			collapseNested(ce)
		}
	}
}

func (l *List) hasSelectedIn(lo, hi int) bool {
	for _, p := range l.sel.Positions() {
		if p >= lo && p <= hi {
			return true
		}
	}
	return false
}

// ExpandAll expands every expandable row up to level, nested rows
// included as they appear. A negative level expands all levels.
func (l *List) ExpandAll(level int) int {
	count := 0
	for pos := 0; pos < len(l.items); pos++ {
		e, ok := l.items[pos].(model.Expandable)
		if !ok || e.Expanded() || (level >= 0 && e.Level() > level) {
			continue
		}
		if l.expand(pos, false) {
			count++
		}
	}
	return count
}

// CollapseAll collapses every expanded row at or below level.
func (l *List) CollapseAll(level int) int {
	count := 0
	for pos := len(l.items) - 1; pos >= 0; pos-- {
		e, ok := l.items[pos].(model.Expandable)
		if ok && e.Expanded() && e.Level() >= level && l.collapse(pos, false) {
			count++
		}
	}
	return count
}

// AddSubItem inserts it as child subPos of the expandable row at
// parentPos. The new row appears at once when the parent is expanded;
// otherwise the parent is expanded when expandParent is set.
func (l *List) AddSubItem(parentPos, subPos int, it model.Item, expandParent bool) bool {
	if !l.valid(parentPos) || it == nil {
		l.warn("add_sub_item", parentPos, "position out of range")
		return false
	}
	p, ok := l.items[parentPos].(model.Expandable)
	if !ok {
		l.warn("add_sub_item", parentPos, "item is not expandable")
		return false
	}
	subs := p.SubItems()
	subPos = min(max(subPos, 0), len(subs))
	p.SetSubItems(slices.Insert(slices.Clone(subs), subPos, it))
	l.reindex()

	switch {
	case p.Expanded() && !it.Hidden():
		l.insertAt(l.childRow(parentPos, p, it), append([]model.Item{it}, l.expandedRows(it)...), true)
	case expandParent:
		l.expand(parentPos, false)
	}
	l.obs.ItemRangeChanged(parentPos, 1, notify.AddSubItem)
	return true
}

// RemoveSubItem removes child subPos of the expandable row at parentPos
// through the bin.
func (l *List) RemoveSubItem(parentPos, subPos int) bool {
	if !l.valid(parentPos) {
		l.warn("remove_sub_item", parentPos, "position out of range")
		return false
	}
	p, ok := l.items[parentPos].(model.Expandable)
	if !ok || subPos < 0 || subPos >= len(p.SubItems()) {
		l.warn("remove_sub_item", parentPos, "no such sub item")
		return false
	}
	child := p.SubItems()[subPos]
	if pos := l.indexOf(child.ID()); pos != NoPosition {
		return l.RemoveItem(pos)
	}
	if l.deleted[child.ID()] {
		return false
	}
	r := record{item: child, pos: parentPos + 1, parent: p}
	if l.permanentDelete {
		l.commit([]record{r})
		if l.onDeleteConfirmed != nil {
			l.onDeleteConfirmed([]model.Item{child})
		}
	} else {
		l.deleted[child.ID()] = true
		l.bin = append(l.bin, r)
	}
	l.obs.ItemRangeChanged(parentPos, 1, notify.RemSubItem)
	return true
}
