package adapter

import (
	"github.com/vanderheijden86/flexlist/pkg/model"
	"github.com/vanderheijden86/flexlist/pkg/selection"
)

// Mode returns the selection mode.
func (l *List) Mode() selection.Mode { return l.sel.Mode() }

// SetMode switches the selection mode.
func (l *List) SetMode(m selection.Mode) {
	l.sel.SetMode(m)
	l.refreshSelectionFlags()
}

// IsSelected reports whether the row at pos is selected.
func (l *List) IsSelected(pos int) bool { return l.sel.IsSelected(pos) }

// SelectedCount returns the number of selected rows.
func (l *List) SelectedCount() int { return l.sel.Count() }

// SelectedPositions returns the selected rows in ascending order.
func (l *List) SelectedPositions() []int { return l.sel.Positions() }

// SelectedItems returns the selected items in row order.
func (l *List) SelectedItems() []model.Item {
	ps := l.sel.Positions()
	out := make([]model.Item, 0, len(ps))
	for _, p := range ps {
		out = append(out, l.items[p])
	}
	return out
}

func (l *List) selectable(pos int) bool {
	it := l.Item(pos)
	return it != nil && it.Enabled() && it.Selectable()
}

// isChildRow reports whether the row is a materialized child.
func (l *List) isChildRow(it model.Item) bool { return l.parents[it.ID()] != nil }

// level returns how many parents it has; top-level rows are level 0.
func (l *List) level(it model.Item) int {
	n := 0
	for p := l.parents[it.ID()]; p != nil; p = l.parents[p.ID()] {
		n++
	}
	return n
}

// ToggleSelection flips the selection of the row at pos. Top-level rows
// and children are never selected together, and selected children all
// share one level.
func (l *List) ToggleSelection(pos int) bool {
	if !l.selectable(pos) {
		l.warn("toggle_selection", pos, "row is not selectable")
		return false
	}
	it := l.items[pos]
	if !l.sel.IsSelected(pos) {
		switch {
		case l.isChildRow(it) && l.parentSelected:
			l.warn("toggle_selection", pos, "a top-level row is selected")
			return false
		case l.isChildRow(it) && l.childSelected && l.level(it) != l.selectedLevel:
			l.warn("toggle_selection", pos, "children of another level are selected")
			return false
		case !l.isChildRow(it) && l.childSelected:
			l.warn("toggle_selection", pos, "a child is selected")
			return false
		}
	}
	ok := l.sel.Toggle(pos)
	l.refreshSelectionFlags()
	return ok
}

// SelectAll selects every selectable row not rejected by skip, keeping
// to children of the selected level when a child is already selected and
// to top-level rows otherwise. It only works in Multi mode.
func (l *List) SelectAll(skip func(model.Item) bool) int {
	if l.sel.Mode() != selection.Multi {
		l.warn("select_all", NoPosition, "select all needs multi mode")
		return 0
	}
	level := 0
	if l.childSelected {
		level = l.selectedLevel
	}
	n := l.sel.SelectAll(len(l.items), func(pos int) bool {
		it := l.items[pos]
		if !l.selectable(pos) || (skip != nil && skip(it)) {
			return false
		}
		return l.level(it) == level
	})
	l.refreshSelectionFlags()
	return n
}

// ClearSelection deselects every row, one notification per row.
func (l *List) ClearSelection() {
	l.sel.Clear()
	l.refreshSelectionFlags()
}

func (l *List) refreshSelectionFlags() {
	l.parentSelected, l.childSelected = false, false
	l.selectedLevel = -1
	for _, p := range l.sel.Positions() {
		it := l.items[p]
		if l.isChildRow(it) {
			l.childSelected = true
			l.selectedLevel = l.level(it)
		} else {
			l.parentSelected = true
		}
	}
}
