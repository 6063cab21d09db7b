package adapter

import (
	"slices"

	"github.com/vanderheijden86/flexlist/pkg/model"
	"github.com/vanderheijden86/flexlist/pkg/notify"
)

// AddItem inserts it at pos. See AddItems.
func (l *List) AddItem(pos int, it model.Item) bool {
	return l.AddItems(pos, []model.Item{it}) > 0
}

// AddItems inserts top-level items at pos, clamped to the row count and
// moved past any child rows so a group's block stays whole. The items
// also enter the source after the nearest preceding top-level row.
// A negative pos is rejected.
func (l *List) AddItems(pos int, items []model.Item) int {
	if pos < 0 {
		l.warn("add", pos, "negative position")
		return 0
	}
	items = slices.DeleteFunc(slices.Clone(items), func(it model.Item) bool { return it == nil })
	if len(items) == 0 {
		return 0
	}
	pos = min(pos, len(l.items))
	for pos < len(l.items) && l.parents[l.items[pos].ID()] != nil {
		pos++
	}

	at := 0
	for p := pos - 1; p >= 0; p-- {
		if it := l.items[p]; l.isTopLevel(it) {
			at = l.sourceIndex(it.ID()) + 1
			break
		}
	}
	l.source = slices.Insert(l.source, at, items...)
	l.reindex()

	var rows []model.Item
	for _, it := range items {
		if it.Hidden() {
			continue
		}
		rows = append(rows, it)
		rows = append(rows, l.expandedRows(it)...)
	}
	l.insertAt(pos, rows, true)
	for _, it := range items {
		if p := l.Position(it); p != NoPosition {
			l.ensureHeaderFor(p)
		}
	}
	return len(items)
}

func (l *List) sourceIndex(id string) int {
	return slices.IndexFunc(l.source, func(it model.Item) bool { return it.ID() == id })
}

// siblings returns the slice that holds it: its parent's children, or
// the source for top-level items.
func (l *List) siblings(it model.Item) []model.Item {
	if p := l.parents[it.ID()]; p != nil {
		return p.SubItems()
	}
	return l.source
}

func (l *List) setSiblings(it model.Item, items []model.Item) {
	if p := l.parents[it.ID()]; p != nil {
		p.SetSubItems(items)
		return
	}
	l.source = items
}

// movable reports whether the rows at a and b can trade places: both
// top-level, or both children of the same parent.
func (l *List) movable(op string, a, b int) bool {
	if !l.valid(a) || !l.valid(b) {
		l.warn(op, a, "position out of range")
		return false
	}
	x, y := l.items[a], l.items[b]
	if model.IsHeader(x) || model.IsHeader(y) {
		l.warn(op, a, "headers cannot be moved")
		return false
	}
	if l.parents[x.ID()] != l.parents[y.ID()] {
		l.warn(op, a, "items do not share a parent")
		return false
	}
	return true
}

// collapseFor collapses the rows of ids that are expanded, dropping any
// selection inside them, and returns the ids it collapsed.
func (l *List) collapseFor(ids ...string) []string {
	var out []string
	for _, id := range ids {
		if p := l.indexOf(id); l.IsExpanded(p) && l.collapse(p, true) {
			out = append(out, id)
		}
	}
	return out
}

func (l *List) reexpand(ids []string) {
	for _, id := range ids {
		if p := l.indexOf(id); p != NoPosition {
			l.expand(p, false)
		}
	}
}

// MoveItem moves the row at from so it ends up at to. Both rows must be
// top-level or share a parent. Expanded rows involved are collapsed for
// the move and expanded again afterwards. A header left below the moved
// item is moved up to it.
func (l *List) MoveItem(from, to int) bool {
	if from == to || !l.movable("move", from, to) {
		return false
	}
	it, target := l.items[from], l.items[to]
	collapsed := l.collapseFor(it.ID(), target.ID())
	from, to = l.indexOf(it.ID()), l.indexOf(target.ID())

	l.moveAt(from, to, true)

	sib := slices.DeleteFunc(slices.Clone(l.siblings(it)), func(c model.Item) bool { return c.ID() == it.ID() })
	i := slices.IndexFunc(sib, func(c model.Item) bool { return c.ID() == target.ID() })
	if from < to {
		i++
	}
	l.setSiblings(it, slices.Insert(sib, i, it))

	l.obs.ItemRangeChanged(to, 1, notify.Move)
	l.reexpand(collapsed)
	l.ensureHeaderFor(l.indexOf(it.ID()))
	return true
}

// SwapItems exchanges the rows at a and b. Non-adjacent rows take two
// moves.
func (l *List) SwapItems(a, b int) bool {
	if a == b || !l.movable("swap", a, b) {
		return false
	}
	x, y := l.items[a], l.items[b]
	collapsed := l.collapseFor(x.ID(), y.ID())
	lo, hi := l.indexOf(x.ID()), l.indexOf(y.ID())
	if lo > hi {
		lo, hi = hi, lo
	}

	l.moveAt(lo, hi, true)
	if hi-lo > 1 {
		l.moveAt(hi-1, lo, true)
	}

	sib := slices.Clone(l.siblings(x))
	i := slices.IndexFunc(sib, func(c model.Item) bool { return c.ID() == x.ID() })
	j := slices.IndexFunc(sib, func(c model.Item) bool { return c.ID() == y.ID() })
	sib[i], sib[j] = sib[j], sib[i]
	l.setSiblings(x, sib)

	l.obs.ItemRangeChanged(lo, 1, notify.Move)
	l.obs.ItemRangeChanged(hi, 1, notify.Move)
	l.reexpand(collapsed)
	l.ensureHeaderFor(l.indexOf(x.ID()))
	l.ensureHeaderFor(l.indexOf(y.ID()))
	return true
}

// UpdateDataSet replaces the source with items. Pending deletions are
// dropped without confirmation. Without animate the selection is cleared
// and the rows are replaced by one remove and one insert; with animate
// the rows transition by diff and the selection stays on surviving rows.
func (l *List) UpdateDataSet(items []model.Item, animate bool) {
	l.stopUndoTimer()
	l.bin = nil
	clear(l.deleted)
	l.source = slices.Clone(items)
	l.reindex()
	rows, _ := l.build()

	if animate {
		l.animateTo(rows, false)
	} else {
		l.sel.Clear()
		l.removeAt(0, len(l.items), false)
		l.insertAt(0, rows, false)
	}
	l.refreshSelectionFlags()
}
