package adapter

import (
	"slices"
	"sort"
	"time"

	"github.com/vanderheijden86/flexlist/pkg/metrics"
	"github.com/vanderheijden86/flexlist/pkg/model"
	"github.com/vanderheijden86/flexlist/pkg/notify"
)

// record is a pending deletion. Items stay in the source (or in their
// parent's children) until the bin is emptied; l.deleted hides them.
type record struct {
	item   model.Item
	pos    int
	parent model.Expandable
}

// RemoveItem removes the row at pos. See RemoveItems.
func (l *List) RemoveItem(pos int) bool {
	return l.RemoveItems([]int{pos}) > 0
}

// RemoveRange removes count rows starting at start.
func (l *List) RemoveRange(start, count int) int {
	if count <= 0 {
		return 0
	}
	positions := make([]int, count)
	for i := range positions {
		positions[i] = start + i
	}
	return l.RemoveItems(positions)
}

// RemoveAll removes every row.
func (l *List) RemoveAll() int {
	return l.RemoveRange(0, len(l.items))
}

// RemoveItems removes the rows at positions and returns how many items
// went to the bin. An expanded item takes its materialized children with
// it. Rows are removed in descending order, one notification per
// contiguous run.
func (l *List) RemoveItems(positions []int) int {
	defer metrics.Timer(metrics.RemoveItems)()

	var ps []int
	for _, p := range positions {
		if l.valid(p) {
			ps = append(ps, p)
		} else {
			l.warn("remove", p, "position out of range")
		}
	}
	if len(ps) == 0 {
		return 0
	}
	slices.Sort(ps)
	ps = slices.Compact(ps)
	slices.Reverse(ps)

	chosen := make(map[string]bool, len(ps))
	for _, p := range ps {
		chosen[l.items[p].ID()] = true
	}

	var recs []record
	var rows []int // descending
	for _, p := range ps {
		it := l.items[p]
		if l.coveredBy(it, chosen) {
			continue
		}
		recs = append(recs, record{item: it, pos: p, parent: l.parents[it.ID()]})
		for q := p + l.blockSize(it); q >= p; q-- {
			rows = append(rows, q)
		}
	}

	for i := 0; i < len(rows); {
		end := rows[i]
		j := i + 1
		for j < len(rows) && rows[j] == rows[j-1]-1 {
			j++
		}
		start := rows[j-1]
		l.removeAt(start, end-start+1, false)
		i = j
	}

	for _, r := range recs {
		if r.parent != nil {
			if pp := l.indexOf(r.parent.ID()); pp != NoPosition {
				l.obs.ItemRangeChanged(pp, 1, notify.RemSubItem)
			}
		}
	}

	if l.permanentDelete {
		l.commit(recs)
		if l.onDeleteConfirmed != nil {
			l.onDeleteConfirmed(itemsOf(recs))
		}
	} else {
		for _, r := range recs {
			l.deleted[r.item.ID()] = true
			l.bin = append(l.bin, r)
		}
	}

	if l.removeOrphanHeaders && l.headersShown {
		l.removeOrphans()
	}
	l.refreshSelectionFlags()
	return len(recs)
}

// coveredBy reports whether an ancestor of it is among chosen.
func (l *List) coveredBy(it model.Item, chosen map[string]bool) bool {
	for p := l.parents[it.ID()]; p != nil; p = l.parents[p.ID()] {
		if chosen[p.ID()] {
			return true
		}
	}
	return false
}

func itemsOf(recs []record) []model.Item {
	out := make([]model.Item, len(recs))
	for i, r := range recs {
		out[i] = r.item
	}
	return out
}

// RestoreDeletedItems puts pending deletions back, newest first: top-level
// items at their recorded positions, children in their parent's order.
// Items the active filter rejects, children of collapsed or absent
// parents, and hidden items go back to the source only. A header goes
// back only while headers are shown and it is not already a row, and
// never below its first item. The bin is
// empty afterwards and the undo timer is cancelled.
func (l *List) RestoreDeletedItems() int {
	defer metrics.Timer(metrics.Restore)()
	l.stopUndoTimer()

	restored := 0
	for len(l.bin) > 0 {
		last := len(l.bin) - 1
		r := l.bin[last]
		l.bin = l.bin[:last]
		delete(l.deleted, r.item.ID())

		if !l.shown(r.item) {
			continue
		}
		var pos int
		if r.parent != nil {
			pp := l.indexOf(r.parent.ID())
			if pp == NoPosition || !r.parent.Expanded() {
				continue
			}
			pos = l.childRow(pp, r.parent, r.item)
		} else {
			if model.IsHeader(r.item) {
				if !l.headersShown || l.indexOf(r.item.ID()) != NoPosition {
					continue
				}
			} else if !l.keepTop(r.item) {
				continue
			}
			pos = min(max(r.pos, 0), len(l.items))
			for pos < len(l.items) && l.parents[l.items[pos].ID()] != nil {
				pos++
			}
		}

		rows := append([]model.Item{r.item}, l.expandedRows(r.item)...)
		l.insertAt(pos, rows, false)
		switch {
		case r.parent != nil:
			l.obs.ItemRangeChanged(l.indexOf(r.parent.ID()), 1, notify.Undo)
		case model.IsHeader(r.item):
			l.placeHeader(pos)
		default:
			l.ensureHeaderFor(pos)
		}
		restored++
	}
	return restored
}

// childRow returns the row where child it of the parent at parentPos
// belongs, from the order of the parent's children.
func (l *List) childRow(parentPos int, parent model.Expandable, it model.Item) int {
	pos := parentPos + 1
	for _, c := range parent.SubItems() {
		if c.ID() == it.ID() {
			break
		}
		if l.shown(c) {
			pos += 1 + l.blockSize(c)
		}
	}
	return pos
}

// EmptyBin makes every pending deletion permanent.
func (l *List) EmptyBin() {
	l.stopUndoTimer()
	recs := l.bin
	l.bin = nil
	l.commit(recs)
}

func (l *List) commit(recs []record) {
	if len(recs) == 0 {
		return
	}
	for _, r := range recs {
		id := r.item.ID()
		delete(l.deleted, id)
		match := func(it model.Item) bool { return it.ID() == id }
		if r.parent != nil {
			r.parent.SetSubItems(slices.DeleteFunc(slices.Clone(r.parent.SubItems()), match))
		} else {
			l.source = slices.DeleteFunc(l.source, match)
		}
	}
	l.reindex()
}

// DeletedItems returns the pending deletions, oldest first.
func (l *List) DeletedItems() []model.Item { return itemsOf(l.bin) }

// DeletedCount returns the number of pending deletions.
func (l *List) DeletedCount() int { return len(l.bin) }

// IsRestoreInTime reports whether there is anything left to restore.
func (l *List) IsRestoreInTime() bool { return len(l.bin) > 0 }

// IsPermanentDelete reports whether removal bypasses the bin.
func (l *List) IsPermanentDelete() bool { return l.permanentDelete }

// SetPermanentDelete toggles bypassing the bin. Turning it on commits
// what is already pending.
func (l *List) SetPermanentDelete(on bool) {
	l.permanentDelete = on
	if on && len(l.bin) > 0 {
		items := l.DeletedItems()
		l.EmptyBin()
		if l.onDeleteConfirmed != nil {
			l.onDeleteConfirmed(items)
		}
	}
}

// UndoTimeout returns the default undo window.
func (l *List) UndoTimeout() time.Duration { return l.undoTimeout }

// StartUndoTimer schedules the permanent commit of the pending
// deletions. When it fires, onConfirmed (or the list's delete callback
// when nil) receives the items and the bin is emptied. A restore or a
// new call cancels the previous timer. A non-positive timeout uses the
// list default. It reports false, arming nothing, when the list has no
// scheduler.
func (l *List) StartUndoTimer(timeout time.Duration, onConfirmed func([]model.Item)) bool {
	if l.scheduler == nil {
		l.warn("start_undo_timer", NoPosition, "no scheduler; removals stay pending")
		return false
	}
	if timeout <= 0 {
		timeout = l.undoTimeout
	}
	if onConfirmed == nil {
		onConfirmed = l.onDeleteConfirmed
	}
	l.stopUndoTimer()
	gen := l.undoGen
	l.undoTimer = l.scheduler.AfterFunc(timeout, func() {
		if gen != l.undoGen {
			return
		}
		l.undoTimer = nil
		if items := l.DeletedItems(); onConfirmed != nil && len(items) > 0 {
			onConfirmed(items)
		}
		l.EmptyBin()
	})
	return true
}

// UndoPending reports whether an undo timer is running.
func (l *List) UndoPending() bool { return l.undoTimer != nil }

func (l *List) stopUndoTimer() {
	if l.undoTimer != nil {
		l.undoTimer.Stop()
		l.undoTimer = nil
	}
	l.undoGen++
}

// relocateBin assigns every record its index in the full sequence the
// last build produced, so records restore next to the rows they were
// adjacent to. Records outside the sequence go last.
func (l *List) relocateBin(full map[string]int, n int) {
	for i := range l.bin {
		if p, ok := full[l.bin[i].item.ID()]; ok {
			l.bin[i].pos = p
		} else {
			l.bin[i].pos = n
		}
	}
	sort.SliceStable(l.bin, func(a, b int) bool { return l.bin[a].pos > l.bin[b].pos })
}
