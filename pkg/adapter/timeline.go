package adapter

import "slices"

// A record's position is where it goes back once every newer record has
// been restored. To remap records across a mutation that did not come
// from the bin, the rows and all record markers are laid out on one
// timeline, the mutation is applied to the rows, and each record's
// position is read back with the markers of older records ignored.

type slot struct {
	row int // row index, or -1 for a record marker
	rec int // bin index, or -1 for a row
}

type timeline struct {
	slots []slot
	rows  int
}

func newTimeline(rows int, bin []record) *timeline {
	tl := &timeline{rows: rows, slots: make([]slot, rows, rows+len(bin))}
	for i := range tl.slots {
		tl.slots[i] = slot{row: i, rec: -1}
	}
	for k := len(bin) - 1; k >= 0; k-- {
		p := min(max(bin[k].pos, 0), len(tl.slots))
		tl.slots = slices.Insert(tl.slots, p, slot{row: -1, rec: k})
	}
	return tl
}

// slotOfRow returns the slot index of row r, or the end of the timeline
// when r is one past the last row.
func (tl *timeline) slotOfRow(r int) int {
	for i, s := range tl.slots {
		if s.row == r {
			return i
		}
	}
	return len(tl.slots)
}

// insertRows places new rows right after row pos-1, so rows that attach
// to the row above (expanded children) stay ahead of its records.
func (tl *timeline) insertRows(pos, count int) {
	at := 0
	if pos > 0 {
		at = tl.slotOfRow(pos-1) + 1
	}
	for i := range tl.slots {
		if tl.slots[i].row >= pos {
			tl.slots[i].row += count
		}
	}
	fresh := make([]slot, count)
	for i := range fresh {
		fresh[i] = slot{row: pos + i, rec: -1}
	}
	tl.slots = slices.Insert(tl.slots, at, fresh...)
	tl.rows += count
}

func (tl *timeline) removeRows(start, count int) {
	tl.slots = slices.DeleteFunc(tl.slots, func(s slot) bool {
		return s.row >= start && s.row < start+count
	})
	for i := range tl.slots {
		if tl.slots[i].row >= start+count {
			tl.slots[i].row -= count
		}
	}
	tl.rows -= count
}

func (tl *timeline) moveRow(from, to int) {
	tl.removeRows(from, 1)
	tl.insertRows(to, 1)
}

// positions returns the remapped position of every record, indexed like
// the bin.
func (tl *timeline) positions(n int) []int {
	out := make([]int, n)
	for j, s := range tl.slots {
		if s.rec < 0 {
			continue
		}
		older := 0
		for _, prev := range tl.slots[:j] {
			if prev.rec >= 0 && prev.rec < s.rec {
				older++
			}
		}
		out[s.rec] = j - older
	}
	return out
}

// remapBin applies mutate to a timeline built from rowsBefore rows and
// the pending records, then stores the remapped positions.
func (l *List) remapBin(rowsBefore int, mutate func(*timeline)) {
	if len(l.bin) == 0 {
		return
	}
	tl := newTimeline(rowsBefore, l.bin)
	mutate(tl)
	for k, p := range tl.positions(len(l.bin)) {
		l.bin[k].pos = p
	}
}
