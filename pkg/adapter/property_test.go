package adapter

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/flexlist/pkg/model"
	"github.com/vanderheijden86/flexlist/pkg/notify"
)

// genItems draws top-level entries and groups, some under one of two
// shared headers, with groups nesting one more level.
func genItems(rt *rapid.T) []model.Item {
	headers := []model.Header{model.NewHeader("h0", "h0"), model.NewHeader("h1", "h1")}
	n := rapid.IntRange(0, 6).Draw(rt, "items")
	items := make([]model.Item, n)
	for i := range items {
		id := fmt.Sprintf("i%d", i)
		var it model.Item
		if kids := rapid.IntRange(0, 3).Draw(rt, "kids"); kids == 0 {
			it = model.NewEntry(id, id)
		} else {
			it = genGroup(rt, id, 0, kids)
		}
		if h := rapid.IntRange(-1, 1).Draw(rt, "header"); h >= 0 {
			it.(model.Sectionable).SetHeader(headers[h])
		}
		items[i] = it
	}
	return items
}

func genGroup(rt *rapid.T, id string, level, kids int) *model.Group {
	g := model.NewGroup(id, id, level)
	for k := 0; k < kids; k++ {
		cid := fmt.Sprintf("%s-%d", id, k)
		var c model.Item = model.NewEntry(cid, cid)
		if level == 0 && rapid.IntRange(0, 3).Draw(rt, "nested") == 0 {
			c = genGroup(rt, cid, 1, rapid.IntRange(1, 2).Draw(rt, "grandkids"))
		}
		g.SetSubItems(append(g.SubItems(), c))
	}
	g.SetExpanded(rapid.Bool().Draw(rt, "expanded"))
	return g
}

// assertConsistent checks that every expanded row is followed by exactly
// its visible children, that no pending deletion is a row, that header
// rows appear only while shown and never below an item of their
// section, and that the selection only holds selectable rows without
// mixing top-level rows with children or children of different levels.
func assertConsistent(rt *rapid.T, l *List) {
	seen := make(map[string]bool)
	headerRow := make(map[string]int)
	for p, it := range l.items {
		if seen[it.ID()] {
			rt.Fatalf("row %s appears twice: %v", it.ID(), rowIDs(l))
		}
		seen[it.ID()] = true
		if l.deleted[it.ID()] {
			rt.Fatalf("pending deletion %s is a row", it.ID())
		}
		if model.IsHeader(it) {
			if !l.headersShown {
				rt.Fatalf("header %s is a row while headers are hidden: %v", it.ID(), rowIDs(l))
			}
			headerRow[it.ID()] = p
		}
		if parent := l.parents[it.ID()]; parent != nil {
			pp := l.indexOf(parent.ID())
			if pp == NoPosition || pp > p || !parent.Expanded() {
				rt.Fatalf("child %s outside its parent's block: %v", it.ID(), rowIDs(l))
			}
		}
		for i, c := range l.expandedRows(it) {
			if q := p + 1 + i; q >= len(l.items) || l.items[q].ID() != c.ID() {
				rt.Fatalf("block of %s broken at %d: %v", it.ID(), q, rowIDs(l))
			}
		}
	}
	for p, it := range l.items {
		if !l.isTopLevel(it) {
			continue
		}
		if h := model.HeaderOf(it); h != nil {
			if hp, ok := headerRow[h.ID()]; ok && hp > p {
				rt.Fatalf("header %s below its item %s: %v", h.ID(), it.ID(), rowIDs(l))
			}
		}
	}

	top, children := false, false
	level := -1
	for _, p := range l.sel.Positions() {
		if !l.selectable(p) {
			rt.Fatalf("selected row %d is not selectable", p)
		}
		it := l.items[p]
		if !l.isChildRow(it) {
			top = true
			continue
		}
		children = true
		if level >= 0 && l.level(it) != level {
			rt.Fatalf("children of levels %d and %d selected: %v", level, l.level(it), l.sel.Positions())
		}
		level = l.level(it)
	}
	if top && children {
		rt.Fatalf("top-level rows and children selected together: %v", l.sel.Positions())
	}
}

func TestList_RandomOperationsReplay(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		l := New(genItems(rt), WithHeadersShown(rapid.Bool().Draw(rt, "headers")))
		m := notify.NewMirror(rowIDs(l))
		l.Observe(m)
		next := 0

		pos := func(label string) int {
			return rapid.IntRange(0, max(l.Len()-1, 0)).Draw(rt, label)
		}

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for s := 0; s < steps; s++ {
			switch rapid.IntRange(0, 14).Draw(rt, "op") {
			case 0:
				if l.Len() > 0 {
					l.RemoveItem(pos("remove"))
				}
			case 1:
				if l.Len() > 0 {
					l.RemoveItems([]int{pos("a"), pos("b"), pos("c")})
				}
			case 2:
				l.RestoreDeletedItems()
			case 3:
				l.Expand(pos("expand"))
			case 4:
				l.Collapse(pos("collapse"))
			case 5:
				l.ToggleSelection(pos("select"))
			case 6:
				next++
				id := fmt.Sprintf("n%d", next)
				l.AddItem(rapid.IntRange(0, l.Len()).Draw(rt, "add"), model.NewEntry(id, id))
			case 7:
				if l.Len() > 1 {
					l.MoveItem(pos("from"), pos("to"))
				}
			case 8:
				if l.Len() > 1 {
					l.SwapItems(pos("x"), pos("y"))
				}
			case 9:
				l.SetSearchText(rapid.SampledFrom([]string{"", "i1", "i2", "n"}).Draw(rt, "search"))
				l.FilterItems()
			case 10:
				l.EmptyBin()
			case 11:
				if l.AreHeadersShown() {
					l.HideAllHeaders()
				} else {
					l.ShowAllHeaders()
				}
			case 12:
				l.ExpandAll(rapid.IntRange(-1, 1).Draw(rt, "expand level"))
			case 13:
				l.CollapseAll(rapid.IntRange(0, 1).Draw(rt, "collapse level"))
			case 14:
				l.SelectAll(nil)
			}
			if err := m.Verify(rowIDs(l)); err != nil {
				rt.Fatalf("step %d: %v", s, err)
			}
			assertConsistent(rt, l)
		}

		l.SetSearchText("")
		l.FilterItems()
		l.RestoreDeletedItems()
		l.FilterItems()
		if err := m.Verify(rowIDs(l)); err != nil {
			rt.Fatal(err)
		}
		assertConsistent(rt, l)
	})
}
