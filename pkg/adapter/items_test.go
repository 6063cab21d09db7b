package adapter

import (
	"fmt"
	"slices"
	"testing"

	"github.com/vanderheijden86/flexlist/pkg/model"
	"github.com/vanderheijden86/flexlist/pkg/notify"
)

func TestAddItem(t *testing.T) {
	l := New(entries("a", "b"))
	check := watch(t, l)

	if l.AddItem(-1, model.NewEntry("n", "n")) {
		t.Error("negative position must be rejected")
	}
	l.AddItem(99, model.NewEntry("z", "z"))
	l.AddItems(1, entries("x", "y"))
	assertRows(t, l, "a", "x", "y", "b", "z")
	if got := model.IDs(l.Source()); !slices.Equal(got, []string{"a", "x", "y", "b", "z"}) {
		t.Errorf("source = %v", got)
	}
	check()
}

func TestAddItem_SkipsChildRows(t *testing.T) {
	g := model.NewGroup("g", "g", 0, entries("c1", "c2")...)
	g.SetExpanded(true)
	l := New([]model.Item{model.NewEntry("a", "a"), g, model.NewEntry("d", "d")})
	check := watch(t, l)

	l.AddItem(3, model.NewEntry("x", "x"))
	assertRows(t, l, "a", "g", "c1", "c2", "x", "d")
	if got := model.IDs(l.Source()); !slices.Equal(got, []string{"a", "g", "x", "d"}) {
		t.Errorf("source = %v", got)
	}
	check()
}

func TestAddItem_SurvivesFilter(t *testing.T) {
	l := New(entries("apple", "banana"))
	l.SetSearchText("ap")
	l.FilterItems()
	l.AddItem(1, model.NewEntry("avocado", "avocado"))
	l.SetSearchText("")
	l.FilterItems()
	assertRows(t, l, "apple", "avocado", "banana")
}

func TestMoveItem(t *testing.T) {
	l := New(entries("a", "b", "c", "d"))
	rec := &notify.Recorder{}
	l.Observe(rec)
	check := watch(t, l)
	l.ToggleSelection(1)
	rec.Reset()

	if !l.MoveItem(1, 3) {
		t.Fatal("MoveItem failed")
	}
	want := []notify.Event{
		{Kind: notify.Moved, Start: 1, Count: 1, To: 3},
		{Kind: notify.Changed, Start: 3, Count: 1, Payload: notify.Move},
	}
	if fmt.Sprint(rec.Events) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", rec.Events, want)
	}
	assertRows(t, l, "a", "c", "d", "b")
	if !l.IsSelected(3) {
		t.Errorf("selection did not follow the move: %v", l.SelectedPositions())
	}
	if got := model.IDs(l.Source()); !slices.Equal(got, []string{"a", "c", "d", "b"}) {
		t.Errorf("source = %v", got)
	}
	check()
}

func TestMoveItem_ExpandedGroup(t *testing.T) {
	g := model.NewGroup("g", "g", 0, entries("c1", "c2")...)
	g.SetExpanded(true)
	l := New([]model.Item{model.NewEntry("a", "a"), g, model.NewEntry("d", "d")})
	check := watch(t, l)

	l.MoveItem(1, 4)
	assertRows(t, l, "a", "d", "g", "c1", "c2")
	check()

	if l.MoveItem(3, 0) {
		t.Error("a child cannot move out of its group")
	}
	l.MoveItem(4, 3)
	assertRows(t, l, "a", "d", "g", "c2", "c1")
	if got := model.IDs(g.SubItems()); !slices.Equal(got, []string{"c2", "c1"}) {
		t.Errorf("children = %v", got)
	}
	check()
}

func TestSwapItems(t *testing.T) {
	l := New(entries("a", "b", "c", "d"))
	rec := &notify.Recorder{}
	l.Observe(rec)
	check := watch(t, l)

	l.SwapItems(0, 3)
	assertRows(t, l, "d", "b", "c", "a")
	if rec.Count(notify.Moved) != 2 {
		t.Errorf("non-adjacent swap must take two moves: %v", rec.Events)
	}
	rec.Reset()
	l.SwapItems(1, 2)
	assertRows(t, l, "d", "c", "b", "a")
	if rec.Count(notify.Moved) != 1 {
		t.Errorf("adjacent swap must take one move: %v", rec.Events)
	}
	if got := model.IDs(l.Source()); !slices.Equal(got, []string{"d", "c", "b", "a"}) {
		t.Errorf("source = %v", got)
	}
	check()
}

func TestUpdateDataSet(t *testing.T) {
	l := New(entries("a", "b", "c"))
	l.ToggleSelection(1)
	l.RemoveItem(2)
	rec := &notify.Recorder{}
	l.Observe(rec)
	check := watch(t, l)

	g := model.NewGroup("g", "g", 0, model.NewEntry("g1", "g1"))
	g.SetExpanded(true)
	l.UpdateDataSet([]model.Item{g, model.NewEntry("z", "z")}, false)

	assertRows(t, l, "g", "g1", "z")
	want := []notify.Event{
		{Kind: notify.Removed, Start: 0, Count: 2},
		{Kind: notify.Inserted, Start: 0, Count: 3},
	}
	if fmt.Sprint(rec.Structural()) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", rec.Structural(), want)
	}
	if l.SelectedCount() != 0 || l.DeletedCount() != 0 {
		t.Error("selection and bin must be reset")
	}
	check()
}

func TestUpdateDataSet_Animated(t *testing.T) {
	items := entries("a", "b", "c")
	l := New(items)
	l.ToggleSelection(1)
	check := watch(t, l)

	l.UpdateDataSet([]model.Item{model.NewEntry("x", "x"), items[1], items[2]}, true)
	assertRows(t, l, "x", "b", "c")
	if !l.IsSelected(1) {
		t.Errorf("selection lost on a surviving row: %v", l.SelectedPositions())
	}
	check()
}

func TestUpdateItem(t *testing.T) {
	l := New(entries("a"))
	rec := &notify.Recorder{}
	l.Observe(rec)
	if !l.UpdateItem(0, notify.Change) || l.UpdateItem(3, notify.Change) {
		t.Error("UpdateItem must accept valid rows only")
	}
	if len(rec.Events) != 1 || rec.Events[0].Payload != notify.Change {
		t.Errorf("events = %v", rec.Events)
	}
}
