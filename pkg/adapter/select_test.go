package adapter

import (
	"slices"
	"testing"

	"github.com/vanderheijden86/flexlist/pkg/model"
	"github.com/vanderheijden86/flexlist/pkg/notify"
	"github.com/vanderheijden86/flexlist/pkg/selection"
)

func TestToggleSelection_Modes(t *testing.T) {
	cases := []struct {
		mode selection.Mode
		want []int
	}{
		{selection.Single, []int{2}},
		{selection.Multi, []int{0, 2}},
		{selection.Idle, nil},
	}
	for _, c := range cases {
		t.Run(c.mode.String(), func(t *testing.T) {
			l := New(entries("a", "b", "c"), WithMode(c.mode))
			l.ToggleSelection(0)
			l.ToggleSelection(2)
			if got := l.SelectedPositions(); !slices.Equal(got, c.want) {
				t.Errorf("selected = %v, want %v", got, c.want)
			}
		})
	}
}

func TestToggleSelection_ParentChildExclusive(t *testing.T) {
	l, _ := groupList(true) // g c1 c2 x

	if !l.ToggleSelection(0) {
		t.Fatal("selecting the group failed")
	}
	if l.ToggleSelection(1) {
		t.Error("a child must not be selectable while its group is")
	}
	if !l.ToggleSelection(3) {
		t.Error("plain top-level rows stay selectable")
	}

	l.ClearSelection()
	if !l.ToggleSelection(1) {
		t.Fatal("selecting a child after clear failed")
	}
	if l.ToggleSelection(0) {
		t.Error("a group must not be selectable while a child is")
	}
}

func TestToggleSelection_PlainTopLevelRowVersusChild(t *testing.T) {
	l, _ := groupList(true) // g c1 c2 x
	if !l.ToggleSelection(1) {
		t.Fatal("selecting a child failed")
	}
	if l.ToggleSelection(3) {
		t.Error("a plain top-level row must not join a selected child")
	}
	if got := l.SelectedPositions(); !slices.Equal(got, []int{1}) {
		t.Errorf("selected = %v, want [1]", got)
	}
}

func TestToggleSelection_ChildrenShareLevel(t *testing.T) {
	inner := model.NewGroup("in", "in", 1, entries("d1")...)
	inner.SetExpanded(true)
	g := model.NewGroup("g", "g", 0, model.NewEntry("c1", "c1"), inner)
	g.SetExpanded(true)
	l := New([]model.Item{g})
	assertRows(t, l, "g", "c1", "in", "d1")

	if !l.ToggleSelection(1) {
		t.Fatal("selecting c1 failed")
	}
	if l.ToggleSelection(3) {
		t.Error("d1 is one level deeper than c1 and must be refused")
	}
	if !l.ToggleSelection(2) {
		t.Error("in shares c1's level")
	}
	if n := l.SelectAll(nil); n != 0 {
		t.Errorf("SelectAll added %d rows outside the selected level", n)
	}

	l.ClearSelection()
	if !l.ToggleSelection(3) {
		t.Fatal("selecting d1 alone failed")
	}
	if l.ToggleSelection(1) {
		t.Error("c1 must be refused while d1 is selected")
	}
}

func TestToggleSelection_DisabledAndHeaders(t *testing.T) {
	items := entries("a", "b")
	items[1].(*model.Entry).SetEnabled(false)
	items = append(items, model.NewHeader("h", "h"))
	l := New(items)
	if l.ToggleSelection(1) || l.ToggleSelection(2) || l.ToggleSelection(7) {
		t.Error("disabled rows, headers and bad positions must not be selectable")
	}
}

func TestSelectAll(t *testing.T) {
	l, _ := groupList(true) // g c1 c2 x
	if n := l.SelectAll(nil); n != 2 {
		t.Errorf("SelectAll = %d, want the 2 top-level rows", n)
	}
	if got := l.SelectedPositions(); !slices.Equal(got, []int{0, 3}) {
		t.Errorf("selected = %v", got)
	}

	l.ClearSelection()
	l.ToggleSelection(1)
	l.SelectAll(nil)
	if got := l.SelectedPositions(); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("with a child selected, SelectAll must stay on children: %v", got)
	}

	l.ClearSelection()
	l.SelectAll(func(it model.Item) bool { return it.ID() == "x" })
	if got := l.SelectedPositions(); !slices.Equal(got, []int{0}) {
		t.Errorf("skip not honored: %v", got)
	}

	l.SetMode(selection.Single)
	if got := l.SelectAll(nil); got != 0 {
		t.Errorf("SelectAll in single mode = %d, want 0", got)
	}
}

func TestClearSelection_NotifiesEachRow(t *testing.T) {
	l := New(entries("a", "b", "c"))
	l.ToggleSelection(0)
	l.ToggleSelection(2)
	rec := &notify.Recorder{}
	l.Observe(rec)
	l.ClearSelection()
	if rec.Count(notify.Changed) != 2 {
		t.Errorf("events = %v, want two selection changes", rec.Events)
	}
	for _, e := range rec.Events {
		if e.Payload != notify.Selection {
			t.Errorf("payload = %s, want selection", e.Payload)
		}
	}
	if l.SelectedCount() != 0 {
		t.Error("selection not cleared")
	}
}

func TestSelection_FollowsRows(t *testing.T) {
	l := New(entries("a", "b", "c"))
	l.ToggleSelection(1)

	l.AddItem(0, model.NewEntry("x", "x"))
	if !l.IsSelected(2) {
		t.Fatalf("selection did not follow insert: %v", l.SelectedPositions())
	}
	l.RemoveItem(0)
	if !l.IsSelected(1) {
		t.Fatalf("selection did not follow removal: %v", l.SelectedPositions())
	}
	if got := model.IDs(l.SelectedItems()); !slices.Equal(got, []string{"b"}) {
		t.Errorf("SelectedItems = %v", got)
	}
	l.RemoveItem(1)
	if l.SelectedCount() != 0 {
		t.Error("removing the selected row must drop it from the selection")
	}
}

func TestSetMode_IdleClears(t *testing.T) {
	l := New(entries("a", "b"))
	l.ToggleSelection(0)
	l.SetMode(selection.Idle)
	if l.SelectedCount() != 0 || l.Mode() != selection.Idle {
		t.Error("switching to idle must clear the selection")
	}
}
