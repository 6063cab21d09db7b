package notify

import (
	"errors"
	"testing"
)

func TestPayloadString(t *testing.T) {
	tests := []struct {
		p    Payload
		want string
	}{
		{Change, "change"},
		{Selection, "selection"},
		{Collapsed, "collapsed"},
		{Payload(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("Payload(%d).String() = %q, want %q", tt.p, got, tt.want)
		}
	}
}

func TestDispatcher_FansOutInOrder(t *testing.T) {
	var order []string
	var d Dispatcher
	d.Register(Funcs{Inserted: func(int, int) { order = append(order, "a") }})
	b := &Recorder{}
	d.Register(b)
	d.Register(nil)

	d.ItemRangeInserted(0, 2)
	d.ItemRangeChanged(1, 1, Selection)

	if len(order) != 1 || order[0] != "a" {
		t.Errorf("func observer calls = %v", order)
	}
	if len(b.Events) != 2 {
		t.Fatalf("recorder got %d events, want 2", len(b.Events))
	}
	if b.Events[1].Payload != Selection {
		t.Errorf("payload = %s, want selection", b.Events[1].Payload)
	}

	d.Unregister(b)
	d.ItemMoved(0, 1)
	if len(b.Events) != 2 {
		t.Errorf("unregistered observer still received events")
	}
	if d.Len() != 1 {
		t.Errorf("Len() = %d, want 1", d.Len())
	}
}

func TestMirror_ReplaysStructuralEvents(t *testing.T) {
	m := NewMirror([]string{"a", "b", "c", "d"})

	m.ItemRangeRemoved(1, 2) // a d
	m.ItemRangeInserted(1, 1)
	m.ItemMoved(0, 2) // ? d a

	if err := m.Verify([]string{"x", "d", "a"}); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	m.ItemMoved(2, 0)
	if err := m.Verify([]string{"a", "x", "d"}); err != nil {
		t.Fatalf("Verify after adopt: %v", err)
	}
}

func TestMirror_DetectsMismatch(t *testing.T) {
	m := NewMirror([]string{"a", "b"})
	m.ItemMoved(0, 1)
	if err := m.Verify([]string{"a", "b"}); err == nil {
		t.Error("expected mismatch error")
	}
}

func TestMirror_OutOfRange(t *testing.T) {
	m := NewMirror([]string{"a"})
	m.ItemRangeRemoved(0, 2)
	if err := m.Verify([]string{"a"}); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Verify error = %v, want ErrOutOfRange", err)
	}
}

func TestRecorder_Structural(t *testing.T) {
	r := &Recorder{}
	r.ItemRangeInserted(0, 1)
	r.ItemRangeChanged(0, 1, Change)
	r.ItemMoved(0, 1)
	if got := len(r.Structural()); got != 2 {
		t.Errorf("Structural() len = %d, want 2", got)
	}
	if r.Count(Changed) != 1 {
		t.Errorf("Count(Changed) = %d, want 1", r.Count(Changed))
	}
	r.Reset()
	if len(r.Events) != 0 {
		t.Errorf("Reset left %d events", len(r.Events))
	}
}
