package adapter

import (
	"testing"
	"time"

	"github.com/vanderheijden86/flexlist/pkg/model"
	"github.com/vanderheijden86/flexlist/pkg/notify"
)

// entries returns plain items whose title equals their id.
func entries(ids ...string) []model.Item {
	out := make([]model.Item, len(ids))
	for i, id := range ids {
		out[i] = model.NewEntry(id, id)
	}
	return out
}

func rowIDs(l *List) []string { return model.IDs(l.Items()) }

// watch attaches a Mirror to l and returns a check that fails the test
// when the replayed notifications no longer reproduce the rows.
func watch(t *testing.T, l *List) func() {
	t.Helper()
	m := notify.NewMirror(rowIDs(l))
	l.Observe(m)
	return func() {
		t.Helper()
		if err := m.Verify(rowIDs(l)); err != nil {
			t.Fatalf("replay diverged: %v (rows %v)", err, rowIDs(l))
		}
	}
}

func assertRows(t *testing.T, l *List, want ...string) {
	t.Helper()
	got := rowIDs(l)
	if len(got) != len(want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("rows = %v, want %v", got, want)
		}
	}
}

type manualTimer struct {
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// manualScheduler runs timers only when fire is called.
type manualScheduler struct {
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) Timer {
	t := &manualTimer{f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) fire() {
	for _, t := range s.timers {
		if !t.stopped {
			t.stopped = true
			t.f()
		}
	}
}
