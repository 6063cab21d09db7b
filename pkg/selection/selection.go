// Package selection tracks the selected rows of a list.
//
// A Set keeps flat positions, but it is also a notify.Observer: attached
// to the list's change stream it renumbers itself on every insert,
// remove and move, so a selected row stays selected when rows above it
// come and go.
package selection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/flexlist/pkg/notify"
)

// Mode controls how toggling behaves.
type Mode int

const (
	// Idle disables selection.
	Idle Mode = iota
	// Single keeps at most one row selected.
	Single
	// Multi toggles rows independently.
	Multi
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Single:
		return "single"
	case Multi:
		return "multi"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode converts a config value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "idle":
		return Idle, nil
	case "single":
		return Single, nil
	case "multi":
		return Multi, nil
	default:
		return Idle, fmt.Errorf("unknown selection mode %q", s)
	}
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText decodes a mode name.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Set is an ordered set of selected positions.
type Set struct {
	mode      Mode
	positions []int // sorted ascending
	out       notify.Observer
}

// NewSet returns an empty Set. out receives one Selection change per
// row whose selection flips; it may be nil.
func NewSet(mode Mode, out notify.Observer) *Set {
	return &Set{mode: mode, out: out}
}

// Mode returns the current mode.
func (s *Set) Mode() Mode { return s.mode }

// SetMode switches mode. Switching to Idle clears the selection, and
// switching to Single clears it when more than one row is selected.
func (s *Set) SetMode(m Mode) {
	if m == Idle || (m == Single && len(s.positions) > 1) {
		s.Clear()
	}
	s.mode = m
}

func (s *Set) index(pos int) (int, bool) {
	i := sort.SearchInts(s.positions, pos)
	return i, i < len(s.positions) && s.positions[i] == pos
}

// IsSelected reports whether pos is selected.
func (s *Set) IsSelected(pos int) bool {
	_, ok := s.index(pos)
	return ok
}

// Count returns the number of selected rows.
func (s *Set) Count() int { return len(s.positions) }

// Positions returns the selected positions in ascending order.
func (s *Set) Positions() []int {
	return append([]int(nil), s.positions...)
}

func (s *Set) changed(pos int) {
	if s.out != nil {
		s.out.ItemRangeChanged(pos, 1, notify.Selection)
	}
}

// Add selects pos without regard to mode. It returns false if pos was
// already selected or is negative.
func (s *Set) Add(pos int) bool {
	if pos < 0 {
		return false
	}
	i, ok := s.index(pos)
	if ok {
		return false
	}
	s.positions = append(s.positions, 0)
	copy(s.positions[i+1:], s.positions[i:])
	s.positions[i] = pos
	s.changed(pos)
	return true
}

// Remove deselects pos.
func (s *Set) Remove(pos int) bool {
	i, ok := s.index(pos)
	if !ok {
		return false
	}
	s.positions = append(s.positions[:i], s.positions[i+1:]...)
	s.changed(pos)
	return true
}

// Toggle flips pos according to the mode. In Single mode any other
// selection is cleared first. In Idle mode nothing happens.
func (s *Set) Toggle(pos int) bool {
	if s.mode == Idle || pos < 0 {
		return false
	}
	if s.IsSelected(pos) {
		return s.Remove(pos)
	}
	if s.mode == Single {
		s.Clear()
	}
	return s.Add(pos)
}

// SelectAll selects every position in [0, count) accepted by keep, one
// notification per newly selected row. A nil keep accepts all.
func (s *Set) SelectAll(count int, keep func(pos int) bool) int {
	added := 0
	for pos := 0; pos < count; pos++ {
		if keep != nil && !keep(pos) {
			continue
		}
		if s.Add(pos) {
			added++
		}
	}
	return added
}

// Clear deselects every row, notifying each one individually.
func (s *Set) Clear() {
	for len(s.positions) > 0 {
		last := len(s.positions) - 1
		pos := s.positions[last]
		s.positions = s.positions[:last]
		s.changed(pos)
	}
}

// Restore replaces the selection with positions, dropping those that
// are negative or not accepted by valid.
func (s *Set) Restore(positions []int, valid func(pos int) bool) {
	s.Clear()
	for _, pos := range positions {
		if pos < 0 || (valid != nil && !valid(pos)) {
			continue
		}
		if s.mode == Single && len(s.positions) > 0 {
			break
		}
		s.Add(pos)
	}
}

// ItemRangeInserted shifts selected positions at or after start.
func (s *Set) ItemRangeInserted(start, count int) {
	for i := range s.positions {
		if s.positions[i] >= start {
			s.positions[i] += count
		}
	}
}

// ItemRangeRemoved drops selected positions in the removed range and
// shifts the ones after it.
func (s *Set) ItemRangeRemoved(start, count int) {
	out := s.positions[:0]
	for _, p := range s.positions {
		switch {
		case p < start:
			out = append(out, p)
		case p >= start+count:
			out = append(out, p-count)
		}
	}
	s.positions = out
}

// ItemRangeChanged is a no-op; changes do not move rows.
func (s *Set) ItemRangeChanged(int, int, notify.Payload) {}

// ItemMoved remaps selected positions for a row moving from one index to
// another.
func (s *Set) ItemMoved(from, to int) {
	if from == to {
		return
	}
	for i, p := range s.positions {
		switch {
		case p == from:
			s.positions[i] = to
		case from < to && p > from && p <= to:
			s.positions[i] = p - 1
		case to < from && p >= to && p < from:
			s.positions[i] = p + 1
		}
	}
	sort.Ints(s.positions)
}

var _ notify.Observer = (*Set)(nil)
