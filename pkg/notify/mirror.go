package notify

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is recorded by a Mirror when an event addresses rows
// the mirror does not have.
var ErrOutOfRange = errors.New("event out of range")

type mirrorRow struct {
	id    string
	fresh bool
}

// Mirror replays events onto a copy of a list's ids. Inserted rows are
// unknown until Verify fills them from the real list, so Verify checks
// that every row which survived from the original snapshot ended up in
// the right place and that the lengths agree.
type Mirror struct {
	rows []mirrorRow
	err  error
}

// NewMirror snapshots ids.
func NewMirror(ids []string) *Mirror {
	m := &Mirror{rows: make([]mirrorRow, len(ids))}
	for i, id := range ids {
		m.rows[i] = mirrorRow{id: id}
	}
	return m
}

func (m *Mirror) fail(format string, args ...any) {
	if m.err == nil {
		m.err = fmt.Errorf("%w: "+format, append([]any{ErrOutOfRange}, args...)...)
	}
}

func (m *Mirror) ItemRangeInserted(start, count int) {
	if start < 0 || start > len(m.rows) || count < 0 {
		m.fail("insert(%d,%d) on %d rows", start, count, len(m.rows))
		return
	}
	fresh := make([]mirrorRow, count)
	for i := range fresh {
		fresh[i].fresh = true
	}
	m.rows = append(m.rows[:start], append(fresh, m.rows[start:]...)...)
}

func (m *Mirror) ItemRangeRemoved(start, count int) {
	if start < 0 || count < 0 || start+count > len(m.rows) {
		m.fail("remove(%d,%d) on %d rows", start, count, len(m.rows))
		return
	}
	m.rows = append(m.rows[:start], m.rows[start+count:]...)
}

func (m *Mirror) ItemRangeChanged(start, count int, _ Payload) {
	if start < 0 || count < 0 || start+count > len(m.rows) {
		m.fail("change(%d,%d) on %d rows", start, count, len(m.rows))
	}
}

func (m *Mirror) ItemMoved(from, to int) {
	if from < 0 || from >= len(m.rows) || to < 0 || to >= len(m.rows) {
		m.fail("move(%d,%d) on %d rows", from, to, len(m.rows))
		return
	}
	row := m.rows[from]
	m.rows = append(m.rows[:from], m.rows[from+1:]...)
	m.rows = append(m.rows[:to], append([]mirrorRow{row}, m.rows[to:]...)...)
}

// Len returns the current mirrored row count.
func (m *Mirror) Len() int { return len(m.rows) }

// Verify compares the mirror with the real list ids and, on success,
// adopts them as the new snapshot so replay can continue.
func (m *Mirror) Verify(ids []string) error {
	if m.err != nil {
		return m.err
	}
	if len(ids) != len(m.rows) {
		return fmt.Errorf("mirror has %d rows, list has %d", len(m.rows), len(ids))
	}
	for i, row := range m.rows {
		if !row.fresh && row.id != ids[i] {
			return fmt.Errorf("row %d: mirror has %q, list has %q", i, row.id, ids[i])
		}
	}
	for i, id := range ids {
		m.rows[i] = mirrorRow{id: id}
	}
	return nil
}
