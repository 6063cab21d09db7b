// Package adapter implements the list state core: a flat list of rows
// derived from an unfiltered source of items, kept consistent under
// expansion, selection, filtering, headers and undoable removal.
//
// Every mutation emits notify events that, replayed in order on a copy of
// the rows, reproduce the list exactly. A List is owned by one goroutine;
// the only deferred work, the undo timer, is handed back to the owner
// through the Scheduler's executor. A List built without WithScheduler
// never runs deferred work.
package adapter

import (
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vanderheijden86/flexlist/pkg/debug"
	"github.com/vanderheijden86/flexlist/pkg/model"
	"github.com/vanderheijden86/flexlist/pkg/notify"
	"github.com/vanderheijden86/flexlist/pkg/selection"
)

// DefaultUndoTimeout is how long removed items stay restorable.
const DefaultUndoTimeout = 5 * time.Second

// NoPosition is returned when an item is not in the list.
const NoPosition = -1

// FilterFunc reports whether it matches a normalized constraint.
type FilterFunc func(it model.Item, constraint string) bool

// Option configures a List.
type Option func(*List)

// WithLogger sets the logger used for warnings about ignored calls.
func WithLogger(l logrus.FieldLogger) Option {
	return func(list *List) {
		if l != nil {
			list.log = l
		}
	}
}

// WithMode sets the initial selection mode.
func WithMode(m selection.Mode) Option {
	return func(l *List) { l.mode = m }
}

// WithObserver registers an observer before the initial rows are built.
func WithObserver(o notify.Observer) Option {
	return func(l *List) { l.obs.Register(o) }
}

// WithScheduler sets the scheduler that runs the undo timer. Without one
// StartUndoTimer arms nothing and removals stay pending until the bin is
// emptied or restored.
func WithScheduler(s Scheduler) Option {
	return func(l *List) {
		if s != nil {
			l.scheduler = s
		}
	}
}

// WithUndoTimeout sets the default undo window.
func WithUndoTimeout(d time.Duration) Option {
	return func(l *List) {
		if d > 0 {
			l.undoTimeout = d
		}
	}
}

// WithDeleteConfirmed sets the callback that receives items whose
// removal became permanent.
func WithDeleteConfirmed(fn func([]model.Item)) Option {
	return func(l *List) { l.onDeleteConfirmed = fn }
}

// WithHeadersShown shows section headers from the start.
func WithHeadersShown(shown bool) Option {
	return func(l *List) { l.headersShown = shown }
}

// WithAutoCollapse makes expanding an item collapse the other expanded
// items of the same level.
func WithAutoCollapse(on bool) Option {
	return func(l *List) { l.autoCollapse = on }
}

// WithRemoveOrphanHeaders removes a header once its last item is removed.
func WithRemoveOrphanHeaders(on bool) Option {
	return func(l *List) { l.removeOrphanHeaders = on }
}

// WithPermanentDelete makes removal bypass the undo bin.
func WithPermanentDelete(on bool) Option {
	return func(l *List) { l.permanentDelete = on }
}

// WithFilter replaces the default prefix filter.
func WithFilter(fn FilterFunc) Option {
	return func(l *List) {
		if fn != nil {
			l.filter = fn
		}
	}
}

// List is the list state core.
type List struct {
	items   []model.Item // flat rows
	source  []model.Item // unfiltered top-level items
	parents map[string]model.Expandable
	deleted map[string]bool
	bin     []record

	sel            *selection.Set
	mode           selection.Mode
	parentSelected bool
	childSelected  bool
	selectedLevel  int // level of the selected children, or -1

	obs notify.Dispatcher
	log logrus.FieldLogger

	scheduler         Scheduler
	undoTimer         Timer
	undoGen           int
	undoTimeout       time.Duration
	onDeleteConfirmed func([]model.Item)

	searchText    string
	oldSearchText string
	filter        FilterFunc
	filteredOut   map[string]bool // children rejected by the active filter

	headersShown        bool
	autoCollapse        bool
	removeOrphanHeaders bool
	permanentDelete     bool
}

// New builds a List over items. Items already flagged expanded have
// their children materialized.
func New(items []model.Item, opts ...Option) *List {
	l := &List{
		deleted:       make(map[string]bool),
		filteredOut:   make(map[string]bool),
		log:           debug.Logger(),
		undoTimeout:   DefaultUndoTimeout,
		selectedLevel: -1,
		filter:        DefaultFilter,
		mode:          selection.Multi,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.sel = selection.NewSet(l.mode, &l.obs)
	l.source = slices.Clone(items)
	l.reindex()
	rows, _ := l.build()
	l.items = rows
	return l
}

// Observe registers o for change notifications.
func (l *List) Observe(o notify.Observer) { l.obs.Register(o) }

// StopObserving unregisters o.
func (l *List) StopObserving(o notify.Observer) { l.obs.Unregister(o) }

// Len returns the number of rows.
func (l *List) Len() int { return len(l.items) }

// Item returns the row at pos, or nil.
func (l *List) Item(pos int) model.Item {
	if pos < 0 || pos >= len(l.items) {
		return nil
	}
	return l.items[pos]
}

// Items returns a snapshot of the rows.
func (l *List) Items() []model.Item { return slices.Clone(l.items) }

// Source returns a snapshot of the unfiltered top-level items, pending
// deletions included.
func (l *List) Source() []model.Item { return slices.Clone(l.source) }

// Position returns the row index of it, or NoPosition.
func (l *List) Position(it model.Item) int {
	if it == nil {
		return NoPosition
	}
	return l.indexOf(it.ID())
}

// Contains reports whether it is currently a row.
func (l *List) Contains(it model.Item) bool { return l.Position(it) != NoPosition }

func (l *List) indexOf(id string) int {
	for i, it := range l.items {
		if it.ID() == id {
			return i
		}
	}
	return NoPosition
}

func (l *List) valid(pos int) bool { return pos >= 0 && pos < len(l.items) }

func (l *List) warn(op string, pos int, msg string) {
	l.log.WithFields(logrus.Fields{"op": op, "position": pos}).Warn(msg)
}

// UpdateItem notifies a change of the row at pos.
func (l *List) UpdateItem(pos int, payload notify.Payload) bool {
	if !l.valid(pos) {
		l.warn("update", pos, "position out of range")
		return false
	}
	l.obs.ItemRangeChanged(pos, 1, payload)
	return true
}

// reindex rebuilds the child to parent lookup from the source.
func (l *List) reindex() {
	l.parents = make(map[string]model.Expandable)
	var walk func(e model.Expandable)
	walk = func(e model.Expandable) {
		for _, c := range e.SubItems() {
			l.parents[c.ID()] = e
			if ce, ok := c.(model.Expandable); ok {
				walk(ce)
			}
		}
	}
	for _, it := range l.source {
		if e, ok := it.(model.Expandable); ok {
			walk(e)
		}
	}
}

// ExpandableOf returns the parent of it, or nil for top-level items.
func (l *List) ExpandableOf(it model.Item) model.Expandable {
	if it == nil {
		return nil
	}
	return l.parents[it.ID()]
}

// SiblingsOf returns the other children of it's parent.
func (l *List) SiblingsOf(it model.Item) []model.Item {
	p := l.ExpandableOf(it)
	if p == nil {
		return nil
	}
	var out []model.Item
	for _, c := range p.SubItems() {
		if c.ID() != it.ID() {
			out = append(out, c)
		}
	}
	return out
}

func (l *List) isTopLevel(it model.Item) bool {
	return l.parents[it.ID()] == nil && !model.IsHeader(it)
}

// shown reports whether a child can be a row: not hidden, not pending
// deletion and not rejected by the filter.
func (l *List) shown(it model.Item) bool {
	id := it.ID()
	return !it.Hidden() && !l.deleted[id] && !l.filteredOut[id]
}

func (l *List) visibleChildren(e model.Expandable) []model.Item {
	var out []model.Item
	for _, c := range e.SubItems() {
		if l.shown(c) {
			out = append(out, c)
		}
	}
	return out
}

// expandedRows returns the rows an expanded item contributes below
// itself, nested expansions included.
func (l *List) expandedRows(it model.Item) []model.Item {
	e, ok := it.(model.Expandable)
	if !ok || !e.Expanded() {
		return nil
	}
	var out []model.Item
	for _, c := range l.visibleChildren(e) {
		out = append(out, c)
		out = append(out, l.expandedRows(c)...)
	}
	return out
}

func (l *List) blockSize(it model.Item) int { return len(l.expandedRows(it)) }

// Low-level row mutations. adjust reports whether pending-deletion
// records must be remapped; the bin passes false for its own rows.

func (l *List) insertAt(pos int, rows []model.Item, adjust bool) {
	if len(rows) == 0 {
		return
	}
	before := len(l.items)
	l.items = slices.Insert(l.items, pos, rows...)
	l.sel.ItemRangeInserted(pos, len(rows))
	if adjust {
		l.remapBin(before, func(tl *timeline) { tl.insertRows(pos, len(rows)) })
	}
	l.obs.ItemRangeInserted(pos, len(rows))
}

func (l *List) removeAt(start, count int, adjust bool) []model.Item {
	if count <= 0 {
		return nil
	}
	before := len(l.items)
	removed := slices.Clone(l.items[start : start+count])
	l.items = slices.Delete(l.items, start, start+count)
	l.sel.ItemRangeRemoved(start, count)
	if adjust {
		l.remapBin(before, func(tl *timeline) { tl.removeRows(start, count) })
	}
	l.obs.ItemRangeRemoved(start, count)
	return removed
}

func (l *List) moveAt(from, to int, adjust bool) {
	if from == to {
		return
	}
	it := l.items[from]
	l.items = slices.Delete(l.items, from, from+1)
	l.items = slices.Insert(l.items, to, it)
	l.sel.ItemMoved(from, to)
	if adjust {
		l.remapBin(len(l.items), func(tl *timeline) { tl.moveRow(from, to) })
	}
	l.obs.ItemMoved(from, to)
}
