package adapter

import (
	"github.com/vanderheijden86/flexlist/pkg/model"
	"github.com/vanderheijden86/flexlist/pkg/notify"
)

// AreHeadersShown reports whether section headers are rows.
func (l *List) AreHeadersShown() bool { return l.headersShown }

// ShowAllHeaders inserts each referenced header before its first item.
// Calling it while headers are shown logs a warning and does nothing.
func (l *List) ShowAllHeaders() bool {
	if l.headersShown {
		l.warn("show_headers", NoPosition, "headers already shown")
		return false
	}
	l.headersShown = true
	for pos := 0; pos < len(l.items); pos++ {
		pos = l.ensureHeaderFor(pos)
	}
	return true
}

// HideAllHeaders removes every header row. Calling it while headers are
// hidden logs a warning and does nothing.
func (l *List) HideAllHeaders() bool {
	if !l.headersShown {
		l.warn("hide_headers", NoPosition, "headers already hidden")
		return false
	}
	l.headersShown = false
	for pos := len(l.items) - 1; pos >= 0; pos-- {
		if model.IsHeader(l.items[pos]) {
			l.removeAt(pos, 1, true)
		}
	}
	return true
}

// ensureHeaderFor makes sure the header of the top-level row at pos sits
// just before the first row of its section, inserting or moving it when
// headers are shown. A header pending deletion is left in the bin. It
// returns the row's new position.
func (l *List) ensureHeaderFor(pos int) int {
	if !l.headersShown || !l.valid(pos) {
		return pos
	}
	it := l.items[pos]
	h := model.HeaderOf(it)
	if h == nil || !l.isTopLevel(it) || l.deleted[h.ID()] {
		return pos
	}
	first := pos
	for p := 0; p < pos; p++ {
		if c := l.items[p]; l.isTopLevel(c) && model.Same(model.HeaderOf(c), h) {
			first = p
			break
		}
	}
	switch hp := l.indexOf(h.ID()); {
	case hp == NoPosition:
		l.insertAt(first, []model.Item{h}, true)
		return pos + 1
	case hp > first:
		l.moveAt(hp, first, true)
		if hp > pos {
			return pos + 1
		}
	}
	return pos
}

// placeHeader moves the header row at hp up to its first item when that
// item sits above it.
func (l *List) placeHeader(hp int) {
	h := l.items[hp]
	for p := 0; p < hp; p++ {
		if it := l.items[p]; l.isTopLevel(it) && model.Same(model.HeaderOf(it), h) {
			l.moveAt(hp, p, true)
			return
		}
	}
}

// HeaderOf returns the header of it, following parents up to the
// top-level item.
func (l *List) HeaderOf(it model.Item) model.Header {
	for it != nil {
		if p := l.parents[it.ID()]; p != nil {
			it = p
			continue
		}
		return model.HeaderOf(it)
	}
	return nil
}

// HeaderPosition returns the row of the header governing pos, or
// NoPosition. A header row governs itself.
func (l *List) HeaderPosition(pos int) int {
	it := l.Item(pos)
	if it == nil {
		return NoPosition
	}
	if model.IsHeader(it) {
		return pos
	}
	h := l.HeaderOf(it)
	if h == nil {
		return NoPosition
	}
	return l.indexOf(h.ID())
}

// SectionItems returns the top-level rows that reference h.
func (l *List) SectionItems(h model.Header) []model.Item {
	var out []model.Item
	for _, it := range l.items {
		if l.isTopLevel(it) && model.Same(model.HeaderOf(it), h) {
			out = append(out, it)
		}
	}
	return out
}

// OrphanHeaders returns header rows no visible item references.
func (l *List) OrphanHeaders() []model.Header {
	var out []model.Header
	for _, it := range l.items {
		if h, ok := it.(model.Header); ok && len(l.SectionItems(h)) == 0 {
			out = append(out, h)
		}
	}
	return out
}

func (l *List) removeOrphans() {
	for pos := len(l.items) - 1; pos >= 0; pos-- {
		if h, ok := l.items[pos].(model.Header); ok && len(l.SectionItems(h)) == 0 {
			l.removeAt(pos, 1, true)
		}
	}
}

// LinkHeaderTo puts it under h. With headers shown, h is placed before
// it when needed and a header left without items is removed.
func (l *List) LinkHeaderTo(it model.Item, h model.Header) bool {
	s, ok := it.(model.Sectionable)
	if !ok || h == nil {
		l.warn("link_header", l.Position(it), "item cannot take a header")
		return false
	}
	if model.Same(s.Header(), h) {
		return false
	}
	s.SetHeader(h)
	if l.headersShown {
		if pos := l.Position(it); pos != NoPosition {
			l.ensureHeaderFor(pos)
		}
		l.removeOrphans()
	}
	if pos := l.Position(it); pos != NoPosition {
		l.obs.ItemRangeChanged(pos, 1, notify.Link)
	}
	return true
}

// UnlinkHeaderFrom detaches it from its header.
func (l *List) UnlinkHeaderFrom(it model.Item) bool {
	s, ok := it.(model.Sectionable)
	if !ok || s.Header() == nil {
		return false
	}
	s.SetHeader(nil)
	if l.headersShown {
		l.removeOrphans()
	}
	if pos := l.Position(it); pos != NoPosition {
		l.obs.ItemRangeChanged(pos, 1, notify.Unlink)
	}
	return true
}
