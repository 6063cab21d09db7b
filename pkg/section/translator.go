// Package section maps between flat list positions and (section, child)
// positions for lists made of sections with a variable, dynamic number of
// children each.
//
// The Translator caches the flat offset of every section up to a
// watermark. Lookups binary-search the cached prefix and extend it
// lazily; mutations only ever lower the watermark to the first section
// whose offset may have moved.
package section

import (
	"sort"

	"github.com/vanderheijden86/flexlist/pkg/debug"
)

// NoPosition marks a missing flat position, section or child index.
const NoPosition = -1

// Position is a logical position. Child is NoPosition for the section's
// own row.
type Position struct {
	Section int
	Child   int
}

// Invalid is returned for flat positions that do not exist.
var Invalid = Position{Section: NoPosition, Child: NoPosition}

// Valid reports whether p addresses an existing row.
func (p Position) Valid() bool { return p.Section != NoPosition }

// IsSection reports whether p addresses a section row.
func (p Position) IsSection() bool { return p.Valid() && p.Child == NoPosition }

// Provider exposes the sections a Translator is built from.
type Provider interface {
	SectionCount() int
	SectionID(section int) string
	ChildCount(section int) int
}

type sectionState struct {
	offset     int
	expanded   bool
	childCount int
}

// Translator converts between flat and logical positions. It is not safe
// for concurrent use.
type Translator struct {
	provider Provider
	sections []sectionState
	ids      []string

	// watermark is the highest section whose cached offset is valid.
	watermark int

	expandedSections int
	expandedChildren int
}

// New returns an empty Translator.
func New() *Translator {
	return &Translator{watermark: NoPosition}
}

// Build rebuilds all tables from p. p must not be nil.
func (t *Translator) Build(p Provider, allExpanded bool) {
	if p == nil {
		panic("section: Build called with nil provider")
	}
	t.provider = p
	n := p.SectionCount()
	t.sections = make([]sectionState, n)
	t.ids = make([]string, n)
	t.expandedSections = 0
	t.expandedChildren = 0
	for i := 0; i < n; i++ {
		t.ids[i] = p.SectionID(i)
		t.sections[i] = sectionState{expanded: allExpanded, childCount: p.ChildCount(i)}
		if allExpanded {
			t.expandedSections++
			t.expandedChildren += t.sections[i].childCount
		}
	}
	t.watermark = NoPosition
}

// ItemCount returns the number of flat rows.
func (t *Translator) ItemCount() int {
	return len(t.sections) + t.expandedChildren
}

// SectionCount returns the number of sections.
func (t *Translator) SectionCount() int { return len(t.sections) }

// ExpandedSectionCount returns how many sections are expanded.
func (t *Translator) ExpandedSectionCount() int { return t.expandedSections }

// ExpandedChildCount returns how many child rows are materialized.
func (t *Translator) ExpandedChildCount() int { return t.expandedChildren }

// ChildCount returns the child count of section, or 0 if out of range.
func (t *Translator) ChildCount(section int) int {
	if !t.validSection(section) {
		return 0
	}
	return t.sections[section].childCount
}

// SectionID returns the id recorded for section.
func (t *Translator) SectionID(section int) string {
	if !t.validSection(section) {
		return ""
	}
	return t.ids[section]
}

// IsExpanded reports whether section is expanded.
func (t *Translator) IsExpanded(section int) bool {
	return t.validSection(section) && t.sections[section].expanded
}

func (t *Translator) validSection(section int) bool {
	return section >= 0 && section < len(t.sections)
}

func (t *Translator) invalidateFrom(section int) {
	if section < t.watermark {
		t.watermark = section
	}
	if t.watermark < NoPosition {
		t.watermark = NoPosition
	}
}

func (t *Translator) visibleChildren(i int) int {
	if t.sections[i].expanded {
		return t.sections[i].childCount
	}
	return 0
}

// ExpandSection expands section. It returns false if section is out of
// range or already expanded.
func (t *Translator) ExpandSection(section int) bool {
	if !t.validSection(section) || t.sections[section].expanded {
		return false
	}
	t.sections[section].expanded = true
	t.expandedSections++
	t.expandedChildren += t.sections[section].childCount
	t.invalidateFrom(section)
	return true
}

// CollapseSection collapses section. It returns false if section is out
// of range or already collapsed.
func (t *Translator) CollapseSection(section int) bool {
	if !t.validSection(section) || !t.sections[section].expanded {
		return false
	}
	t.sections[section].expanded = false
	t.expandedSections--
	t.expandedChildren -= t.sections[section].childCount
	t.invalidateFrom(section)
	return true
}

// offsetOf returns the flat offset of section, extending the cache.
func (t *Translator) offsetOf(section int) int {
	if section <= t.watermark {
		return t.sections[section].offset
	}
	i, off := 0, 0
	if t.watermark != NoPosition {
		i = t.watermark + 1
		off = t.sections[t.watermark].offset + 1 + t.visibleChildren(t.watermark)
	}
	for ; i <= section; i++ {
		t.sections[i].offset = off
		off += 1 + t.visibleChildren(i)
	}
	t.watermark = section
	return t.sections[section].offset
}

// FlatPosition returns the flat position of a section row (child ==
// NoPosition) or of one of its children. It returns NoPosition for a
// section out of range, a child out of range, or a child of a collapsed
// section.
func (t *Translator) FlatPosition(section, child int) int {
	if !t.validSection(section) {
		return NoPosition
	}
	s := t.sections[section]
	if child != NoPosition && (!s.expanded || child < 0 || child >= s.childCount) {
		return NoPosition
	}
	off := t.offsetOf(section)
	if child == NoPosition {
		return off
	}
	return off + 1 + child
}

// ExpandablePosition resolves a flat position to its logical position.
func (t *Translator) ExpandablePosition(flat int) Position {
	if flat < 0 || flat >= t.ItemCount() {
		return Invalid
	}

	// Last cached section starting at or before flat.
	i := sort.Search(t.watermark+1, func(k int) bool {
		return t.sections[k].offset > flat
	}) - 1

	if i >= 0 {
		if p, ok := t.within(i, flat); ok {
			return p
		}
		if i < t.watermark {
			debug.Assertf(false, "flat %d not inside cached section %d", flat, i)
			return Invalid
		}
	}

	for j := t.watermark + 1; j < len(t.sections); j++ {
		t.offsetOf(j)
		if p, ok := t.within(j, flat); ok {
			return p
		}
	}
	debug.Assertf(false, "flat %d beyond %d sections (count %d)", flat, len(t.sections), t.ItemCount())
	return Invalid
}

func (t *Translator) within(section, flat int) (Position, bool) {
	off := t.sections[section].offset
	switch {
	case flat == off:
		return Position{Section: section, Child: NoPosition}, true
	case flat > off && flat <= off+t.visibleChildren(section):
		return Position{Section: section, Child: flat - off - 1}, true
	}
	return Invalid, false
}

// InsertSectionItems records count new sections at pos. Child counts and
// ids are read from the provider, which must already contain them.
func (t *Translator) InsertSectionItems(pos, count int, expanded bool) {
	if count <= 0 || pos < 0 || pos > len(t.sections) {
		return
	}
	fresh := make([]sectionState, count)
	ids := make([]string, count)
	for k := 0; k < count; k++ {
		fresh[k] = sectionState{expanded: expanded}
		if t.provider != nil {
			fresh[k].childCount = t.provider.ChildCount(pos + k)
			ids[k] = t.provider.SectionID(pos + k)
		}
		if expanded {
			t.expandedSections++
			t.expandedChildren += fresh[k].childCount
		}
	}
	t.sections = append(t.sections[:pos], append(fresh, t.sections[pos:]...)...)
	t.ids = append(t.ids[:pos], append(ids, t.ids[pos:]...)...)
	t.invalidateFrom(pos - 1)
}

// RemoveSectionItems drops count sections starting at pos.
func (t *Translator) RemoveSectionItems(pos, count int) {
	if pos < 0 || count <= 0 || pos >= len(t.sections) {
		return
	}
	if pos+count > len(t.sections) {
		count = len(t.sections) - pos
	}
	for k := pos; k < pos+count; k++ {
		if t.sections[k].expanded {
			t.expandedSections--
			t.expandedChildren -= t.sections[k].childCount
		}
	}
	t.sections = append(t.sections[:pos], t.sections[pos+count:]...)
	t.ids = append(t.ids[:pos], t.ids[pos+count:]...)
	t.invalidateFrom(pos - 1)
}

// InsertChildItems records count new children in section.
func (t *Translator) InsertChildItems(section, count int) {
	if !t.validSection(section) || count <= 0 {
		return
	}
	t.sections[section].childCount += count
	if t.sections[section].expanded {
		t.expandedChildren += count
		t.invalidateFrom(section)
	}
}

// RemoveChildItems records the removal of count children from section.
func (t *Translator) RemoveChildItems(section, count int) {
	if !t.validSection(section) || count <= 0 {
		return
	}
	if count > t.sections[section].childCount {
		count = t.sections[section].childCount
	}
	t.sections[section].childCount -= count
	if t.sections[section].expanded {
		t.expandedChildren -= count
		t.invalidateFrom(section)
	}
}

// MoveChildItem records a child moving between sections.
func (t *Translator) MoveChildItem(fromSection, toSection int) {
	if fromSection == toSection || !t.validSection(fromSection) || !t.validSection(toSection) ||
		t.sections[fromSection].childCount == 0 {
		return
	}
	t.RemoveChildItems(fromSection, 1)
	t.InsertChildItems(toSection, 1)
}

// MoveSectionItem records a section moving from one index to another.
func (t *Translator) MoveSectionItem(from, to int) {
	if !t.validSection(from) || !t.validSection(to) || from == to {
		return
	}
	s, id := t.sections[from], t.ids[from]
	t.sections = append(t.sections[:from], t.sections[from+1:]...)
	t.ids = append(t.ids[:from], t.ids[from+1:]...)
	t.sections = append(t.sections[:to], append([]sectionState{s}, t.sections[to:]...)...)
	t.ids = append(t.ids[:to], append([]string{id}, t.ids[to:]...)...)
	t.invalidateFrom(min(from, to) - 1)
}

// SavedState returns the sorted ids of expanded sections.
func (t *Translator) SavedState() []string {
	ids := make([]string, 0, t.expandedSections)
	for i, s := range t.sections {
		if s.expanded {
			ids = append(ids, t.ids[i])
		}
	}
	sort.Strings(ids)
	return ids
}

// RestoreExpandedSections expands sections whose id is in ids and
// collapses the rest. ids need not be sorted.
func (t *Translator) RestoreExpandedSections(ids []string) {
	want := append([]string(nil), ids...)
	sort.Strings(want)

	type pair struct {
		id  string
		pos int
	}
	pairs := make([]pair, len(t.ids))
	for i, id := range t.ids {
		pairs[i] = pair{id: id, pos: i}
	}
	sort.Slice(pairs, func(a, b int) bool { return pairs[a].id < pairs[b].id })

	w := 0
	for _, p := range pairs {
		for w < len(want) && want[w] < p.id {
			w++
		}
		if w < len(want) && want[w] == p.id {
			t.ExpandSection(p.pos)
		} else {
			t.CollapseSection(p.pos)
		}
	}
}
