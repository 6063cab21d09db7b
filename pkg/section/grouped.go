package section

import (
	"github.com/vanderheijden86/flexlist/pkg/model"
	"github.com/vanderheijden86/flexlist/pkg/notify"
)

// Group is one section: a header row and its children.
type Group struct {
	Header   model.Item
	Children []model.Item
}

// Grouped is a sectioned list backed by a Translator. Every mutation
// emits replay-safe notifications to the registered observers.
type Grouped struct {
	groups []Group
	t      *Translator
	obs    notify.Dispatcher
}

// NewGrouped builds a sectioned list over groups.
func NewGrouped(groups []Group, expanded bool, observers ...notify.Observer) *Grouped {
	g := &Grouped{groups: append([]Group(nil), groups...), t: New()}
	for _, o := range observers {
		g.obs.Register(o)
	}
	g.t.Build(g, expanded)
	return g
}

// Observe registers o for change notifications.
func (g *Grouped) Observe(o notify.Observer) { g.obs.Register(o) }

// Translator exposes the position translator.
func (g *Grouped) Translator() *Translator { return g.t }

func (g *Grouped) SectionCount() int { return len(g.groups) }

func (g *Grouped) SectionID(section int) string {
	if section < 0 || section >= len(g.groups) || g.groups[section].Header == nil {
		return ""
	}
	return g.groups[section].Header.ID()
}

func (g *Grouped) ChildCount(section int) int {
	if section < 0 || section >= len(g.groups) {
		return 0
	}
	return len(g.groups[section].Children)
}

// ItemCount returns the number of flat rows.
func (g *Grouped) ItemCount() int { return g.t.ItemCount() }

// Item resolves a flat position to its item and logical position.
func (g *Grouped) Item(flat int) (model.Item, Position) {
	p := g.t.ExpandablePosition(flat)
	if !p.Valid() {
		return nil, p
	}
	if p.Child == NoPosition {
		return g.groups[p.Section].Header, p
	}
	return g.groups[p.Section].Children[p.Child], p
}

// Items returns the flattened rows.
func (g *Grouped) Items() []model.Item {
	out := make([]model.Item, 0, g.ItemCount())
	for i, grp := range g.groups {
		out = append(out, grp.Header)
		if g.t.IsExpanded(i) {
			out = append(out, grp.Children...)
		}
	}
	return out
}

// Expand expands section and notifies the inserted child rows.
func (g *Grouped) Expand(section int) bool {
	if !g.t.ExpandSection(section) {
		return false
	}
	flat := g.t.FlatPosition(section, NoPosition)
	if n := g.t.ChildCount(section); n > 0 {
		g.obs.ItemRangeInserted(flat+1, n)
	}
	g.obs.ItemRangeChanged(flat, 1, notify.Expanded)
	return true
}

// Collapse collapses section and notifies the removed child rows.
func (g *Grouped) Collapse(section int) bool {
	if !g.t.CollapseSection(section) {
		return false
	}
	flat := g.t.FlatPosition(section, NoPosition)
	if n := g.t.ChildCount(section); n > 0 {
		g.obs.ItemRangeRemoved(flat+1, n)
	}
	g.obs.ItemRangeChanged(flat, 1, notify.Collapsed)
	return true
}

// Toggle expands or collapses the section whose header is at flat.
func (g *Grouped) Toggle(flat int) bool {
	p := g.t.ExpandablePosition(flat)
	if !p.IsSection() {
		return false
	}
	if g.t.IsExpanded(p.Section) {
		return g.Collapse(p.Section)
	}
	return g.Expand(p.Section)
}

func (g *Grouped) rows(section int) int {
	return 1 + g.t.visibleChildren(section)
}

// InsertSection inserts grp at section index pos.
func (g *Grouped) InsertSection(pos int, grp Group, expanded bool) bool {
	if pos < 0 || pos > len(g.groups) || grp.Header == nil {
		return false
	}
	g.groups = append(g.groups[:pos], append([]Group{grp}, g.groups[pos:]...)...)
	g.t.InsertSectionItems(pos, 1, expanded)
	g.obs.ItemRangeInserted(g.t.FlatPosition(pos, NoPosition), g.rows(pos))
	return true
}

// RemoveSection removes the section at pos with its children.
func (g *Grouped) RemoveSection(pos int) bool {
	if pos < 0 || pos >= len(g.groups) {
		return false
	}
	flat, n := g.t.FlatPosition(pos, NoPosition), g.rows(pos)
	g.groups = append(g.groups[:pos], g.groups[pos+1:]...)
	g.t.RemoveSectionItems(pos, 1)
	g.obs.ItemRangeRemoved(flat, n)
	return true
}

// InsertChild inserts it as child index child of section.
func (g *Grouped) InsertChild(section, child int, it model.Item) bool {
	if section < 0 || section >= len(g.groups) || child < 0 || child > len(g.groups[section].Children) {
		return false
	}
	grp := &g.groups[section]
	grp.Children = append(grp.Children[:child], append([]model.Item{it}, grp.Children[child:]...)...)
	g.t.InsertChildItems(section, 1)
	if g.t.IsExpanded(section) {
		g.obs.ItemRangeInserted(g.t.FlatPosition(section, child), 1)
	}
	g.obs.ItemRangeChanged(g.t.FlatPosition(section, NoPosition), 1, notify.AddSubItem)
	return true
}

// RemoveChild removes child index child of section.
func (g *Grouped) RemoveChild(section, child int) bool {
	if section < 0 || section >= len(g.groups) || child < 0 || child >= len(g.groups[section].Children) {
		return false
	}
	flat := g.t.FlatPosition(section, child)
	grp := &g.groups[section]
	grp.Children = append(grp.Children[:child], grp.Children[child+1:]...)
	g.t.RemoveChildItems(section, 1)
	if flat != NoPosition {
		g.obs.ItemRangeRemoved(flat, 1)
	}
	g.obs.ItemRangeChanged(g.t.FlatPosition(section, NoPosition), 1, notify.RemSubItem)
	return true
}

// MoveChild moves a child to another section and index.
func (g *Grouped) MoveChild(fromSection, fromChild, toSection, toChild int) bool {
	if fromSection < 0 || fromSection >= len(g.groups) || toSection < 0 || toSection >= len(g.groups) {
		return false
	}
	src := &g.groups[fromSection]
	if fromChild < 0 || fromChild >= len(src.Children) {
		return false
	}
	it := src.Children[fromChild]
	limit := len(g.groups[toSection].Children)
	if fromSection != toSection {
		limit++
	}
	if toChild < 0 || toChild >= limit {
		return false
	}

	fromFlat := g.t.FlatPosition(fromSection, fromChild)
	src.Children = append(src.Children[:fromChild], src.Children[fromChild+1:]...)
	dst := &g.groups[toSection]
	dst.Children = append(dst.Children[:toChild], append([]model.Item{it}, dst.Children[toChild:]...)...)
	g.t.MoveChildItem(fromSection, toSection)
	toFlat := g.t.FlatPosition(toSection, toChild)

	switch {
	case fromFlat != NoPosition && toFlat != NoPosition:
		g.obs.ItemMoved(fromFlat, toFlat)
	case fromFlat != NoPosition:
		g.obs.ItemRangeRemoved(fromFlat, 1)
	case toFlat != NoPosition:
		g.obs.ItemRangeInserted(toFlat, 1)
	}
	return true
}

// MoveSection moves a whole section to index to.
func (g *Grouped) MoveSection(from, to int) bool {
	if from < 0 || from >= len(g.groups) || to < 0 || to >= len(g.groups) || from == to {
		return false
	}
	flat, n := g.t.FlatPosition(from, NoPosition), g.rows(from)
	grp := g.groups[from]
	g.groups = append(g.groups[:from], g.groups[from+1:]...)
	g.groups = append(g.groups[:to], append([]Group{grp}, g.groups[to:]...)...)
	g.t.MoveSectionItem(from, to)

	g.obs.ItemRangeRemoved(flat, n)
	g.obs.ItemRangeInserted(g.t.FlatPosition(to, NoPosition), n)
	return true
}

// SavedState returns the ids of expanded sections.
func (g *Grouped) SavedState() []string { return g.t.SavedState() }

// RestoreExpanded re-expands the sections named in ids and collapses the
// others. Observers see the change as a full reset.
func (g *Grouped) RestoreExpanded(ids []string) {
	before := g.t.ItemCount()
	g.t.RestoreExpandedSections(ids)
	if before > 0 {
		g.obs.ItemRangeRemoved(0, before)
	}
	if after := g.t.ItemCount(); after > 0 {
		g.obs.ItemRangeInserted(0, after)
	}
}
