package model

// Base is an embeddable Item implementation. Its zero value is enabled,
// visible and selectable; dragging and swiping are opt-in.
type Base struct {
	id    string
	title string
	body  string

	disabled     bool
	hidden       bool
	unselectable bool
	draggable    bool
	swipeable    bool
}

// NewBase returns a Base with the given id and title.
func NewBase(id, title string) Base {
	return Base{id: id, title: title}
}

func (b *Base) ID() string        { return b.id }
func (b *Base) Title() string     { return b.title }
func (b *Base) Body() string      { return b.body }
func (b *Base) String() string    { return b.title }
func (b *Base) Enabled() bool     { return !b.disabled }
func (b *Base) Hidden() bool      { return b.hidden }
func (b *Base) Selectable() bool  { return !b.unselectable }
func (b *Base) Draggable() bool   { return b.draggable }
func (b *Base) Swipeable() bool   { return b.swipeable }
func (b *Base) SetTitle(t string) { b.title = t }
func (b *Base) SetBody(s string)  { b.body = s }

func (b *Base) SetEnabled(v bool)    { b.disabled = !v }
func (b *Base) SetHidden(v bool)     { b.hidden = v }
func (b *Base) SetSelectable(v bool) { b.unselectable = !v }
func (b *Base) SetDraggable(v bool)  { b.draggable = v }
func (b *Base) SetSwipeable(v bool)  { b.swipeable = v }

// Entry is a plain item that can be placed under a header.
type Entry struct {
	Base
	header Header
}

// NewEntry returns an Entry with no header.
func NewEntry(id, title string) *Entry {
	return &Entry{Base: NewBase(id, title)}
}

func (e *Entry) Header() Header     { return e.header }
func (e *Entry) SetHeader(h Header) { e.header = h }

// Group is an expandable entry.
type Group struct {
	Entry
	children []Item
	expanded bool
	level    int
}

// NewGroup returns a collapsed group at the given nesting level.
func NewGroup(id, title string, level int, children ...Item) *Group {
	return &Group{Entry: Entry{Base: NewBase(id, title)}, children: children, level: level}
}

func (g *Group) SubItems() []Item          { return g.children }
func (g *Group) SetSubItems(items []Item)  { g.children = items }
func (g *Group) Expanded() bool            { return g.expanded }
func (g *Group) SetExpanded(expanded bool) { g.expanded = expanded }
func (g *Group) Level() int                { return g.level }

// HeaderItem is a section header. Headers are not selectable by default.
type HeaderItem struct {
	Base
}

// NewHeader returns a header item.
func NewHeader(id, title string) *HeaderItem {
	h := &HeaderItem{Base: NewBase(id, title)}
	h.SetSelectable(false)
	return h
}

func (*HeaderItem) isHeader() {}

var (
	_ Sectionable = (*Entry)(nil)
	_ Expandable  = (*Group)(nil)
	_ Sectionable = (*Group)(nil)
	_ Header      = (*HeaderItem)(nil)
	_ Detailer    = (*Entry)(nil)
)
