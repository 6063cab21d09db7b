// Package model defines the items a flexlist holds and the capability
// interfaces the list core inspects to decide how an item behaves.
//
// Items are identified solely by ID. Two values with the same ID are the
// same item as far as the list is concerned.
package model

// Item is the minimum contract every list entry satisfies.
type Item interface {
	ID() string
	Title() string
	Enabled() bool
	Hidden() bool
	Selectable() bool
	Draggable() bool
	Swipeable() bool
}

// Expandable is an item owning child items that are materialized into
// the flat list only while it is expanded.
type Expandable interface {
	Item
	SubItems() []Item
	SetSubItems(items []Item)
	Expanded() bool
	SetExpanded(expanded bool)
	// Level is the nesting depth, 0 for top-level groups.
	Level() int
}

// Header is a section header. Many items may reference one header; the
// header does not own them.
type Header interface {
	Item
	isHeader()
}

// Sectionable is an item that may belong to a header's section.
type Sectionable interface {
	Item
	Header() Header
	SetHeader(h Header)
}

// Filterable lets an item decide for itself whether it matches a
// normalized (trimmed, lower-cased) search constraint.
type Filterable interface {
	Filter(constraint string) bool
}

// Detailer is implemented by items carrying a longer markdown body.
type Detailer interface {
	Body() string
}

// Same reports whether a and b identify the same item.
func Same(a, b Item) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID()
}

// HasChildren reports whether it is expandable with at least one sub item.
func HasChildren(it Item) bool {
	e, ok := it.(Expandable)
	return ok && len(e.SubItems()) > 0
}

// IsHeader reports whether it is a section header.
func IsHeader(it Item) bool {
	_, ok := it.(Header)
	return ok
}

// HeaderOf returns the header it belongs to, or nil.
func HeaderOf(it Item) Header {
	if s, ok := it.(Sectionable); ok {
		return s.Header()
	}
	return nil
}

// IDs returns the ids of items in order.
func IDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID()
	}
	return ids
}
