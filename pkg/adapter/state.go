package adapter

import (
	"slices"

	"github.com/vanderheijden86/flexlist/pkg/model"
	"github.com/vanderheijden86/flexlist/pkg/selection"
)

// State is the part of a List worth keeping across sessions.
type State struct {
	Mode         selection.Mode `json:"mode"`
	Selected     []int          `json:"selected,omitempty"`
	ExpandedIDs  []string       `json:"expanded_ids,omitempty"`
	HeadersShown bool           `json:"headers_shown"`
	SearchText   string         `json:"search_text,omitempty"`
}

// SaveState captures mode, selection, expansion, headers and filter.
func (l *List) SaveState() State {
	st := State{
		Mode:         l.sel.Mode(),
		Selected:     l.sel.Positions(),
		HeadersShown: l.headersShown,
		SearchText:   l.searchText,
	}
	for _, p := range l.ExpandedPositions() {
		st.ExpandedIDs = append(st.ExpandedIDs, l.items[p].ID())
	}
	return st
}

// RestoreState applies st. Rows are rebuilt first (headers, filter,
// expansion) so the saved positions are read against the same layout
// they were saved from; selection comes last.
func (l *List) RestoreState(st State) {
	l.ClearSelection()

	if st.HeadersShown != l.headersShown {
		if st.HeadersShown {
			l.ShowAllHeaders()
		} else {
			l.HideAllHeaders()
		}
	}
	if Normalize(st.SearchText) != l.searchText {
		l.SetSearchText(st.SearchText)
		l.FilterItems()
	}

	want := make(map[string]bool, len(st.ExpandedIDs))
	for _, id := range st.ExpandedIDs {
		want[id] = true
	}
	for p := len(l.items) - 1; p >= 0; p-- {
		if l.IsExpanded(p) && !want[l.items[p].ID()] {
			l.collapse(p, true)
		}
	}
	for p := 0; p < len(l.items); p++ {
		if e, ok := l.items[p].(model.Expandable); ok && !e.Expanded() && want[e.ID()] {
			l.expand(p, false)
		}
	}

	l.sel.SetMode(st.Mode)
	if st.Mode != selection.Idle {
		l.sel.Restore(slices.Clone(st.Selected), l.selectable)
	}
	l.refreshSelectionFlags()
}
