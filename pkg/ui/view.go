package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/flexlist/pkg/metrics"
	"github.com/vanderheijden86/flexlist/pkg/model"
)

// minDetailWidth is the narrowest terminal that gets a side detail pane.
const minDetailWidth = 60

// chrome is the number of lines around the rows: title, banner or
// prompt, status and help.
const chrome = 4

func (m *Model) listHeight() int {
	return max(1, m.height-chrome)
}

func (m *Model) listWidth() int {
	if m.showDetail && m.width >= minDetailWidth {
		return m.width * 3 / 5
	}
	return m.width
}

// depth counts the expandable ancestors of it.
func (m *Model) depth(it model.Item) int {
	d := 0
	for p := m.list.ExpandableOf(it); p != nil; p = m.list.ExpandableOf(p) {
		d++
	}
	return d
}

func (m *Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	var sb strings.Builder
	sb.WriteString(m.renderTitle())
	sb.WriteString("\n")

	rows := m.renderRows()
	if w := m.width - m.listWidth(); w > 0 {
		rows = lipgloss.JoinHorizontal(lipgloss.Top, rows, m.renderDetail(w))
	}
	sb.WriteString(rows)
	sb.WriteString("\n")

	switch {
	case m.filtering:
		sb.WriteString(m.input.View())
	case m.list.IsRestoreInTime():
		sb.WriteString(m.theme.Banner.Render(fmt.Sprintf("%s pending removal, u to undo",
			plural(m.list.DeletedCount(), "item"))))
	}
	sb.WriteString("\n")
	sb.WriteString(m.renderStatus())
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func (m *Model) renderTitle() string {
	l := m.list
	parts := []string{"flexlist", plural(l.Len(), "row")}
	if n := l.SelectedCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	if l.HasSearchText() {
		parts = append(parts, fmt.Sprintf("filter %q", l.SearchText()))
	}
	if l.AreHeadersShown() {
		parts = append(parts, "headers")
	}
	return m.theme.Title.Render(truncate(strings.Join(parts, " · "), m.width))
}

func (m *Model) renderRows() string {
	width := m.listWidth()
	rows := m.listHeight()
	lines := make([]string, 0, rows)
	end := min(m.offset+rows, m.list.Len())
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(i, width))
	}
	if len(lines) == 0 {
		lines = append(lines, m.theme.Status.Render(padRight("(no rows)", width)))
	}
	for len(lines) < rows {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderRow(pos, width int) string {
	it := m.list.Item(pos)
	if model.IsHeader(it) {
		return m.theme.Header.Width(width).Render(truncate(it.Title(), width-2))
	}

	mark := "  "
	if m.list.IsSelected(pos) {
		mark = "● "
	}
	glyph := "  "
	if e, ok := it.(model.Expandable); ok && len(e.SubItems()) > 0 {
		if e.Expanded() {
			glyph = "▾ "
		} else {
			glyph = "▸ "
		}
	}
	indent := strings.Repeat("  ", m.depth(it))
	title := it.Title()
	if title == "" {
		title = it.ID()
	}
	text := padRight(truncate(indent+glyph+title, width-3), width-3)

	style := m.theme.Child
	switch {
	case !it.Enabled():
		style = m.theme.Disabled
	case model.HasChildren(it):
		style = m.theme.Group
	}
	line := m.theme.Marker.Render(mark) + style.Render(text)
	if pos == m.cursor {
		return m.theme.Cursor.Render(line)
	}
	return " " + line
}

// renderDetail shows the body of the item under the cursor as markdown.
func (m *Model) renderDetail(width int) string {
	inner := max(10, width-4)
	m.detail.Width = inner
	m.detail.Height = max(1, m.listHeight()-2)

	if m.list.Len() == 0 {
		m.detail.SetContent("")
		m.detailFor = ""
		return m.theme.Detail.Render(m.detail.View())
	}
	it := m.list.Item(m.cursor)
	if m.detailFor != it.ID() {
		m.detailFor = it.ID()
		m.detail.SetContent(m.markdown(it, inner))
		m.detail.GotoTop()
	}
	return m.theme.Detail.Render(m.detail.View())
}

func (m *Model) markdown(it model.Item, width int) string {
	var body string
	if d, ok := it.(model.Detailer); ok {
		body = d.Body()
	}
	src := fmt.Sprintf("# %s\n\n`%s`\n\n%s", it.Title(), it.ID(), body)

	if m.md == nil || m.mdWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			m.log.WithError(err).Debug("markdown renderer unavailable")
			return src
		}
		m.md, m.mdWidth = r, width
	}
	out, err := m.md.Render(src)
	if err != nil {
		return src
	}
	return strings.TrimRight(out, "\n")
}

func (m *Model) renderStatus() string {
	if m.err != nil {
		return m.theme.Error.Render(truncate("error: "+m.err.Error(), m.width))
	}
	if m.status == "" {
		if m.list.Len() == 0 {
			return ""
		}
		return m.theme.Status.Render(fmt.Sprintf("%d/%d", m.cursor+1, m.list.Len()))
	}
	return m.theme.Status.Render(truncate(m.status, m.width))
}
