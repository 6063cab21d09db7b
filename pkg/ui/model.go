// Package ui is the interactive terminal browser over a flexlist. The
// bubbletea event loop is the list's single owner: undo timers and file
// reloads are posted back into it as messages.
package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/vanderheijden86/flexlist/internal/datasource"
	"github.com/vanderheijden86/flexlist/pkg/adapter"
	"github.com/vanderheijden86/flexlist/pkg/config"
	"github.com/vanderheijden86/flexlist/pkg/debug"
	"github.com/vanderheijden86/flexlist/pkg/model"
	"github.com/vanderheijden86/flexlist/pkg/notify"
	"github.com/vanderheijden86/flexlist/pkg/state"
	"github.com/vanderheijden86/flexlist/pkg/watcher"
)

// RunMsg carries a function to run inside the event loop.
type RunMsg struct{ F func() }

// FileChangedMsg is sent when the source file changes on disk.
type FileChangedMsg struct{}

// ReloadedMsg carries freshly loaded items.
type ReloadedMsg struct {
	Items []model.Item
	Err   error
}

// WatchFileCmd waits for the next change reported by w.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// Sender posts functions into a running program. It is bound after the
// program is created, so timers started before that are dropped.
type Sender struct {
	mu sync.Mutex
	p  *tea.Program
}

// Bind routes later Exec calls to p.
func (s *Sender) Bind(p *tea.Program) {
	s.mu.Lock()
	s.p = p
	s.mu.Unlock()
}

// Exec posts f as a RunMsg. It satisfies adapter.Executor.
func (s *Sender) Exec(f func()) {
	s.mu.Lock()
	p := s.p
	s.mu.Unlock()
	if p != nil {
		p.Send(RunMsg{F: f})
	}
}

// Options wires the browser to its collaborators. Only Config is
// required.
type Options struct {
	Config    config.Config
	Source    datasource.Source
	Store     *state.Store
	StateName string
	Watcher   *watcher.Watcher
	Logger    logrus.FieldLogger
	Theme     *Theme
}

// Model is the browser.
type Model struct {
	opts   Options
	ctx    context.Context
	log    logrus.FieldLogger
	list   *adapter.List
	sender *Sender
	commit func([]model.Item)

	theme Theme
	keys  keyMap
	help  help.Model

	input       textinput.Model
	filtering   bool
	filterStart string // search text when the prompt opened

	detail     viewport.Model
	md         *glamour.TermRenderer
	mdWidth    int
	showDetail bool
	detailFor  string

	cursor  int
	offset  int
	current string // id under the cursor
	width   int
	height  int

	status string
	err    error
}

// New builds the browser over items.
func New(ctx context.Context, items []model.Item, opts Options) *Model {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	m := &Model{
		opts:   opts,
		ctx:    ctx,
		log:    log,
		sender: &Sender{},
		keys:   defaultKeyMap(),
		help:   help.New(),
		width:  80,
		height: 24,
	}
	if opts.Theme != nil {
		m.theme = *opts.Theme
	} else {
		m.theme = DefaultTheme(lipgloss.DefaultRenderer())
	}

	cfg := opts.Config
	listOpts := []adapter.Option{
		adapter.WithLogger(log),
		adapter.WithMode(cfg.SelectionMode),
		adapter.WithScheduler(adapter.NewScheduler(m.sender.Exec)),
		adapter.WithUndoTimeout(cfg.UndoTimeout),
		adapter.WithHeadersShown(cfg.HeadersShown),
		adapter.WithAutoCollapse(cfg.AutoCollapseOnExpand),
		adapter.WithRemoveOrphanHeaders(cfg.RemoveOrphanHeaders),
		adapter.WithPermanentDelete(cfg.PermanentDelete),
	}
	if opts.Source != nil {
		m.commit = datasource.Commit(ctx, opts.Source, log)
		listOpts = append(listOpts, adapter.WithDeleteConfirmed(m.commit))
	}
	m.list = adapter.New(items, listOpts...)
	m.list.Observe(notify.Funcs{
		Changed: func(start, count int, _ notify.Payload) {
			if m.cursor >= start && m.cursor < start+count {
				m.detailFor = ""
			}
		},
	})

	m.input = textinput.New()
	m.input.Prompt = "/ "
	m.input.Placeholder = "filter"

	m.detail = viewport.New(40, 10)

	if opts.Store != nil && opts.StateName != "" {
		if st, err := opts.Store.Load(opts.StateName); err == nil {
			m.list.RestoreState(st)
			m.input.SetValue(st.SearchText)
		}
	}
	m.syncCursor()
	return m
}

// Sender returns the executor to bind once the program exists.
func (m *Model) Sender() *Sender { return m.sender }

// List exposes the list core.
func (m *Model) List() *adapter.List { return m.list }

// Cursor returns the cursor row.
func (m *Model) Cursor() int { return m.cursor }

// Status returns the last status message.
func (m *Model) Status() string { return m.status }

func (m *Model) Init() tea.Cmd {
	if m.opts.Watcher != nil {
		return WatchFileCmd(m.opts.Watcher)
	}
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.detailFor = ""

	case RunMsg:
		msg.F()

	case FileChangedMsg:
		if m.opts.Watcher != nil {
			cmd = tea.Batch(m.reloadCmd(), WatchFileCmd(m.opts.Watcher))
		}

	case ReloadedMsg:
		m.reload(msg)

	case tea.KeyMsg:
		if m.filtering {
			cmd = m.updateFilter(msg)
		} else {
			cmd = m.updateKeys(msg)
		}
	}
	m.syncCursor()
	return m, cmd
}

func (m *Model) reloadCmd() tea.Cmd {
	src := m.opts.Source
	if src == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		items, err := datasource.LoadItems(ctx, src)
		return ReloadedMsg{Items: items, Err: err}
	}
}

// reload swaps in new items and puts expansion, filter and selection
// back. Selection is matched by id since rows may have moved.
func (m *Model) reload(msg ReloadedMsg) {
	if msg.Err != nil {
		m.err = msg.Err
		m.log.WithError(msg.Err).Warn("reloading source")
		return
	}
	selected := m.list.SelectedItems()
	st := m.list.SaveState()
	st.Selected = nil
	debug.Dump("state before reload", st)
	m.list.UpdateDataSet(msg.Items, true)
	m.list.RestoreState(st)
	for _, it := range selected {
		if p := m.list.Position(it); p != adapter.NoPosition && !m.list.IsSelected(p) {
			m.list.ToggleSelection(p)
		}
	}
	m.err = nil
	m.status = "reloaded " + plural(m.list.Len(), "row")
}

func (m *Model) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Apply):
		m.filtering = false
		m.input.Blur()
		m.applyFilter()
		return nil
	case key.Matches(msg, m.keys.CancelEdit):
		m.filtering = false
		m.input.Blur()
		m.input.SetValue(m.filterStart)
		m.applyFilter()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.applyFilter()
	return cmd
}

func (m *Model) applyFilter() {
	if !m.list.HasNewSearchText(m.input.Value()) {
		return
	}
	m.list.SetSearchText(m.input.Value())
	m.list.FilterItems()
	if m.list.HasSearchText() {
		m.status = fmt.Sprintf("%s match %q", plural(m.list.Len(), "row"), m.list.SearchText())
	} else {
		m.status = ""
	}
}

func (m *Model) updateKeys(msg tea.KeyMsg) tea.Cmd {
	l := m.list
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.flushBin()
		m.saveState()
		return tea.Quit
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(-l.Len())
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(l.Len())
	case key.Matches(msg, m.keys.Select):
		if !l.ToggleSelection(m.cursor) {
			m.status = "row cannot be selected"
		}
	case key.Matches(msg, m.keys.Toggle):
		if l.IsExpanded(m.cursor) {
			l.Collapse(m.cursor)
		} else {
			l.Expand(m.cursor)
		}
	case key.Matches(msg, m.keys.Expand):
		l.Expand(m.cursor)
	case key.Matches(msg, m.keys.Collapse):
		if !l.Collapse(m.cursor) {
			// Collapse the parent when the cursor is on a child.
			if parent := l.ExpandableOf(l.Item(m.cursor)); parent != nil {
				if p := l.Position(parent); p != adapter.NoPosition {
					l.Collapse(p)
					m.cursor = p
					m.current = parent.ID()
				}
			}
		}
	case key.Matches(msg, m.keys.SelectAll):
		n := l.SelectAll(nil)
		m.status = plural(n, "row") + " selected"
	case key.Matches(msg, m.keys.Clear):
		l.ClearSelection()
		m.status = ""
	case key.Matches(msg, m.keys.Remove):
		m.remove()
	case key.Matches(msg, m.keys.Undo):
		if n := l.RestoreDeletedItems(); n > 0 {
			m.status = plural(n, "item") + " restored"
		}
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filterStart = l.SearchText()
		m.input.SetValue(m.filterStart)
		m.input.CursorEnd()
		return m.input.Focus()
	case key.Matches(msg, m.keys.Headers):
		if l.AreHeadersShown() {
			l.HideAllHeaders()
		} else {
			l.ShowAllHeaders()
		}
	case key.Matches(msg, m.keys.MoveDown):
		m.move(1)
	case key.Matches(msg, m.keys.MoveUp):
		m.move(-1)
	case key.Matches(msg, m.keys.Copy):
		m.copyIDs()
	case key.Matches(msg, m.keys.Detail):
		m.showDetail = !m.showDetail
		m.detailFor = ""
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

// remove sends the selection, or the cursor row when nothing is
// selected, to the bin and starts the undo window.
func (m *Model) remove() {
	l := m.list
	positions := l.SelectedPositions()
	if len(positions) == 0 {
		if l.Len() == 0 {
			return
		}
		positions = []int{m.cursor}
	}
	n := l.RemoveItems(positions)
	if n == 0 {
		return
	}
	if l.IsPermanentDelete() {
		m.status = plural(n, "item") + " deleted"
		return
	}
	l.StartUndoTimer(0, nil)
	m.status = fmt.Sprintf("%s removed, u to undo within %s", plural(n, "item"), seconds(l.UndoTimeout()))
}

func (m *Model) move(delta int) {
	to := m.cursor + delta
	if to < 0 || to >= m.list.Len() {
		return
	}
	if m.list.MoveItem(m.cursor, to) {
		m.cursor = to
	} else {
		m.status = "cannot move here"
	}
}

func (m *Model) copyIDs() {
	items := m.list.SelectedItems()
	if len(items) == 0 && m.list.Len() > 0 {
		items = []model.Item{m.list.Item(m.cursor)}
	}
	if len(items) == 0 {
		return
	}
	if err := clipboard.WriteAll(strings.Join(model.IDs(items), "\n")); err != nil {
		m.status = "clipboard unavailable: " + err.Error()
		return
	}
	m.status = "copied " + plural(len(items), "id")
}

// flushBin commits pending removals instead of dropping them with the
// undo timer.
func (m *Model) flushBin() {
	items := m.list.DeletedItems()
	if len(items) == 0 {
		return
	}
	m.list.EmptyBin()
	if m.commit != nil {
		m.commit(items)
	}
}

func (m *Model) saveState() {
	if m.opts.Store == nil || m.opts.StateName == "" {
		return
	}
	if err := m.opts.Store.Save(m.opts.StateName, m.list.SaveState()); err != nil {
		m.log.WithError(err).Warn("saving list state")
	}
}

func (m *Model) moveCursor(delta int) {
	m.cursor = max(0, min(m.cursor+delta, m.list.Len()-1))
	m.current = ""
	if m.list.Len() > 0 {
		m.current = m.list.Item(m.cursor).ID()
	}
}

// syncCursor keeps the cursor on the same item across mutations, or on
// the same row when the item went away, and scrolls it into view.
func (m *Model) syncCursor() {
	n := m.list.Len()
	if n == 0 {
		m.cursor, m.offset, m.current = 0, 0, ""
		return
	}
	if m.current != "" {
		if p := m.list.Position(model.NewEntry(m.current, "")); p != adapter.NoPosition {
			m.cursor = p
		}
	}
	m.cursor = max(0, min(m.cursor, n-1))
	m.current = m.list.Item(m.cursor).ID()

	rows := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	m.offset = max(0, min(m.offset, n-1))
}
