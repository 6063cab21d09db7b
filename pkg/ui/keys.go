package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Top        key.Binding
	Bottom     key.Binding
	Select     key.Binding
	Expand     key.Binding
	Collapse   key.Binding
	Toggle     key.Binding
	SelectAll  key.Binding
	Clear      key.Binding
	Remove     key.Binding
	Undo       key.Binding
	Filter     key.Binding
	Headers    key.Binding
	MoveDown   key.Binding
	MoveUp     key.Binding
	Copy       key.Binding
	Detail     key.Binding
	Help       key.Binding
	Quit       key.Binding
	Apply      key.Binding
	CancelEdit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Top:        key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:     key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Select:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		Expand:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l", "expand")),
		Collapse:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h", "collapse")),
		Toggle:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "expand/collapse")),
		SelectAll:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		Clear:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear selection")),
		Remove:     key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "remove")),
		Undo:       key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Filter:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Headers:    key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "headers")),
		MoveDown:   key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move down")),
		MoveUp:     key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move up")),
		Copy:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy ids")),
		Detail:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "details")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Apply:      key.NewBinding(key.WithKeys("enter")),
		CancelEdit: key.NewBinding(key.WithKeys("esc")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Select, k.Toggle, k.Remove, k.Undo, k.Filter, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Select, k.SelectAll, k.Clear, k.Copy},
		{k.Toggle, k.Expand, k.Collapse, k.Headers},
		{k.Remove, k.Undo, k.MoveUp, k.MoveDown},
		{k.Filter, k.Detail, k.Help, k.Quit},
	}
}
