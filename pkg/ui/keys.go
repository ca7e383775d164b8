package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists every binding the list view understands.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Top         key.Binding
	Bottom      key.Binding
	Select      key.Binding
	Expand      key.Binding
	Collapse    key.Binding
	ExpandAll   key.Binding
	CollapseAll key.Binding
	Refresh     key.Binding
	Reset       key.Binding
	Copy        key.Binding
	Detail      key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the vim-flavored bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		PageUp:      key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown:    key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Top:         key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:      key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Select:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "toggle/select")),
		Expand:      key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "expand")),
		Collapse:    key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "collapse")),
		ExpandAll:   key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "expand all")),
		CollapseAll: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "collapse all")),
		Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Reset:       key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset")),
		Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy row")),
		Detail:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "detail pane")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.ExpandAll, k.CollapseAll, k.Refresh, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Select, k.Expand, k.Collapse, k.ExpandAll, k.CollapseAll},
		{k.Refresh, k.Reset, k.Copy, k.Detail, k.Help, k.Quit},
	}
}
