package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	PrevPage  key.Binding
	NextPage  key.Binding
	Search    key.Binding
	Initial   key.Binding
	SortField key.Binding
	SortDir   key.Binding
	New       key.Binding
	Edit      key.Binding
	Delete    key.Binding
	Refresh   key.Binding
	Open      key.Binding
	Cancel    key.Binding
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding
	Complete  key.Binding
	Confirm   key.Binding
	Deny      key.Binding
	Register  key.Binding
	Help      key.Binding
	Back      key.Binding
	Quit      key.Binding
}

// bindings is a flat help.KeyMap for one page state.
type bindings []key.Binding

func (b bindings) ShortHelp() []key.Binding  { return b }
func (b bindings) FullHelp() [][]key.Binding { return [][]key.Binding{b} }

func (k keyMap) listHelp(editable, initials bool) bindings {
	b := bindings{k.Up, k.Down, k.PrevPage, k.NextPage, k.Search}
	if initials {
		b = append(b, k.Initial)
	}
	b = append(b, k.SortField, k.SortDir)
	if editable {
		b = append(b, k.New, k.Edit, k.Delete)
	}
	return append(b, k.Refresh, k.Help, k.Back)
}

func (k keyMap) formHelp() bindings {
	return bindings{k.NextField, k.PrevField, k.Submit, k.Cancel}
}

func (k keyMap) confirmHelp() bindings {
	return bindings{k.Confirm, k.Deny}
}

func newKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next page"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Initial: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "initial"),
		),
		SortField: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort field"),
		),
		SortDir: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "flip sort"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("ctrl+d", "delete"),
			key.WithHelp("ctrl+d", "delete"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save"),
		),
		Complete: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "complete"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "confirm"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n/esc", "cancel"),
		),
		Register: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "create account"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}
