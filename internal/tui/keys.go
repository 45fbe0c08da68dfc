package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Status    key.Binding
	Tag       key.Binding
	Search    key.Binding
	Apply     key.Binding
	More      key.Binding
	Retry     key.Binding
	Propose   key.Binding
	Save      key.Binding
	Advice    key.Binding
	Dashboard key.Binding
	Back      key.Binding
	Logout    key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Status:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status filter")),
		Tag:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tag filter")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Apply:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply filters")),
		More:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "load more")),
		Retry:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		Propose:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next status")),
		Save:      key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "save status")),
		Advice:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "suggestion")),
		Dashboard: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dashboard")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Logout:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) reportHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Status, k.Tag, k.Search, k.Apply, k.More, k.Propose, k.Save, k.Advice, k.Dashboard, k.Quit}
}
