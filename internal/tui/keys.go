package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Navigation
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Back  key.Binding

	// Actions
	Filter     key.Binding
	Trailer    key.Binding
	ToggleList key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter", "l", "right"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "q", "h", "left"),
			key.WithHelp("q", "back"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Trailer: key.NewBinding(
			key.WithKeys("t", "p"),
			key.WithHelp("t", "trailer"),
		),
		ToggleList: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "my list"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// renderHelp renders bindings as a single help line
func renderHelp(bindings ...key.Binding) string {
	var out string
	for i, b := range bindings {
		if i > 0 {
			out += "  "
		}
		h := b.Help()
		out += helpKey(h.Key) + " " + helpDesc(h.Desc)
	}
	return out
}
