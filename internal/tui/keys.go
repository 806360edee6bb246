package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the countdown view bindings.
type KeyMap struct {
	Interrupt key.Binding
	New       key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Interrupt: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "interrupt"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new cycle"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Interrupt, k.New, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Interrupt, k.New}, {k.Help, k.Quit}}
}
