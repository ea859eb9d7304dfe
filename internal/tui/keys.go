package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the bindings shown in the help footer.
type keyMap struct {
	Hit      key.Binding
	Stand    key.Binding
	NewRound key.Binding
	Slot     key.Binding
	Focus    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Hit: key.NewBinding(
			key.WithKeys("h", " "),
			key.WithHelp("h", "hit"),
		),
		Stand: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stand"),
		),
		NewRound: key.NewBinding(
			key.WithKeys("n", "enter"),
			key.WithHelp("n", "new round"),
		),
		Slot: key.NewBinding(
			key.WithKeys("1", "2", "3", "4"),
			key.WithHelp("1-4", "use card / choose"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "scroll log"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Hit, k.Stand, k.Slot, k.NewRound, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Hit, k.Stand, k.NewRound},
		{k.Slot, k.Focus},
		{k.Help, k.Quit},
	}
}

// slotIndex maps a slot key to a zero-based index.
func slotIndex(s string) (int, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '1'), true
}
