package hostmon

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	Export     key.Binding
	NextTab    key.Binding
	PrevTab    key.Binding
	Dismiss    key.Binding
	DismissAll key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export report"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("]", "l", "right"),
			key.WithHelp("]", "next chart"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("[", "h", "left"),
			key.WithHelp("[", "prev chart"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("enter", "esc"),
			key.WithHelp("enter", "dismiss"),
		),
		DismissAll: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "dismiss all"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Export, k.PrevTab, k.NextTab, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		k.ShortHelp(),
		{k.Dismiss, k.DismissAll},
	}
}
