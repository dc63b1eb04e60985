package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the form and status view.
type keyMap struct {
	// Form
	Start     key.Binding
	NextField key.Binding
	PrevField key.Binding
	Left      key.Binding
	Right     key.Binding

	// Running
	Stop key.Binding

	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Start: key.NewBinding(
			key.WithKeys("enter", "s"),
			key.WithHelp("enter/s", "Start monitoring"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "Next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "Previous field"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "Previous choice"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l", " "),
			key.WithHelp("→/l", "Next choice"),
		),
		Stop: key.NewBinding(
			key.WithKeys("x", "ctrl+c", "esc"),
			key.WithHelp("x/esc", "Stop monitoring"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextField, k.PrevField, k.Left, k.Right, k.Start},
		{k.Stop},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
