package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Start         key.Binding
	ToggleArchive key.Binding
	ToggleJPEG    key.Binding
	ToggleVerbose key.Binding
	Cancel        key.Binding
	Reset         key.Binding
	Quit          key.Binding
	ForceQuit     key.Binding
}

// Option toggles use ctrl combinations so that every letter stays
// available to the URL field.
func defaultKeyMap() keyMap {
	return keyMap{
		Start:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start")),
		ToggleArchive: key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "archives")),
		ToggleJPEG:    key.NewBinding(key.WithKeys("ctrl+j"), key.WithHelp("ctrl+j", "jpeg")),
		ToggleVerbose: key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "verbose")),
		Cancel:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Reset:         key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "new download")),
		Quit:          key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:     key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// bindings lists the keys shown in the footer for a phase.
func (k keyMap) bindings(p phase) []key.Binding {
	switch p {
	case phaseInput:
		quit := k.Cancel
		quit.SetHelp("esc", "quit")
		return []key.Binding{k.Start, k.ToggleArchive, k.ToggleJPEG, k.ToggleVerbose, quit}
	case phaseScanning, phaseDownloading:
		return []key.Binding{k.Cancel}
	default:
		return []key.Binding{k.Reset, k.Quit}
	}
}
