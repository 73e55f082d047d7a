package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding

	// View switching
	ViewChannels  key.Binding
	ViewEvents    key.Binding
	ViewCommands  key.Binding
	ViewTransfers key.Binding
	ViewLogs      key.Binding
	ViewStats     key.Binding
	ViewErrors    key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Events viewport actions
	Follow     key.Binding
	ToggleLock key.Binding

	// Logs actions
	Open key.Binding
	Back key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "Q"),
			key.WithHelp("Q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous view"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back to channels"),
		),

		ViewChannels: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Channels"),
		),
		ViewEvents: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Events"),
		),
		ViewCommands: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "Commands"),
		),
		ViewTransfers: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Transfers"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Logs"),
		),
		ViewStats: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Stats"),
		),
		ViewErrors: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Errors"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("j/k", "Navigate"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/k", "Navigate"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn", "Page down"),
		),

		Follow: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Follow tail"),
		),
		ToggleLock: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Lock to tail"),
		),

		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "Open log"),
		),
		Back: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("Bksp", "Log list"),
		),
	}
}
