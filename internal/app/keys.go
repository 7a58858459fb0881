package app

import "charm.land/bubbles/v2/key"

// KeyMap defines all keybindings for the application.
type KeyMap struct {
	Quit     key.Binding
	Tab      key.Binding
	Clients  key.Binding
	Settings key.Binding
	About    key.Binding
	Help     key.Binding
	New      key.Binding
	Download key.Binding
	Delete   key.Binding
	Refresh  key.Binding
	GenCA    key.Binding
	Logout   key.Binding
	Confirm  key.Binding
	Command  key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next screen"),
		),
		Clients: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "clients"),
		),
		Settings: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "settings"),
		),
		About: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "about"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new client"),
		),
		Download: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "download"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "delete"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "ctrl+l"),
			key.WithHelp("r", "refresh"),
		),
		GenCA: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "generate CA"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "log out"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.New, k.Download, k.Delete, k.Refresh, k.Tab, k.Command, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Clients, k.Settings, k.About, k.Tab},
		{k.New, k.Download, k.Delete, k.Refresh, k.GenCA},
		{k.Command, k.Logout, k.Help, k.Quit},
	}
}
