// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	// Search submits the query.
	Search key.Binding

	// Up navigates up in a list.
	Up key.Binding

	// Down navigates down in a list.
	Down key.Binding

	// Open shows the full content of the selected item.
	Open key.Binding

	// NewSearch focuses the query input again.
	NewSearch key.Binding

	// Sources switches to the sources list.
	Sources key.Binding

	// Remove deletes the selected source.
	Remove key.Binding

	// Reload refreshes the current list.
	Reload key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Search: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		NewSearch: key.NewBinding(
			key.WithKeys("/", "n"),
			key.WithHelp("/", "new search"),
		),
		Sources: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "sources"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "remove"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
	}
}

// ShortHelp returns the hints shown while typing a query.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Sources, k.Help}
}

// ResultsHelp returns the hints shown while browsing results.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.NewSearch, k.Up, k.Open, k.Sources, k.Quit}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open},
		{k.Search, k.NewSearch, k.Back},
		{k.Sources, k.Remove, k.Reload},
		{k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
