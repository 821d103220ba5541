package dialog

import (
	"strings"

	"github.com/charmbracelet/bubbles/v2/key"

	"github.com/billie-coop/metanet/internal/tui/styles"
)

// KeyMap defines the dialog key bindings
type KeyMap struct {
	Allow   key.Binding
	Deny    key.Binding
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Switch  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Remove  key.Binding
}

// DefaultKeyMap returns the default dialog key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Allow: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "allow"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n/esc", "deny"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("space", " "),
			key.WithHelp("space", "toggle"),
		),
		Switch: key.NewBinding(
			key.WithKeys("left", "right", "tab", "shift+tab", "h", "l"),
			key.WithHelp("←/→", "switch"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "remove"),
		),
	}
}

// helpLine renders "key action • key action" for the given bindings.
func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return styles.CurrentTheme().S().Subtle.Italic(true).Render(strings.Join(parts, " • "))
}
