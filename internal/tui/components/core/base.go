// Package core holds the building blocks shared by pages and dialogs.
package core

import tea "github.com/charmbracelet/bubbletea/v2"

// Component is a piece of the screen driven by the shell. Components update
// in place and return only a command.
type Component interface {
	Init() tea.Cmd
	Update(tea.Msg) tea.Cmd
	View() string
}

// Sizeable components can be resized
type Sizeable interface {
	SetSize(width, height int) tea.Cmd
}

// FocusableBase provides basic focus management
type FocusableBase struct {
	focused bool
}

// IsFocused returns whether the component is focused
func (f *FocusableBase) IsFocused() bool {
	return f.focused
}

// Focus focuses the component
func (f *FocusableBase) Focus() tea.Cmd {
	f.focused = true
	return nil
}

// Blur removes focus from the component
func (f *FocusableBase) Blur() tea.Cmd {
	f.focused = false
	return nil
}

// SizeableBase provides basic size management
type SizeableBase struct {
	Width  int
	Height int
}

// SetSize sets the component size
func (s *SizeableBase) SetSize(width, height int) tea.Cmd {
	s.Width = width
	s.Height = height
	return nil
}

// Emit wraps msg in a command so a component can hand an intent to the shell.
func Emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
