package dialog

import (
	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/billie-coop/metanet/internal/resolve"
)

// Dialog represents a modal dialog component
type Dialog interface {
	Init() tea.Cmd
	Update(tea.Msg) tea.Cmd
	View() string

	SetSize(width, height int) tea.Cmd
	IsOpen() bool
	Open() tea.Cmd
	Close() tea.Cmd
}

// Labeler renders resolved labels; chip.Set implements it.
type Labeler interface {
	Label(subj resolve.Subject) resolve.Metadata
	Render(subj resolve.Subject) string
}
