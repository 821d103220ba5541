package dialog

import (
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/metanet/internal/tui/components/core"
	"github.com/billie-coop/metanet/internal/tui/styles"
)

// maxContentWidth keeps long descriptions readable on wide terminals.
const maxContentWidth = 72

// BaseDialog provides common dialog functionality
type BaseDialog struct {
	core.FocusableBase
	core.SizeableBase

	title  string
	isOpen bool
}

// NewBaseDialog creates a new base dialog
func NewBaseDialog(title string) *BaseDialog {
	return &BaseDialog{title: title}
}

// IsOpen returns whether the dialog is open
func (d *BaseDialog) IsOpen() bool {
	return d.isOpen
}

// Open opens the dialog
func (d *BaseDialog) Open() tea.Cmd {
	d.isOpen = true
	return d.Focus()
}

// Close closes the dialog
func (d *BaseDialog) Close() tea.Cmd {
	d.isOpen = false
	return d.Blur()
}

// SetTitle replaces the title shown above the content.
func (d *BaseDialog) SetTitle(title string) {
	d.title = title
}

// ContentWidth is the width available to the dialog body.
func (d *BaseDialog) ContentWidth() int {
	w := d.Width - 8 // border and padding
	if w <= 0 || w > maxContentWidth {
		return maxContentWidth
	}
	return w
}

// RenderDialog frames content and centers it on the screen.
func (d *BaseDialog) RenderDialog(content string) string {
	if !d.isOpen {
		return ""
	}
	theme := styles.CurrentTheme()

	body := content
	if d.title != "" {
		title := theme.S().Title.MarginBottom(1).Render(d.title)
		body = lipgloss.JoinVertical(lipgloss.Left, title, content)
	}

	framed := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.BorderFocus).
		Padding(1, 2).
		Render(body)

	if d.Width == 0 || d.Height == 0 {
		return framed
	}
	return lipgloss.Place(d.Width, d.Height, lipgloss.Center, lipgloss.Center, framed)
}

// renderButtons draws a row of buttons with one focused.
func renderButtons(labels []string, focused int) string {
	s := styles.CurrentTheme().S()
	row := make([]string, 0, len(labels)*2)
	for i, label := range labels {
		if i > 0 {
			row = append(row, "  ")
		}
		if i == focused {
			row = append(row, s.ButtonFocused.Render(label))
		} else {
			row = append(row, s.Button.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, row...)
}
