package dialog

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/metanet/internal/tui/styles"
)

// QuitDialog asks for confirmation before quitting
type QuitDialog struct {
	*BaseDialog

	selectedNo bool
	// pending is the number of requests still waiting for a decision.
	pending int
}

// NewQuitDialog creates a new quit confirmation dialog
func NewQuitDialog() *QuitDialog {
	return &QuitDialog{
		BaseDialog: NewBaseDialog("Quit MetaNet?"),
		selectedNo: true,
	}
}

// SetPending sets how many requests would be left unanswered.
func (d *QuitDialog) SetPending(n int) {
	d.pending = n
}

func (d *QuitDialog) Open() tea.Cmd {
	d.selectedNo = true
	return d.BaseDialog.Open()
}

func (d *QuitDialog) Init() tea.Cmd {
	return nil
}

func (d *QuitDialog) Update(msg tea.Msg) tea.Cmd {
	if !d.isOpen {
		return nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c":
			// a second ctrl+c confirms
			return tea.Quit
		case "esc", "n", "N":
			return d.Close()
		case "y", "Y":
			return tea.Quit
		case "left", "right", "tab", "h", "l":
			d.selectedNo = !d.selectedNo
		case "enter", "space":
			if d.selectedNo {
				return d.Close()
			}
			return tea.Quit
		}
	}
	return nil
}

func (d *QuitDialog) View() string {
	if !d.isOpen {
		return ""
	}
	s := styles.CurrentTheme().S()

	focused := 0
	if d.selectedNo {
		focused = 1
	}
	lines := []string{s.Bold.Render("Are you sure you want to quit?")}
	if d.pending > 0 {
		lines = append(lines, s.Warning.Render(fmt.Sprintf("%d permission request(s) will be left unanswered.", d.pending)))
	}
	lines = append(lines,
		"",
		renderButtons([]string{"Yes", "No"}, focused),
		"",
		s.Subtle.Italic(true).Render("ctrl+c again to quit • esc to cancel"),
	)
	return d.RenderDialog(lipgloss.JoinVertical(lipgloss.Center, lines...))
}
