package dialog

import (
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/metanet/internal/tui/styles"
)

const shortcutsText = `# Keys

- **ctrl+c** quit, asks first
- **ctrl+s** open settings
- **f1** this help
- **pgup / pgdown** scroll the dashboard
- **esc** close a dialog, or deny a request

**In a permission request**
- **y** allow, **n** deny
- **←/→** pick a button, **enter** press it
- **↑/↓** and **space** choose what a group request may do`

const permissionsText = `# Permissions

Apps ask before they use your keys, your baskets or your certificates.
Requests wait in one queue and are shown one at a time, oldest first.

- **Level 0** protocols need no keys.
- **Level 1** protocols use one key for the whole app.
- **Level 2** protocols use a separate key for each counterparty.

Names and icons come from registry operators. Only operators you trust are
asked, and the one you trust most wins when they disagree. Adjust trust in
**settings**.`

// HelpDialog displays help information
type HelpDialog struct {
	*BaseDialog

	activeTab int
	tabs      []string
	pages     []string
}

// NewHelpDialog creates a help dialog whose first tab shows commandsText.
func NewHelpDialog(commandsText string) *HelpDialog {
	return &HelpDialog{
		BaseDialog: NewBaseDialog("Help"),
		tabs:       []string{"Commands", "Keys", "Permissions"},
		pages:      []string{commandsText, shortcutsText, permissionsText},
	}
}

func (d *HelpDialog) Init() tea.Cmd {
	return nil
}

func (d *HelpDialog) Update(msg tea.Msg) tea.Cmd {
	if !d.isOpen {
		return nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc", "q", "f1":
			return d.Close()
		case "tab", "right", "l":
			d.activeTab = (d.activeTab + 1) % len(d.tabs)
		case "shift+tab", "left", "h":
			d.activeTab = (d.activeTab - 1 + len(d.tabs)) % len(d.tabs)
		case "1", "2", "3":
			d.activeTab = int(msg.String()[0] - '1')
		}
	}
	return nil
}

func (d *HelpDialog) View() string {
	if !d.isOpen {
		return ""
	}
	theme := styles.CurrentTheme()

	tabs := make([]string, 0, len(d.tabs))
	for i, tab := range d.tabs {
		style := lipgloss.NewStyle().Padding(0, 2).Foreground(theme.FgSubtle)
		if i == d.activeTab {
			style = style.Foreground(theme.Accent).Bold(true).Underline(true)
		}
		tabs = append(tabs, style.Render(tab))
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		"",
		styles.RenderMarkdown(d.pages[d.activeTab], d.ContentWidth()),
	)
	return d.RenderDialog(content)
}
