package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/metanet/internal/resolve"
	"github.com/billie-coop/metanet/internal/tui/styles"
)

const (
	headerHeight = 2
	statusHeight = 1
)

// bodyHeight is what is left for the page or dialog.
func (m *Model) bodyHeight() int {
	return max(m.height-headerHeight-statusHeight, 1)
}

// resize resizes all components based on current window size
func (m *Model) resize() tea.Cmd {
	h := m.bodyHeight()
	return tea.Batch(
		m.greeter.SetSize(m.width, h),
		m.recovery.SetSize(m.width, h),
		m.welcome.SetSize(m.width, h),
		m.dashboard.SetSize(m.width, h),
		m.dialogs.SetSize(m.width, h),
		m.statusBar.SetSize(m.width, statusHeight),
	)
}

func (m *Model) render() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	// a dialog replaces the page, header and status bar stay visible
	body := m.dialogs.View()
	if body == "" {
		body = m.activePage().View()
	}
	body = lipgloss.NewStyle().Width(m.width).Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(body)

	m.statusBar.SetLeftContent(m.statusLine())
	return lipgloss.JoinVertical(lipgloss.Left, m.header(), body, m.statusBar.View())
}

func (m *Model) header() string {
	theme := styles.CurrentTheme()
	title := styles.RenderThemeGradient("MetaNet Client", true)

	right := ""
	if m.pending > 0 {
		right = theme.S().Warning.Render(fmt.Sprintf("%s %d waiting", styles.WarningIcon, m.pending))
	}
	gap := max(m.width-lipgloss.Width(title)-lipgloss.Width(right)-2, 1)
	line := " " + title + lipgloss.NewStyle().Width(gap).Render("") + right
	return lipgloss.NewStyle().
		Width(m.width).
		Height(headerHeight-1). // plus the border
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(theme.Border).
		Render(line)
}

func (m *Model) statusLine() string {
	line := string(m.current)
	if m.snap.IdentityKey != "" {
		line += " • " + resolve.ShortKey(m.snap.IdentityKey)
	}
	if m.pending > 0 {
		line += fmt.Sprintf(" • %d pending", m.pending)
	}
	return line
}
