// Package status renders the bottom bar and its temporary toasts.
package status

import (
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/billie-coop/metanet/internal/events"
	"github.com/billie-coop/metanet/internal/tui/styles"
)

// Toast is a status bar message
type Toast struct {
	Content   string
	Level     events.StatusLevel
	Timestamp time.Time
}

// Component implements a status bar that shows temporary messages
type Component struct {
	toast *Toast
	width int
	left  string

	clearAfter time.Duration
}

// New creates a new status bar component
func New() *Component {
	return &Component{
		clearAfter: 5 * time.Second,
	}
}

// Show displays a toast and schedules its removal. Errors stay twice as long.
func (c *Component) Show(level events.StatusLevel, content string) tea.Cmd {
	stamp := time.Now()
	c.toast = &Toast{Content: content, Level: level, Timestamp: stamp}

	after := c.clearAfter
	if level == events.StatusError {
		after *= 2
	}
	return tea.Tick(after, func(time.Time) tea.Msg {
		return clearToastMsg{timestamp: stamp}
	})
}

// Toast returns the visible toast, if any.
func (c *Component) Toast() (Toast, bool) {
	if c.toast == nil {
		return Toast{}, false
	}
	return *c.toast, true
}

// SetLeftContent sets the left side content
func (c *Component) SetLeftContent(content string) {
	c.left = content
}

// SetSize sets the bar width
func (c *Component) SetSize(width, _ int) tea.Cmd {
	c.width = width
	return nil
}

// clearToastMsg is sent when a toast should be cleared
type clearToastMsg struct {
	timestamp time.Time
}

func (c *Component) Init() tea.Cmd {
	return nil
}

// Update clears the toast its timer was scheduled for. A newer toast is kept.
func (c *Component) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(clearToastMsg); ok {
		if c.toast != nil && msg.timestamp.Equal(c.toast.Timestamp) {
			c.toast = nil
		}
	}
	return nil
}

func (c *Component) View() string {
	if c.width == 0 {
		return ""
	}
	theme := styles.CurrentTheme()

	bar := lipgloss.NewStyle().
		Width(c.width).
		Height(1).
		Background(theme.BgSubtle).
		Foreground(theme.FgBase).
		Padding(0, 1)

	available := c.width - 2
	right := ""
	if c.toast != nil {
		right = c.renderToast(min(available/2+available/4, available))
	}
	left := ansi.Truncate(c.left, max(available-lipgloss.Width(right)-1, 0), "…")

	gap := available - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return bar.Render(left + lipgloss.NewStyle().Width(gap).Render("") + right)
}

func (c *Component) renderToast(width int) string {
	theme := styles.CurrentTheme()
	var icon string
	style := theme.S().Info
	switch c.toast.Level {
	case events.StatusSuccess:
		icon, style = styles.CheckIcon, theme.S().Success
	case events.StatusWarning:
		icon, style = styles.WarningIcon, theme.S().Warning
	case events.StatusError:
		icon, style = styles.ErrorIcon, theme.S().Error
	default:
		icon = styles.InfoIcon
	}
	text := ansi.Truncate(icon+" "+c.toast.Content, width, "…")
	return style.Background(theme.BgSubtle).Render(text)
}
