package dialog

import (
	"strings"

	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/metanet/internal/tui/components/core"
	"github.com/billie-coop/metanet/internal/tui/styles"
)

// RecoveryKeySavedMsg confirms the user stored the recovery key.
type RecoveryKeySavedMsg struct{}

// RecoveryKeyDialog shows a new recovery key until the user confirms it is
// saved. It cannot be dismissed.
type RecoveryKeyDialog struct {
	*BaseDialog

	keys      KeyMap
	key       string
	confirmed bool
}

// NewRecoveryKeyDialog creates the recovery key dialog.
func NewRecoveryKeyDialog() *RecoveryKeyDialog {
	return &RecoveryKeyDialog{
		BaseDialog: NewBaseDialog("Save Your Recovery Key"),
		keys:       DefaultKeyMap(),
	}
}

// SetKey sets the key to show and clears the confirmation.
func (d *RecoveryKeyDialog) SetKey(recoveryKey string) {
	if recoveryKey != d.key {
		d.confirmed = false
	}
	d.key = recoveryKey
}

func (d *RecoveryKeyDialog) Init() tea.Cmd {
	return nil
}

func (d *RecoveryKeyDialog) Update(msg tea.Msg) tea.Cmd {
	if !d.isOpen {
		return nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, d.keys.Toggle):
			d.confirmed = !d.confirmed
		case key.Matches(msg, d.keys.Confirm) && d.confirmed:
			return core.Emit(RecoveryKeySavedMsg{})
		}
	}
	return nil
}

func (d *RecoveryKeyDialog) View() string {
	if !d.isOpen {
		return ""
	}
	theme := styles.CurrentTheme()
	s := theme.S()
	width := d.ContentWidth()

	box := styles.UncheckedIcon
	if d.confirmed {
		box = styles.CheckedIcon
	}
	keyBox := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.Accent).
		Padding(0, 1).
		Width(min(width, lipgloss.Width(d.key)+4)).
		Render(s.Bold.Render(d.key))

	content := strings.Join([]string{
		lipgloss.NewStyle().Width(width).Render(s.Text.Render(
			"Together with your phone, this key restores your account if you forget your password. Write it down and keep it somewhere safe.")),
		"",
		keyBox,
		"",
		s.Text.Render(box + " I have saved my recovery key"),
		"",
		helpLine(d.keys.Toggle, d.keys.Confirm),
	}, "\n")
	return d.RenderDialog(content)
}
