// Package page holds the full screen pages behind the dialogs: the greeter,
// account recovery, the first run welcome and the dashboard.
package page

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/metanet/internal/resolve"
	"github.com/billie-coop/metanet/internal/tui/components/core"
	"github.com/billie-coop/metanet/internal/tui/styles"
)

// Page is a full screen view. Only one page is active at a time.
type Page interface {
	core.Component
	core.Sizeable
}

// Labeler renders resolved labels; chip.Set implements it.
type Labeler interface {
	Render(subj resolve.Subject) string
}

// Intents pages hand to the shell.
type (
	SubmitPhoneMsg struct {
		Phone string
	}
	SubmitPasswordMsg struct {
		Password string
		Confirm  string
	}
	SubmitRecoveryKeyMsg struct {
		Key string
	}
	BeginRecoveryMsg  struct{}
	CancelRecoveryMsg struct{}
	ContinueMsg       struct{}
	CommandMsg        struct {
		Input string
	}
)

// passwordForm is a password field with an optional confirmation field.
type passwordForm struct {
	password *core.TextInput
	confirm  *core.TextInput
	// withConfirm asks for the password twice.
	withConfirm bool
	onConfirm   bool
	err         string
}

func newPasswordForm() *passwordForm {
	pw := core.NewTextInput("password")
	pw.SetMasked(true)
	cf := core.NewTextInput("confirm password")
	cf.SetMasked(true)
	return &passwordForm{password: pw, confirm: cf}
}

func (f *passwordForm) reset(withConfirm bool) {
	f.password.Reset()
	f.confirm.Reset()
	f.withConfirm = withConfirm
	f.err = ""
	f.focus(false)
}

func (f *passwordForm) focus(onConfirm bool) {
	f.onConfirm = onConfirm && f.withConfirm
	if f.onConfirm {
		f.password.Blur()
		f.confirm.Focus()
	} else {
		f.confirm.Blur()
		f.password.Focus()
	}
}

func (f *passwordForm) update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		f.focus(!f.onConfirm)
		return nil
	case "enter":
		return f.submit()
	}
	if f.onConfirm {
		return f.confirm.Update(msg)
	}
	return f.password.Update(msg)
}

func (f *passwordForm) submit() tea.Cmd {
	pw := f.password.Value()
	if pw == "" {
		f.err = "Enter a password"
		return nil
	}
	if !f.withConfirm {
		f.err = ""
		return core.Emit(SubmitPasswordMsg{Password: pw, Confirm: pw})
	}
	if !f.onConfirm {
		f.focus(true)
		return nil
	}
	if f.confirm.Value() != pw {
		f.err = "Passwords do not match"
		f.confirm.Reset()
		return nil
	}
	f.err = ""
	return core.Emit(SubmitPasswordMsg{Password: pw, Confirm: f.confirm.Value()})
}

func (f *passwordForm) view() string {
	s := styles.CurrentTheme().S()
	lines := []string{field("Password", f.password)}
	if f.withConfirm {
		lines = append(lines, field("Confirm", f.confirm))
	}
	if f.err != "" {
		lines = append(lines, s.Error.Render(styles.ErrorIcon+" "+f.err))
	}
	return strings.Join(lines, "\n")
}

// field renders a labelled input box.
func field(label string, in *core.TextInput) string {
	s := styles.CurrentTheme().S()
	box := s.Input
	if in.Focused() {
		box = s.InputFocused
	}
	return lipgloss.JoinHorizontal(lipgloss.Center,
		s.Muted.Width(10).Render(label),
		box.Width(36).Render(in.View()),
	)
}

// card centers a bordered block of content in the page.
func card(width, height int, content string) string {
	theme := styles.CurrentTheme()
	framed := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(1, 3).
		Render(content)
	if width == 0 || height == 0 {
		return framed
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, framed)
}
