package dialog

import (
	"strings"

	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/billie-coop/metanet/internal/tui/components/core"
	"github.com/billie-coop/metanet/internal/tui/styles"
)

// SubmitCodeMsg sends the one-time code typed by the user.
type SubmitCodeMsg struct {
	Code string
}

// AbortCodeMsg cancels code entry.
type AbortCodeMsg struct{}

// CodeDialog asks for the code texted to the user's phone.
type CodeDialog struct {
	*BaseDialog

	keys  KeyMap
	input *core.TextInput
	phone string
}

// NewCodeDialog creates the code entry dialog.
func NewCodeDialog() *CodeDialog {
	in := core.NewTextInput("6-digit code")
	in.SetLimit(12)
	return &CodeDialog{
		BaseDialog: NewBaseDialog("Enter Your Code"),
		keys:       DefaultKeyMap(),
		input:      in,
	}
}

// SetPhone sets the number the code was sent to.
func (d *CodeDialog) SetPhone(phone string) {
	d.phone = phone
}

func (d *CodeDialog) Open() tea.Cmd {
	d.input.Reset()
	d.input.Focus()
	return d.BaseDialog.Open()
}

func (d *CodeDialog) Init() tea.Cmd {
	return nil
}

func (d *CodeDialog) Update(msg tea.Msg) tea.Cmd {
	if !d.isOpen {
		return nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, d.keys.Cancel):
			return core.Emit(AbortCodeMsg{})
		case key.Matches(msg, d.keys.Confirm):
			code := strings.TrimSpace(d.input.Value())
			if code == "" {
				return nil
			}
			d.input.Reset()
			return core.Emit(SubmitCodeMsg{Code: code})
		}
	}
	return d.input.Update(msg)
}

func (d *CodeDialog) View() string {
	if !d.isOpen {
		return ""
	}
	s := styles.CurrentTheme().S()

	sentTo := "We sent you a code."
	if d.phone != "" {
		sentTo = "We texted a code to " + s.Bold.Render(d.phone) + "."
	}
	content := strings.Join([]string{
		s.Text.Render(sentTo),
		"",
		s.InputFocused.Width(30).Render(d.input.View()),
		"",
		helpLine(d.keys.Confirm, d.keys.Cancel),
	}, "\n")
	return d.RenderDialog(content)
}
