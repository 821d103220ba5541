package page

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/billie-coop/metanet/internal/auth"
	"github.com/billie-coop/metanet/internal/tui/components/core"
	"github.com/billie-coop/metanet/internal/tui/styles"
)

// Recovery restores an account with the phone number and the recovery key,
// then sets a new password.
type Recovery struct {
	core.SizeableBase

	snap     auth.Snapshot
	phone    *core.TextInput
	key      *core.TextInput
	password *passwordForm
}

var _ Page = (*Recovery)(nil)

// NewRecovery creates the recovery page.
func NewRecovery() *Recovery {
	phone := core.NewTextInput("+1 555 0100")
	phone.SetLimit(20)
	phone.Focus()
	return &Recovery{
		snap:     auth.Snapshot{State: auth.StatePhone, Recovering: true},
		phone:    phone,
		key:      core.NewTextInput("recovery key"),
		password: newPasswordForm(),
	}
}

// SetSnapshot follows the login sequence.
func (r *Recovery) SetSnapshot(snap auth.Snapshot) {
	prev := r.snap
	r.snap = snap
	r.phone.Blur()
	r.key.Blur()

	switch {
	case snap.State == auth.StatePhone:
		if prev.State != auth.StatePhone {
			r.phone.SetValue(snap.Phone)
		}
		r.phone.Focus()
	case snap.State == auth.StatePassword && !snap.RecoveryAccepted:
		if prev.State != auth.StatePassword {
			r.key.Reset()
		}
		r.key.Focus()
	case snap.State == auth.StatePassword:
		if !prev.RecoveryAccepted {
			r.password.reset(true)
		}
	}
}

func (r *Recovery) Init() tea.Cmd {
	return nil
}

func (r *Recovery) Update(msg tea.Msg) tea.Cmd {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if kmsg.String() == "esc" {
		return core.Emit(CancelRecoveryMsg{})
	}

	switch {
	case r.snap.State == auth.StatePhone:
		if kmsg.String() == "enter" {
			phone := strings.TrimSpace(r.phone.Value())
			if phone == "" {
				return nil
			}
			return core.Emit(SubmitPhoneMsg{Phone: phone})
		}
		return r.phone.Update(kmsg)
	case r.snap.State == auth.StatePassword && !r.snap.RecoveryAccepted:
		if kmsg.String() == "enter" {
			key := strings.TrimSpace(r.key.Value())
			if key == "" {
				return nil
			}
			return core.Emit(SubmitRecoveryKeyMsg{Key: key})
		}
		return r.key.Update(kmsg)
	case r.snap.State == auth.StatePassword:
		return r.password.update(kmsg)
	}
	return nil
}

func (r *Recovery) View() string {
	s := styles.CurrentTheme().S()

	lines := []string{
		s.Title.Render("Account Recovery"),
		s.Muted.Render("You need your phone and your recovery key."),
		"",
	}
	switch {
	case r.snap.State == auth.StatePhone:
		lines = append(lines, field("Phone", r.phone))
	case r.snap.State == auth.StateCode:
		lines = append(lines, s.Info.Render(styles.LoadingIcon+" Waiting for your code…"))
	case r.snap.State == auth.StatePassword && r.snap.NewUser:
		lines = append(lines,
			s.Warning.Render(styles.WarningIcon+" There is no account for this number."),
			s.Text.Render("Press esc and sign up instead."),
		)
	case r.snap.State == auth.StatePassword && !r.snap.RecoveryAccepted:
		lines = append(lines, field("Key", r.key))
	case r.snap.State == auth.StatePassword:
		lines = append(lines,
			s.Success.Render(styles.CheckIcon+" Recovery key accepted."),
			s.Text.Render("Choose a new password."),
			"",
			r.password.view(),
		)
	}
	lines = append(lines, "", s.Subtle.Render("enter continue • esc back to sign in"))
	return card(r.Width, r.Height, strings.Join(lines, "\n"))
}
