package page

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/billie-coop/metanet/internal/auth"
	"github.com/billie-coop/metanet/internal/tui/components/core"
	"github.com/billie-coop/metanet/internal/tui/styles"
)

// Greeter signs the user in: phone number first, then a password once the
// host knows whether the account is new.
type Greeter struct {
	core.SizeableBase

	snap     auth.Snapshot
	phone    *core.TextInput
	password *passwordForm
}

var _ Page = (*Greeter)(nil)

// NewGreeter creates the sign in page.
func NewGreeter() *Greeter {
	phone := core.NewTextInput("+1 555 0100")
	phone.SetLimit(20)
	phone.Focus()
	return &Greeter{
		snap:     auth.Snapshot{State: auth.StatePhone},
		phone:    phone,
		password: newPasswordForm(),
	}
}

// SetSnapshot follows the login sequence.
func (g *Greeter) SetSnapshot(snap auth.Snapshot) {
	prev := g.snap
	g.snap = snap
	switch snap.State {
	case auth.StatePhone:
		if prev.State != auth.StatePhone {
			g.phone.SetValue(snap.Phone)
		}
		g.phone.Focus()
	case auth.StatePassword:
		g.phone.Blur()
		if prev.State != auth.StatePassword || prev.NewUser != snap.NewUser {
			g.password.reset(snap.NewUser)
		}
	default:
		g.phone.Blur()
	}
}

func (g *Greeter) Init() tea.Cmd {
	return nil
}

func (g *Greeter) Update(msg tea.Msg) tea.Cmd {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch g.snap.State {
	case auth.StatePhone:
		switch kmsg.String() {
		case "ctrl+r":
			return core.Emit(BeginRecoveryMsg{})
		case "enter":
			phone := strings.TrimSpace(g.phone.Value())
			if phone == "" {
				return nil
			}
			return core.Emit(SubmitPhoneMsg{Phone: phone})
		}
		return g.phone.Update(kmsg)
	case auth.StatePassword:
		return g.password.update(kmsg)
	}
	return nil
}

func (g *Greeter) View() string {
	s := styles.CurrentTheme().S()

	lines := []string{
		styles.RenderThemeGradient("MetaNet Client", true),
		s.Muted.Render("Your identity and wallet for the MetaNet"),
		"",
	}
	switch g.snap.State {
	case auth.StatePhone:
		lines = append(lines,
			s.Text.Render("Enter your phone number to sign in or create an account."),
			"",
			field("Phone", g.phone),
			"",
			s.Subtle.Render("enter continue • ctrl+r forgot password"),
		)
	case auth.StateCode:
		lines = append(lines, s.Info.Render(styles.LoadingIcon+" Waiting for your code…"))
	case auth.StatePassword:
		intro := "Welcome back. Enter your password."
		if g.snap.NewUser {
			intro = "Choose a password for your new account."
		}
		lines = append(lines,
			s.Text.Render(intro),
			s.Muted.Render(g.snap.Phone),
			"",
			g.password.view(),
			"",
			s.Subtle.Render("enter continue • tab switch field"),
		)
	case auth.StateRecoveryKey:
		lines = append(lines, s.Info.Render(styles.LoadingIcon+" Save your recovery key to finish."))
	}
	return card(g.Width, g.Height, strings.Join(lines, "\n"))
}
