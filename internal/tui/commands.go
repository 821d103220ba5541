package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/billie-coop/metanet/internal/settings"
	"github.com/billie-coop/metanet/internal/tui/components/dialog"
)

// decide sends the user's decision on the head request to the host.
func (m *Model) decide(msg dialog.DecisionMsg) tea.Cmd {
	ctx, q := m.ctx, m.app.Queue
	return func() tea.Msg {
		var err error
		switch {
		case !msg.Allow:
			err = q.Deny(ctx, msg.RequestID)
		case msg.Group != nil:
			err = q.GrantGroup(ctx, msg.RequestID, *msg.Group)
		default:
			err = q.Grant(ctx, msg.RequestID)
		}
		return decisionResultMsg{requestID: msg.RequestID, allow: msg.Allow, err: err}
	}
}

// authStep runs one step of the login sequence off the UI goroutine.
func (m *Model) authStep(step string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return authResultMsg{step: step, err: fn(ctx)}
	}
}

// loadDashboard reads the wallet for the dashboard.
func (m *Model) loadDashboard(label string) tea.Cmd {
	ctx, w := m.ctx, m.app.Wallet
	spin := m.dashboard.SetLoading(label)
	load := func() tea.Msg {
		data, err := w.Dashboard(ctx, label)
		return dashboardLoadedMsg{label: label, data: data, err: err}
	}
	return tea.Batch(spin, load)
}

// saveSettings stores the edited settings.
func (m *Model) saveSettings(next settings.Settings) tea.Cmd {
	ctx, svc := m.ctx, m.app.Settings
	return func() tea.Msg {
		err := svc.Update(ctx, func(s *settings.Settings) error {
			*s = next
			return nil
		})
		return settingsSavedMsg{err: err}
	}
}

// route hands the dashboard command line to the input router. Results come
// back as events.
func (m *Model) route(input string) tea.Cmd {
	ctx, r := m.ctx, m.app.Input
	return func() tea.Msg {
		r.Route(ctx, input)
		return nil
	}
}
