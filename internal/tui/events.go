package tui

import (
	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/billie-coop/metanet/internal/auth"
	"github.com/billie-coop/metanet/internal/events"
	"github.com/billie-coop/metanet/internal/permission"
	"github.com/billie-coop/metanet/internal/settings"
	"github.com/billie-coop/metanet/internal/tui/components/dialog"
	"github.com/billie-coop/metanet/internal/tui/styles"
)

// listenForEvents waits for the next broker event. A closed subscription
// ends the loop.
func (m *Model) listenForEvents() tea.Cmd {
	sub := m.eventSub
	return func() tea.Msg {
		ev, ok := <-sub
		if !ok {
			return nil
		}
		return ev
	}
}

// handleEvent processes events from the event broker
func (m *Model) handleEvent(event events.Event) tea.Cmd {
	switch event.Type {
	case events.QueueChanged:
		if p, ok := event.Payload.(permission.QueueChangedPayload); ok {
			return m.showHead(p.Head, p.Len)
		}

	case events.AuthStateChanged:
		if snap, ok := event.Payload.(auth.Snapshot); ok {
			return m.followAuth(snap)
		}

	case events.SettingsChanged:
		if s, ok := event.Payload.(settings.Settings); ok {
			return m.applySettings(s)
		}

	case events.StatusMessage:
		if p, ok := event.Payload.(events.StatusPayload); ok {
			return m.statusBar.Show(p.Level, p.Message)
		}

	case events.Navigate:
		if p, ok := event.Payload.(events.NavigatePayload); ok && m.authenticated() {
			m.setPage(pageDashboard)
			return m.loadDashboard(p.Label)
		}

	case events.DialogOpen:
		if p, ok := event.Payload.(events.DialogPayload); ok {
			return m.openDialog(dialog.DialogType(p.DialogID))
		}

	case events.QuitRequested:
		return tea.Quit
	}
	return nil
}

// showHead puts the head of the approval queue on screen.
func (m *Model) showHead(head *permission.Request, queued int) tea.Cmd {
	m.pending = queued
	cmd := m.dialogs.SetApproval(head, queued)
	return tea.Batch(cmd, m.chips.Request(m.dialogs.Approval().Subjects()...))
}

// followAuth moves between pages and login dialogs as the sequence advances.
func (m *Model) followAuth(snap auth.Snapshot) tea.Cmd {
	prev := m.snap
	m.snap = snap

	var cmds []tea.Cmd
	if snap.State != auth.StateCode {
		cmds = append(cmds, m.dialogs.CloseDialog(dialog.CodeDialogType))
	}
	if snap.State != auth.StateRecoveryKey {
		cmds = append(cmds, m.dialogs.CloseDialog(dialog.RecoveryKeyDialogType))
	}

	switch snap.State {
	case auth.StateAuthenticated:
		if prev.State == auth.StateAuthenticated {
			break
		}
		if snap.NewUser {
			m.setPage(pageWelcome)
		} else {
			m.setPage(pageDashboard)
		}
		m.dashboard.SetTrusted(m.app.Settings.Current().TrustedEntities)
		cmds = append(cmds, m.loadDashboard(""))

	case auth.StateCode:
		m.dialogs.Code().SetPhone(snap.Phone)
		if !m.dialogs.IsOpen(dialog.CodeDialogType) {
			cmds = append(cmds, m.dialogs.OpenDialog(dialog.CodeDialogType))
		}

	case auth.StateRecoveryKey:
		m.dialogs.RecoveryKey().SetKey(snap.RecoveryKey)
		if !m.dialogs.IsOpen(dialog.RecoveryKeyDialogType) {
			cmds = append(cmds, m.dialogs.OpenDialog(dialog.RecoveryKeyDialogType))
		}
	}

	if snap.State != auth.StateAuthenticated {
		cmds = append(cmds, m.dialogs.CloseDialog(dialog.SettingsDialogType))
		if snap.Recovering {
			m.setPage(pageRecovery)
		} else {
			m.setPage(pageGreeter)
		}
	}
	m.greeter.SetSnapshot(snap)
	m.recovery.SetSnapshot(snap)
	return tea.Batch(cmds...)
}

// applySettings switches the theme and refreshes everything that shows
// settings dependent values.
func (m *Model) applySettings(s settings.Settings) tea.Cmd {
	if err := styles.DefaultManager().SetTheme(s.Theme.Mode); err != nil {
		m.app.Logger.Warn("unknown theme", "theme", s.Theme.Mode)
	}
	m.dashboard.SetTrusted(s.TrustedEntities)

	// trust changed, so every label may resolve differently
	m.chips.Invalidate()
	cmds := []tea.Cmd{
		m.chips.Request(m.dialogs.Approval().Subjects()...),
		m.chips.Request(m.dashboard.Subjects()...),
	}
	if m.authenticated() {
		cmds = append(cmds, m.loadDashboard(m.dashboard.Label()))
	}
	return tea.Batch(cmds...)
}

// openDialog opens a dialog by ID. Settings need a signed in user.
func (m *Model) openDialog(t dialog.DialogType) tea.Cmd {
	switch t {
	case dialog.SettingsDialogType:
		if !m.authenticated() {
			return m.statusBar.Show(events.StatusWarning, "Sign in to change settings")
		}
		m.dialogs.Settings().SetSettings(m.app.Settings.Current())
	case dialog.HelpDialogType, dialog.QuitDialogType:
	default:
		return nil
	}
	return m.dialogs.OpenDialog(t)
}
