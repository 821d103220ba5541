package tui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/billie-coop/metanet/internal/app"
	"github.com/billie-coop/metanet/internal/auth"
	"github.com/billie-coop/metanet/internal/cache"
	"github.com/billie-coop/metanet/internal/config"
	"github.com/billie-coop/metanet/internal/events"
	"github.com/billie-coop/metanet/internal/host"
	"github.com/billie-coop/metanet/internal/logging"
	"github.com/billie-coop/metanet/internal/permission"
	"github.com/billie-coop/metanet/internal/tui/components/dialog"
)

func newTestModel(t *testing.T) (*Model, *app.App) {
	t.Helper()
	cfg := config.NewManager(t.TempDir())
	require.NoError(t, cfg.Load())
	cfg.Get().LocalCode = "123456"

	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	a, err := app.New(context.Background(), app.Options{
		Config:     cfg,
		Logger:     logging.Discard(),
		Store:      cache.NewMemoryStore(),
		HTTPClient: srv.Client(),
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	require.NoError(t, a.Start(context.Background()))
	t.Cleanup(func() { _ = a.Close() })

	m := New(context.Background(), a)
	t.Cleanup(m.Close)
	m.Init()
	m.Update(tea.WindowSizeMsg{Width: 110, Height: 40})
	return m, a
}

// send feeds msg to the model and returns the command it produced.
func send(m *Model, msg tea.Msg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

// firstMsg runs cmd and returns the first message that is not nil, flattening
// batches. Commands that block on the broker are never part of these batches.
func firstMsg(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if m := firstMsg(c); m != nil {
				return m
			}
		}
		return nil
	}
	return msg
}

func screen(m *Model) string {
	return ansi.Strip(m.render())
}

func queueEvent(a *app.App) events.Event {
	head, _ := a.Queue.Head()
	return events.Event{
		Type:    events.QueueChanged,
		Payload: permission.QueueChangedPayload{Len: a.Queue.Len(), Head: head},
	}
}

func TestStartsOnGreeter(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Equal(t, pageGreeter, m.current)
	assert.Contains(t, screen(m), "phone number")
}

func TestCtrlCAsksBeforeQuitting(t *testing.T) {
	m, _ := newTestModel(t)

	send(m, tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	vis, ok := m.dialogs.Visible()
	require.True(t, ok)
	assert.Equal(t, dialog.QuitDialogType, vis)

	cmd := send(m, tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestHelpAndSettingsKeys(t *testing.T) {
	m, _ := newTestModel(t)

	send(m, tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	assert.False(t, m.dialogs.IsDialogOpen(), "settings need a signed in user")
	toast, ok := m.statusBar.Toast()
	require.True(t, ok)
	assert.Equal(t, events.StatusWarning, toast.Level)

	send(m, tea.KeyPressMsg{Code: tea.KeyF1})
	vis, _ := m.dialogs.Visible()
	assert.Equal(t, dialog.HelpDialogType, vis)
}

func TestLoginDialogsFollowAuthState(t *testing.T) {
	m, _ := newTestModel(t)

	send(m, events.Event{Type: events.AuthStateChanged, Payload: auth.Snapshot{State: auth.StateCode, Phone: "+15550100"}})
	vis, _ := m.dialogs.Visible()
	assert.Equal(t, dialog.CodeDialogType, vis)
	assert.Contains(t, screen(m), "+15550100")

	send(m, events.Event{Type: events.AuthStateChanged, Payload: auth.Snapshot{State: auth.StateRecoveryKey, RecoveryKey: "alpha-bravo"}})
	vis, _ = m.dialogs.Visible()
	assert.Equal(t, dialog.RecoveryKeyDialogType, vis)
	assert.False(t, m.dialogs.IsOpen(dialog.CodeDialogType))

	send(m, events.Event{Type: events.AuthStateChanged, Payload: auth.Snapshot{State: auth.StateAuthenticated, NewUser: true, IdentityKey: "02aabbccddeeff00112233"}})
	assert.False(t, m.dialogs.IsDialogOpen())
	assert.Equal(t, pageWelcome, m.current)

	msg := firstMsg(send(m, tea.KeyPressMsg{Code: tea.KeyEnter}))
	send(m, msg)
	assert.Equal(t, pageDashboard, m.current)
}

func TestRecoveryPageFollowsFlow(t *testing.T) {
	m, a := newTestModel(t)

	a.Auth.BeginRecovery()
	send(m, events.Event{Type: events.AuthStateChanged, Payload: a.Auth.Snapshot()})
	assert.Equal(t, pageRecovery, m.current)

	msg := firstMsg(send(m, tea.KeyPressMsg{Code: tea.KeyEscape}))
	send(m, msg)
	assert.Equal(t, auth.StatePhone, a.Auth.Snapshot().State)
	assert.False(t, a.Auth.Snapshot().Recovering)
}

func TestDecisionOnForgottenRequestMovesOn(t *testing.T) {
	m, a := newTestModel(t)

	// queued directly, so the host has nobody waiting for the answer
	a.Queue.Enqueue(context.Background(), permission.NewProtocolRequest(host.ProtocolPermissionRequest{
		RequestID:     "orphan",
		Originator:    "todo.babbage.systems",
		ProtocolID:    "todo list",
		SecurityLevel: host.SecurityLevelApp,
	}))
	send(m, queueEvent(a))
	assert.Contains(t, screen(m), "Protocol Access Request")

	decision := firstMsg(send(m, tea.KeyPressMsg{Code: 'y', Text: "y"}))
	require.IsType(t, dialog.DecisionMsg{}, decision)
	result := firstMsg(send(m, decision))
	require.IsType(t, decisionResultMsg{}, result)
	assert.ErrorIs(t, result.(decisionResultMsg).err, permission.ErrNoLongerPending)
	send(m, result)

	toast, ok := m.statusBar.Toast()
	require.True(t, ok)
	assert.Equal(t, events.StatusWarning, toast.Level)
	assert.Equal(t, "Request no longer pending", toast.Content)
	assert.Zero(t, a.Queue.Len())

	send(m, queueEvent(a))
	assert.False(t, m.dialogs.IsOpen(dialog.ApprovalDialogType))
}

func TestGrantReachesRequester(t *testing.T) {
	m, a := newTestModel(t)

	granted := make(chan bool, 1)
	go func() {
		ok, err := a.Host.RequestBasketAccess(context.Background(), host.BasketAccessRequest{
			Originator: "todo.babbage.systems",
			Basket:     "todo tokens",
		})
		assert.NoError(t, err)
		granted <- ok
	}()
	require.Eventually(t, func() bool { return a.Queue.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	send(m, queueEvent(a))
	assert.Contains(t, screen(m), "Basket Access Request")
	assert.Contains(t, screen(m), "1 pending")

	decision := firstMsg(send(m, tea.KeyPressMsg{Code: 'y', Text: "y"}))
	result := firstMsg(send(m, decision))
	require.Equal(t, decisionResultMsg{requestID: decision.(dialog.DecisionMsg).RequestID, allow: true}, result)

	select {
	case ok := <-granted:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("requester never got an answer")
	}

	send(m, queueEvent(a))
	assert.False(t, m.dialogs.IsOpen(dialog.ApprovalDialogType))
}

func TestStatusEventsShowToasts(t *testing.T) {
	m, _ := newTestModel(t)
	send(m, events.Event{Type: events.StatusMessage, Payload: events.StatusPayload{Message: "Theme set to light", Level: events.StatusSuccess}})
	assert.Contains(t, screen(m), "Theme set to light")
}
