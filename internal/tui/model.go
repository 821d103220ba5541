// Package tui is the terminal shell of the MetaNet client: a page behind
// at most one dialog, a header and a status bar.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/billie-coop/metanet/internal/app"
	"github.com/billie-coop/metanet/internal/auth"
	"github.com/billie-coop/metanet/internal/events"
	"github.com/billie-coop/metanet/internal/permission"
	"github.com/billie-coop/metanet/internal/settings"
	"github.com/billie-coop/metanet/internal/tui/components/chip"
	"github.com/billie-coop/metanet/internal/tui/components/dialog"
	"github.com/billie-coop/metanet/internal/tui/components/page"
	"github.com/billie-coop/metanet/internal/tui/components/status"
	"github.com/billie-coop/metanet/internal/tui/styles"
)

type pageID string

const (
	pageGreeter   pageID = "greeter"
	pageRecovery  pageID = "recovery"
	pageWelcome   pageID = "welcome"
	pageDashboard pageID = "dashboard"
)

// Model is the root bubbletea model.
type Model struct {
	ctx context.Context
	app *app.App

	width  int
	height int

	// Components
	chips     *chip.Set
	dialogs   *dialog.Manager
	statusBar *status.Component
	greeter   *page.Greeter
	recovery  *page.Recovery
	welcome   *page.Welcome
	dashboard *page.Dashboard

	// Event system
	eventSub <-chan events.Event

	// UI state only
	current pageID
	snap    auth.Snapshot
	pending int
}

// New creates the shell for a started app. ctx bounds every host call the
// shell makes.
func New(ctx context.Context, a *app.App) *Model {
	mode := a.Settings.Current().Theme.Mode
	if mode != settings.ThemeLight {
		mode = settings.ThemeDark
	}
	styles.SetDefaultManager(styles.NewManager(mode))

	chips := chip.NewSet(ctx, a.Resolver)
	m := &Model{
		ctx:       ctx,
		app:       a,
		chips:     chips,
		dialogs:   dialog.NewManager(chips, app.HelpText),
		statusBar: status.New(),
		greeter:   page.NewGreeter(),
		recovery:  page.NewRecovery(),
		welcome:   page.NewWelcome(),
		dashboard: page.NewDashboard(chips, a.Wallet.FormatAmount),
		current:   pageGreeter,
	}

	// Subscribe to all events
	m.eventSub = a.Events.Subscribe()
	return m
}

// Close stops listening to the broker.
func (m *Model) Close() {
	m.app.Events.Unsubscribe(m.eventSub)
}

// Init picks up the state the app is already in and starts listening.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.dialogs.Init(),
		m.statusBar.Init(),
		m.followAuth(m.app.Auth.Snapshot()),
		m.listenForEvents(),
	}
	if head, ok := m.app.Queue.Head(); ok {
		cmds = append(cmds, m.showHead(head, m.app.Queue.Len()))
	}
	return tea.Batch(cmds...)
}

// Update handles all TUI updates and routes to components
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case events.Event:
		// keep listening after every event
		return m, tea.Batch(m.handleEvent(msg), m.listenForEvents())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, m.resize()

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case chip.ResolvedMsg:
		if m.chips.Update(msg) {
			m.dashboard.Refresh()
		}
		return m, nil

	case dashboardLoadedMsg:
		if msg.label != m.dashboard.Label() {
			return m, nil
		}
		m.dashboard.SetDashboard(msg.data, msg.err)
		if msg.err != nil {
			m.app.Logger.Warn("dashboard load failed", "error", msg.err)
			return m, m.statusBar.Show(events.StatusError, "Could not load your wallet")
		}
		return m, m.chips.Request(m.dashboard.Subjects()...)

	case decisionResultMsg:
		return m, m.decisionResult(msg)

	case authResultMsg:
		if msg.err != nil {
			m.app.Logger.Info("login step failed", "step", msg.step, "error", msg.err)
			return m, m.statusBar.Show(events.StatusError, msg.err.Error())
		}
		return m, nil

	case settingsSavedMsg:
		if msg.err != nil {
			return m, m.statusBar.Show(events.StatusError, "Settings not saved: "+msg.err.Error())
		}
		return m, m.statusBar.Show(events.StatusSuccess, "Settings saved")
	}

	if cmd, ok := m.handleIntent(msg); ok {
		return m, cmd
	}

	// ticks and other component messages
	return m, tea.Batch(
		m.dialogs.Update(msg),
		m.statusBar.Update(msg),
		m.dashboard.Update(msg),
	)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" && !m.dialogs.IsOpen(dialog.QuitDialogType) {
		m.dialogs.Quit().SetPending(m.pending)
		return m.dialogs.OpenDialog(dialog.QuitDialogType)
	}
	if m.dialogs.IsDialogOpen() {
		return m.dialogs.Update(msg)
	}

	switch msg.String() {
	case "f1":
		return m.openDialog(dialog.HelpDialogType)
	case "ctrl+s":
		return m.openDialog(dialog.SettingsDialogType)
	}
	return m.activePage().Update(msg)
}

// handleIntent turns what pages and dialogs ask for into app calls.
func (m *Model) handleIntent(msg tea.Msg) (tea.Cmd, bool) {
	a := m.app
	switch msg := msg.(type) {
	case dialog.DecisionMsg:
		return m.decide(msg), true
	case dialog.SubmitCodeMsg:
		return m.authStep("code", func(ctx context.Context) error { return a.Auth.SubmitCode(ctx, msg.Code) }), true
	case dialog.AbortCodeMsg:
		return m.authStep("abort code", a.Auth.AbortCode), true
	case dialog.RecoveryKeySavedMsg:
		return m.authStep("recovery key saved", a.Auth.AcknowledgeRecoveryKey), true
	case dialog.SaveSettingsMsg:
		return m.saveSettings(msg.Settings), true

	case page.SubmitPhoneMsg:
		return m.authStep("phone", func(ctx context.Context) error { return a.Auth.SubmitPhone(ctx, msg.Phone) }), true
	case page.SubmitPasswordMsg:
		return m.authStep("password", func(ctx context.Context) error {
			return a.Auth.SubmitPassword(ctx, msg.Password, msg.Confirm)
		}), true
	case page.SubmitRecoveryKeyMsg:
		return m.authStep("recovery key", func(ctx context.Context) error { return a.Auth.SubmitRecoveryKey(ctx, msg.Key) }), true
	case page.BeginRecoveryMsg:
		a.Auth.BeginRecovery()
		return nil, true
	case page.CancelRecoveryMsg:
		a.Auth.CancelRecovery()
		return nil, true
	case page.ContinueMsg:
		m.setPage(pageDashboard)
		return nil, true
	case page.CommandMsg:
		return m.route(msg.Input), true
	}
	return nil, false
}

func (m *Model) decisionResult(msg decisionResultMsg) tea.Cmd {
	switch {
	case msg.err == nil, errors.Is(msg.err, permission.ErrDecisionPending):
		return nil
	case errors.Is(msg.err, permission.ErrNoLongerPending):
		// already dropped from the queue, the next head follows as an event
		return m.statusBar.Show(events.StatusWarning, "Request no longer pending")
	}
	m.dialogs.Approval().DecisionFailed(msg.requestID)
	if errors.Is(msg.err, permission.ErrNothingSelected) {
		return m.statusBar.Show(events.StatusWarning, "Select at least one permission, or deny the request")
	}
	verb := "deny"
	if msg.allow {
		verb = "grant"
	}
	return m.statusBar.Show(events.StatusError, "Could not "+verb+" the request: "+msg.err.Error())
}

func (m *Model) authenticated() bool {
	return m.snap.State == auth.StateAuthenticated
}

func (m *Model) setPage(id pageID) {
	m.current = id
}

func (m *Model) activePage() page.Page {
	switch m.current {
	case pageRecovery:
		return m.recovery
	case pageWelcome:
		return m.welcome
	case pageDashboard:
		return m.dashboard
	}
	return m.greeter
}

func (m *Model) View() tea.View {
	return tea.NewView(m.render())
}
