package tui

import "github.com/billie-coop/metanet/internal/app"

// decisionResultMsg reports how the host took a grant or deny.
type decisionResultMsg struct {
	requestID string
	allow     bool
	err       error
}

// authResultMsg reports a failed or finished login step.
type authResultMsg struct {
	step string
	err  error
}

// dashboardLoadedMsg carries the wallet data for the dashboard.
type dashboardLoadedMsg struct {
	label string
	data  app.Dashboard
	err   error
}

// settingsSavedMsg reports the outcome of saving the settings dialog.
type settingsSavedMsg struct {
	err error
}
