// Package events carries notifications between wallet services and the TUI.
package events

// Type identifies the kind of event.
type Type string

const wildcard Type = "*"

const (
	// Approval queue
	QueueChanged Type = "queue.changed"

	// Auth flow
	AuthStateChanged Type = "auth.state"

	// Settings
	SettingsChanged Type = "settings.changed"

	// UI
	StatusMessage Type = "ui.status"
	Navigate      Type = "ui.navigate"
	DialogOpen    Type = "ui.dialog.open"
	QuitRequested Type = "ui.quit"
)

// Event is a typed message with an arbitrary payload.
type Event struct {
	Type    Type
	Payload any
}

// StatusLevel classifies a status toast.
type StatusLevel string

const (
	StatusInfo    StatusLevel = "info"
	StatusSuccess StatusLevel = "success"
	StatusWarning StatusLevel = "warning"
	StatusError   StatusLevel = "error"
)

// StatusPayload is the payload of StatusMessage.
type StatusPayload struct {
	Message string
	Level   StatusLevel
}

// NavigatePayload asks the shell to switch pages.
type NavigatePayload struct {
	Page string
	// Label filters the dashboard transactions.
	Label string
}

// DialogPayload asks the shell to open a dialog by ID.
type DialogPayload struct {
	DialogID string
}
