package dialog

import (
	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/billie-coop/metanet/internal/permission"
)

// DialogType identifies the type of dialog
type DialogType string

const (
	ApprovalDialogType    DialogType = "approval"
	CodeDialogType        DialogType = "code"
	RecoveryKeyDialogType DialogType = "recovery-key"
	SettingsDialogType    DialogType = "settings"
	HelpDialogType        DialogType = "help"
	QuitDialogType        DialogType = "quit"
)

// Manager owns every dialog and decides which one is on screen. The quit
// confirmation wins over everything, then the approval dialog, then whichever
// dialog was opened last.
type Manager struct {
	dialogs map[DialogType]Dialog
	active  DialogType

	approval    *ApprovalDialog
	code        *CodeDialog
	recoveryKey *RecoveryKeyDialog
	settings    *SettingsDialog
	quit        *QuitDialog

	width  int
	height int
}

// NewManager creates a new dialog manager
func NewManager(labels Labeler, helpText string) *Manager {
	m := &Manager{
		approval:    NewApprovalDialog(labels),
		code:        NewCodeDialog(),
		recoveryKey: NewRecoveryKeyDialog(),
		settings:    NewSettingsDialog(),
		quit:        NewQuitDialog(),
	}
	m.dialogs = map[DialogType]Dialog{
		ApprovalDialogType:    m.approval,
		CodeDialogType:        m.code,
		RecoveryKeyDialogType: m.recoveryKey,
		SettingsDialogType:    m.settings,
		HelpDialogType:        NewHelpDialog(helpText),
		QuitDialogType:        m.quit,
	}
	return m
}

// Init initializes all dialogs
func (m *Manager) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, d := range m.dialogs {
		cmds = append(cmds, d.Init())
	}
	return tea.Batch(cmds...)
}

// Visible returns the dialog on screen, if any.
func (m *Manager) Visible() (DialogType, bool) {
	switch {
	case m.quit.IsOpen():
		return QuitDialogType, true
	case m.approval.IsOpen():
		return ApprovalDialogType, true
	case m.active != "" && m.dialogs[m.active].IsOpen():
		return m.active, true
	}
	return "", false
}

// Update sends key presses to the visible dialog only. Everything else, such
// as ticks, reaches every open dialog.
func (m *Manager) Update(msg tea.Msg) tea.Cmd {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		return m.SetSize(wsm.Width, wsm.Height)
	}

	var cmd tea.Cmd
	if _, ok := msg.(tea.KeyMsg); ok {
		if t, ok := m.Visible(); ok {
			cmd = m.dialogs[t].Update(msg)
		}
	} else {
		var cmds []tea.Cmd
		for _, d := range m.dialogs {
			if d.IsOpen() {
				cmds = append(cmds, d.Update(msg))
			}
		}
		cmd = tea.Batch(cmds...)
	}

	// a dialog may have closed itself
	if m.active != "" && !m.dialogs[m.active].IsOpen() {
		m.active = ""
	}
	return cmd
}

// View renders the visible dialog
func (m *Manager) View() string {
	if t, ok := m.Visible(); ok {
		return m.dialogs[t].View()
	}
	return ""
}

// SetSize sets the size for all dialogs
func (m *Manager) SetSize(width, height int) tea.Cmd {
	m.width = width
	m.height = height

	var cmds []tea.Cmd
	for _, d := range m.dialogs {
		cmds = append(cmds, d.SetSize(width, height))
	}
	return tea.Batch(cmds...)
}

// OpenDialog opens a dialog. The approval dialog is driven by SetApproval
// and cannot be opened here.
func (m *Manager) OpenDialog(t DialogType) tea.Cmd {
	d, ok := m.dialogs[t]
	if !ok || t == ApprovalDialogType {
		return nil
	}
	if t != QuitDialogType {
		if m.active != "" && m.active != t {
			m.dialogs[m.active].Close()
		}
		m.active = t
	}
	return d.Open()
}

// CloseDialog closes a dialog if it is open.
func (m *Manager) CloseDialog(t DialogType) tea.Cmd {
	d, ok := m.dialogs[t]
	if !ok || !d.IsOpen() {
		return nil
	}
	if m.active == t {
		m.active = ""
	}
	return d.Close()
}

// SetApproval shows the head of the queue, or hides the approval dialog when
// head is nil.
func (m *Manager) SetApproval(head *permission.Request, queued int) tea.Cmd {
	m.quit.SetPending(queued)
	return m.approval.Show(head, queued)
}

// IsDialogOpen returns whether any dialog is on screen
func (m *Manager) IsDialogOpen() bool {
	_, ok := m.Visible()
	return ok
}

// IsOpen reports whether a specific dialog is open, visible or not.
func (m *Manager) IsOpen(t DialogType) bool {
	d, ok := m.dialogs[t]
	return ok && d.IsOpen()
}

func (m *Manager) Approval() *ApprovalDialog       { return m.approval }
func (m *Manager) Code() *CodeDialog               { return m.code }
func (m *Manager) RecoveryKey() *RecoveryKeyDialog { return m.recoveryKey }
func (m *Manager) Settings() *SettingsDialog       { return m.settings }
func (m *Manager) Quit() *QuitDialog               { return m.quit }
