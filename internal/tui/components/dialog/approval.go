package dialog

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/metanet/internal/host"
	"github.com/billie-coop/metanet/internal/permission"
	"github.com/billie-coop/metanet/internal/resolve"
	"github.com/billie-coop/metanet/internal/tui/components/core"
	"github.com/billie-coop/metanet/internal/tui/styles"
)

// DecisionMsg asks the shell to grant or deny a queued request.
type DecisionMsg struct {
	RequestID string
	Kind      permission.Kind
	Allow     bool
	// Group is the enabled subset when allowing a group request.
	Group *host.GroupGrant
}

const (
	buttonAllow = iota
	buttonDeny
)

// ApprovalDialog renders the head of the approval queue. It is the only
// surface permission requests of any kind are shown on.
type ApprovalDialog struct {
	*BaseDialog

	labels Labeler
	keys   KeyMap
	age    *core.Ticker

	request *permission.Request
	queued  int
	cursor  int // group item under the cursor
	button  int
	// deciding is set while a decision is in flight; keys are ignored.
	deciding bool
}

// NewApprovalDialog creates the approval dialog.
func NewApprovalDialog(labels Labeler) *ApprovalDialog {
	return &ApprovalDialog{
		BaseDialog: NewBaseDialog(""),
		labels:     labels,
		keys:       DefaultKeyMap(),
		age:        core.NewTicker("approval-age", time.Second),
	}
}

// Request returns the request on screen.
func (d *ApprovalDialog) Request() *permission.Request {
	return d.request
}

// Show puts req on screen with queued requests in total. A nil request closes
// the dialog. Showing the request already on screen only updates the count.
func (d *ApprovalDialog) Show(req *permission.Request, queued int) tea.Cmd {
	d.queued = queued
	if req == nil {
		d.request = nil
		d.deciding = false
		d.age.Stop()
		return d.Close()
	}
	if d.request != nil && d.request.ID == req.ID {
		return nil
	}

	d.request = req
	d.cursor = 0
	d.button = buttonAllow
	d.deciding = false
	d.SetTitle(approvalTitle(req))
	return tea.Batch(d.Open(), d.age.Start(req.ReceivedAt))
}

// DecisionFailed re-enables the dialog after the host rejected a decision.
// The request stays on screen.
func (d *ApprovalDialog) DecisionFailed(requestID string) {
	if d.request != nil && d.request.ID == requestID {
		d.deciding = false
	}
}

// Subjects lists everything the dialog shows a chip for.
func (d *ApprovalDialog) Subjects() []resolve.Subject {
	req := d.request
	if req == nil {
		return nil
	}
	subjects := []resolve.Subject{resolve.App(req.Originator)}
	switch req.Kind {
	case permission.KindProtocol:
		p := req.Protocol
		subjects = append(subjects, resolve.Protocol(p.ProtocolID, p.SecurityLevel))
		if p.SecurityLevel == host.SecurityLevelCounterparty {
			subjects = append(subjects, resolve.Counterparty(p.Counterparty))
		}
	case permission.KindBasket:
		subjects = append(subjects, resolve.Basket(req.Basket.Basket))
	case permission.KindCertificate:
		c := req.Certificate
		subjects = append(subjects, resolve.Certificate(c.CertificateType), resolve.Counterparty(c.VerifierPublicKey))
	case permission.KindGroup:
		g := req.Group.Requested
		for _, p := range g.ProtocolPermissions {
			subjects = append(subjects, resolve.Protocol(p.ProtocolID, p.SecurityLevel))
		}
		for _, b := range g.BasketAccess {
			subjects = append(subjects, resolve.Basket(b.Basket))
		}
		for _, c := range g.CertificateAccess {
			subjects = append(subjects, resolve.Certificate(c.CertificateType))
		}
	}
	return subjects
}

func (d *ApprovalDialog) Init() tea.Cmd {
	return nil
}

func (d *ApprovalDialog) Update(msg tea.Msg) tea.Cmd {
	if !d.isOpen || d.request == nil {
		return nil
	}

	switch msg := msg.(type) {
	case core.TickMsg:
		return d.age.Update(msg)

	case tea.KeyMsg:
		if d.deciding {
			return nil
		}
		switch {
		case key.Matches(msg, d.keys.Allow):
			return d.decide(true)
		case key.Matches(msg, d.keys.Deny):
			return d.decide(false)
		case key.Matches(msg, d.keys.Switch):
			d.button = 1 - d.button
		case key.Matches(msg, d.keys.Confirm):
			return d.decide(d.button == buttonAllow)
		case d.request.Group != nil && key.Matches(msg, d.keys.Up):
			if d.cursor > 0 {
				d.cursor--
			}
		case d.request.Group != nil && key.Matches(msg, d.keys.Down):
			if d.cursor < len(d.request.Group.Items())-1 {
				d.cursor++
			}
		case d.request.Group != nil && key.Matches(msg, d.keys.Toggle):
			d.request.Group.Toggle(d.cursor)
		}
	}
	return nil
}

func (d *ApprovalDialog) decide(allow bool) tea.Cmd {
	req := d.request
	msg := DecisionMsg{RequestID: req.ID, Kind: req.Kind, Allow: allow}
	if allow && req.Group != nil {
		granted := req.Group.Granted()
		msg.Group = &granted
	}
	d.deciding = true
	return core.Emit(msg)
}

func (d *ApprovalDialog) View() string {
	if !d.isOpen || d.request == nil {
		return ""
	}
	theme := styles.CurrentTheme()
	width := d.ContentWidth()
	req := d.request

	var b strings.Builder
	b.WriteString(d.labels.Render(resolve.App(req.Originator)))
	b.WriteString(" ")
	b.WriteString(theme.S().Muted.Render(req.Originator))
	b.WriteString("\n\n")
	b.WriteString(d.body(width))

	if desc := styles.RenderMarkdown(req.Description, width); desc != "" {
		b.WriteString("\n\n")
		b.WriteString(desc)
	}

	b.WriteString("\n\n")
	if d.deciding {
		b.WriteString(theme.S().Info.Render(styles.LoadingIcon + " Sending your decision…"))
	} else {
		b.WriteString(renderButtons([]string{"Allow", "Deny"}, d.button))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.S().Subtle.Render(fmt.Sprintf("Request 1 of %d • waiting %s", max(d.queued, 1), core.FormatAge(d.age.Age()))))
	b.WriteString("\n")
	if req.Group != nil {
		b.WriteString(helpLine(d.keys.Up, d.keys.Down, d.keys.Toggle, d.keys.Allow, d.keys.Deny))
	} else {
		b.WriteString(helpLine(d.keys.Allow, d.keys.Deny, d.keys.Switch, d.keys.Confirm))
	}

	return d.RenderDialog(b.String())
}

func (d *ApprovalDialog) body(width int) string {
	theme := styles.CurrentTheme()
	text := theme.S().Text
	req := d.request

	switch req.Kind {
	case permission.KindProtocol:
		p := req.Protocol
		line := text.Render("wants to use ") + d.labels.Render(resolve.Protocol(p.ProtocolID, p.SecurityLevel))
		lines := []string{line, theme.S().Muted.Render(securityLevelText(p.SecurityLevel))}
		if p.SecurityLevel == host.SecurityLevelCounterparty {
			lines = append(lines, text.Render("with ")+d.labels.Render(resolve.Counterparty(p.Counterparty)))
		}
		return strings.Join(lines, "\n")

	case permission.KindBasket:
		subj := resolve.Basket(req.Basket.Basket)
		lines := []string{text.Render("wants to access the basket ") + d.labels.Render(subj)}
		if detail := d.labels.Label(subj).Description; detail != "" {
			lines = append(lines, lipgloss.NewStyle().Width(width).Render(theme.S().Muted.Render(detail)))
		}
		return strings.Join(lines, "\n")

	case permission.KindCertificate:
		c := req.Certificate
		lines := []string{
			text.Render("wants to see your ") + d.labels.Render(resolve.Certificate(c.CertificateType)) + text.Render(" certificate"),
			theme.S().Muted.Render("Fields: " + strings.Join(c.Fields, ", ")),
			text.Render("revealed to ") + d.labels.Render(resolve.Counterparty(c.VerifierPublicKey)),
		}
		return strings.Join(lines, "\n")

	case permission.KindGroup:
		return d.groupBody()
	}
	return ""
}

func (d *ApprovalDialog) groupBody() string {
	theme := styles.CurrentTheme()
	g := d.request.Group
	lines := []string{theme.S().Text.Render("requests these permissions:")}

	for i, it := range g.Items() {
		box := styles.UncheckedIcon
		if it.Enabled {
			box = styles.CheckedIcon
		}
		cursor := "  "
		if i == d.cursor {
			cursor = theme.S().Title.Render(styles.CursorIcon) + " "
		}
		row := box + " " + d.groupItemLabel(it)
		if !it.Enabled {
			row = theme.S().Subtle.Strikethrough(true).Render(box + " " + it.Label)
		}
		lines = append(lines, cursor+row)
	}
	return strings.Join(lines, "\n")
}

func (d *ApprovalDialog) groupItemLabel(it permission.GroupItem) string {
	g := d.request.Group.Requested
	muted := styles.CurrentTheme().S().Muted
	switch it.Section {
	case permission.SectionSpending:
		sa := g.SpendingAuthorization
		label := fmt.Sprintf("%s spend up to %d satoshis", styles.SpendingIcon, sa.Amount)
		if sa.Description != "" {
			label += muted.Render(" · " + sa.Description)
		}
		return label
	case permission.SectionProtocol:
		p := g.ProtocolPermissions[it.Index]
		label := d.labels.Render(resolve.Protocol(p.ProtocolID, p.SecurityLevel)) + muted.Render(fmt.Sprintf(" level %d", p.SecurityLevel))
		if p.Counterparty != "" {
			label += muted.Render(" with ") + d.labels.Render(resolve.Counterparty(p.Counterparty))
		}
		return label
	case permission.SectionBasket:
		return d.labels.Render(resolve.Basket(g.BasketAccess[it.Index].Basket))
	case permission.SectionCertificate:
		c := g.CertificateAccess[it.Index]
		return d.labels.Render(resolve.Certificate(c.CertificateType)) + muted.Render(" "+strings.Join(c.Fields, ", "))
	}
	return it.Label
}

func approvalTitle(req *permission.Request) string {
	var title string
	switch req.Kind {
	case permission.KindProtocol:
		title = "Protocol Access Request"
	case permission.KindBasket:
		title = "Basket Access Request"
	case permission.KindCertificate:
		title = "Certificate Access Request"
	default:
		title = "Permission Request"
	}
	if req.Renewal {
		title += " (renewal)"
	}
	return title
}

func securityLevelText(level host.SecurityLevel) string {
	switch level {
	case host.SecurityLevelSilent:
		return "Level 0: open access, no keys involved"
	case host.SecurityLevelApp:
		return "Level 1: one key for this app"
	default:
		return "Level 2: a key per counterparty"
	}
}
