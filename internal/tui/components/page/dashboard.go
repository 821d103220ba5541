package page

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/billie-coop/metanet/internal/app"
	"github.com/billie-coop/metanet/internal/resolve"
	"github.com/billie-coop/metanet/internal/settings"
	"github.com/billie-coop/metanet/internal/tui/components/core"
	"github.com/billie-coop/metanet/internal/tui/styles"
)

// headerHeight and inputHeight are the rows around the scrolling body.
const (
	headerHeight = 4
	inputHeight  = 3
)

// Dashboard is the signed in landing page: identity, balance, recent
// transactions, certificates and trusted operators, with a command line.
type Dashboard struct {
	core.SizeableBase

	labels Labeler
	format func(int64) string

	data    *app.Dashboard
	err     error
	label   string
	trusted []settings.TrustedEntity
	loading bool

	viewport viewport.Model
	spinner  spinner.Model
	input    *core.TextInput
}

var _ Page = (*Dashboard)(nil)

// NewDashboard creates the dashboard. format renders satoshi amounts in the
// user's currency.
func NewDashboard(labels Labeler, format func(int64) string) *Dashboard {
	vp := viewport.New()
	vp.MouseWheelEnabled = true

	in := core.NewTextInput("/help for commands, or type a label to filter")
	in.Focus()

	if format == nil {
		format = func(sats int64) string { return humanize.Comma(sats) + " sats" }
	}
	return &Dashboard{
		labels:   labels,
		format:   format,
		viewport: vp,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		input:    in,
	}
}

// SetLoading shows the spinner while the dashboard for label loads.
func (d *Dashboard) SetLoading(label string) tea.Cmd {
	d.label = label
	d.loading = true
	d.refresh()
	return d.spinner.Tick
}

// SetDashboard shows loaded data, or the error that prevented loading.
func (d *Dashboard) SetDashboard(data app.Dashboard, err error) {
	d.loading = false
	d.err = err
	if err == nil {
		d.data = &data
	}
	d.refresh()
}

// SetTrusted sets the operators listed at the bottom.
func (d *Dashboard) SetTrusted(entities []settings.TrustedEntity) {
	d.trusted = entities
	d.refresh()
}

// Label is the current transaction filter.
func (d *Dashboard) Label() string {
	return d.label
}

// Data returns the last loaded dashboard.
func (d *Dashboard) Data() (app.Dashboard, bool) {
	if d.data == nil {
		return app.Dashboard{}, false
	}
	return *d.data, true
}

// Subjects lists everything the dashboard shows a chip for.
func (d *Dashboard) Subjects() []resolve.Subject {
	if d.data == nil {
		return nil
	}
	var subjects []resolve.Subject
	for _, tx := range d.data.Transactions {
		if tx.Originator != "" {
			subjects = append(subjects, resolve.App(tx.Originator))
		}
	}
	for _, c := range d.data.Certificates {
		subjects = append(subjects, resolve.Certificate(c.Type), resolve.Counterparty(c.Certifier))
	}
	return subjects
}

// Refresh re-renders the body, after labels were resolved.
func (d *Dashboard) Refresh() {
	d.refresh()
}

func (d *Dashboard) SetSize(width, height int) tea.Cmd {
	d.SizeableBase.SetSize(width, height)
	d.viewport = viewport.New(
		viewport.WithWidth(width),
		viewport.WithHeight(max(height-headerHeight-inputHeight, 1)),
	)
	d.viewport.MouseWheelEnabled = true
	d.refresh()
	return nil
}

func (d *Dashboard) Init() tea.Cmd {
	return nil
}

func (d *Dashboard) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if d.loading {
			d.spinner, cmd = d.spinner.Update(msg)
			d.refresh()
		}
		return cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			input := d.input.Value()
			d.input.Reset()
			return core.Emit(CommandMsg{Input: input})
		case "pgup", "pgdown", "up", "down":
			d.viewport, cmd = d.viewport.Update(msg)
			return cmd
		}
		return d.input.Update(msg)

	case tea.MouseMsg:
		d.viewport, cmd = d.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (d *Dashboard) View() string {
	s := styles.CurrentTheme().S()

	input := s.InputFocused.Width(max(d.Width-2, 10)).Render(d.input.View())
	return lipgloss.JoinVertical(lipgloss.Left,
		d.header(),
		d.viewport.View(),
		input,
	)
}

func (d *Dashboard) header() string {
	s := styles.CurrentTheme().S()

	balance := s.Muted.Render("Balance unavailable")
	identity := ""
	if d.data != nil {
		balance = s.Title.Render(d.data.BalanceText)
		identity = s.Muted.Render("Identity " + resolve.ShortKey(d.data.IdentityKey))
	}
	lines := []string{
		lipgloss.JoinHorizontal(lipgloss.Bottom, s.Subtitle.Render("Balance  "), balance),
		identity,
	}
	if d.label != "" {
		lines = append(lines, s.Info.Render("Filtered by label “"+d.label+"”"))
	}
	return lipgloss.NewStyle().Height(headerHeight).Render(strings.Join(lines, "\n"))
}

func (d *Dashboard) refresh() {
	d.viewport.SetContent(d.body())
}

func (d *Dashboard) body() string {
	s := styles.CurrentTheme().S()
	var b strings.Builder

	if d.loading {
		b.WriteString(d.spinner.View() + s.Muted.Render(" Loading your wallet…") + "\n\n")
	}
	if d.err != nil {
		b.WriteString(s.Error.Render(styles.ErrorIcon+" "+d.err.Error()) + "\n\n")
	}
	if d.data == nil {
		return b.String()
	}

	b.WriteString(s.Subtitle.Render("Recent transactions") + "\n")
	if len(d.data.Transactions) == 0 {
		b.WriteString(s.Muted.Render("  Nothing yet") + "\n")
	}
	for _, tx := range d.data.Transactions {
		b.WriteString(d.transactionRow(tx.Amount, tx.Note, tx.Originator, tx.Status, tx.CreatedUnix) + "\n")
	}

	b.WriteString("\n" + s.Subtitle.Render("Certificates") + "\n")
	if len(d.data.Certificates) == 0 {
		b.WriteString(s.Muted.Render("  None from your trusted certifiers") + "\n")
	}
	for i, c := range d.data.Certificates {
		branch := styles.BranchIcon
		if i == len(d.data.Certificates)-1 {
			branch = styles.LastBranchIcon
		}
		line := fmt.Sprintf("  %s %s %s %s", s.Subtle.Render(branch),
			d.labels.Render(resolve.Certificate(c.Type)),
			s.Muted.Render("issued by"),
			d.labels.Render(resolve.Counterparty(c.Certifier)))
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + s.Subtitle.Render("Trusted operators") + "\n")
	if len(d.trusted) == 0 {
		b.WriteString(s.Muted.Render("  None. Add one with /trust add") + "\n")
	}
	for _, e := range d.trusted {
		b.WriteString(fmt.Sprintf("  %s %-20s %s\n",
			styles.RenderTrustBar(e.Trust, settings.MaxTrust),
			e.Name,
			s.Muted.Render(resolve.ShortKey(e.PublicKey))))
	}
	return b.String()
}

func (d *Dashboard) transactionRow(amount int64, note, originator, status string, created int64) string {
	s := styles.CurrentTheme().S()

	amountStyle := s.Success
	if amount < 0 {
		amountStyle = s.Error
	}
	row := []string{"  " + amountStyle.Width(18).Render(d.format(amount))}
	if originator != "" {
		row = append(row, d.labels.Render(resolve.App(originator)))
	}
	if note != "" {
		row = append(row, s.Text.Render(note))
	}
	if status != "" && status != "completed" {
		row = append(row, s.Warning.Render(status))
	}
	if created > 0 {
		row = append(row, s.Subtle.Render(humanize.Time(time.Unix(created, 0))))
	}
	return strings.Join(row, " ")
}
