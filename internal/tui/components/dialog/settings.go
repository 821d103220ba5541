package dialog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/billie-coop/metanet/internal/resolve"
	"github.com/billie-coop/metanet/internal/settings"
	"github.com/billie-coop/metanet/internal/tui/components/core"
	"github.com/billie-coop/metanet/internal/tui/styles"
)

// SaveSettingsMsg asks the shell to persist edited settings.
type SaveSettingsMsg struct {
	Settings settings.Settings
}

var (
	currencies = []string{settings.CurrencySATS, settings.CurrencyBSV, settings.CurrencyUSD}
	themeModes = []string{settings.ThemeDark, settings.ThemeLight}
)

// Rows before the trusted entities.
const (
	rowCurrency = iota
	rowTheme
	fieldRows
)

// SettingsDialog edits the display currency, the theme and the trust given
// to each registry operator. Nothing is saved until the user confirms.
type SettingsDialog struct {
	*BaseDialog

	keys     KeyMap
	draft    settings.Settings
	selected int
	dirty    bool
}

// NewSettingsDialog creates a new settings dialog
func NewSettingsDialog() *SettingsDialog {
	return &SettingsDialog{
		BaseDialog: NewBaseDialog("Settings"),
		keys:       DefaultKeyMap(),
	}
}

// SetSettings loads the values to edit.
func (d *SettingsDialog) SetSettings(s settings.Settings) {
	d.draft = s.Clone()
	d.selected = 0
	d.dirty = false
}

// Draft returns the edited values.
func (d *SettingsDialog) Draft() settings.Settings {
	return d.draft.Clone()
}

func (d *SettingsDialog) Init() tea.Cmd {
	return nil
}

func (d *SettingsDialog) rows() int {
	return fieldRows + len(d.draft.TrustedEntities)
}

func (d *SettingsDialog) Update(msg tea.Msg) tea.Cmd {
	if !d.isOpen {
		return nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch {
	case key.Matches(kmsg, d.keys.Cancel):
		return d.Close()
	case key.Matches(kmsg, d.keys.Confirm):
		if !d.dirty {
			return d.Close()
		}
		save := SaveSettingsMsg{Settings: d.Draft()}
		return tea.Batch(d.Close(), core.Emit(save))
	case key.Matches(kmsg, d.keys.Up):
		if d.selected > 0 {
			d.selected--
		}
	case key.Matches(kmsg, d.keys.Down):
		if d.selected < d.rows()-1 {
			d.selected++
		}
	case key.Matches(kmsg, d.keys.Remove):
		d.removeSelected()
	default:
		switch kmsg.String() {
		case "left", "h", "-":
			d.adjust(-1)
		case "right", "l", "+", "=":
			d.adjust(1)
		}
	}
	return nil
}

func (d *SettingsDialog) adjust(delta int) {
	switch d.selected {
	case rowCurrency:
		d.draft.Currency = cycle(currencies, d.draft.Currency, delta)
	case rowTheme:
		d.draft.Theme.Mode = cycle(themeModes, d.draft.Theme.Mode, delta)
	default:
		e := &d.draft.TrustedEntities[d.selected-fieldRows]
		e.Trust = min(max(e.Trust+delta, settings.MinTrust), settings.MaxTrust)
	}
	d.dirty = true
}

func (d *SettingsDialog) removeSelected() {
	if d.selected < fieldRows {
		return
	}
	d.draft.RemoveTrustedEntity(d.draft.TrustedEntities[d.selected-fieldRows].PublicKey)
	if d.selected >= d.rows() {
		d.selected = d.rows() - 1
	}
	d.dirty = true
}

func cycle(options []string, current string, delta int) string {
	i := slices.Index(options, current)
	if i < 0 {
		return options[0]
	}
	n := len(options)
	return options[((i+delta)%n+n)%n]
}

func (d *SettingsDialog) View() string {
	if !d.isOpen {
		return ""
	}
	s := styles.CurrentTheme().S()

	row := func(i int, label, value string) string {
		cursor := "  "
		name := s.Text.Width(14).Render(label)
		if i == d.selected {
			cursor = s.Title.Render(styles.CursorIcon) + " "
			name = s.Title.Width(14).Render(label)
		}
		return cursor + name + value
	}

	lines := []string{
		row(rowCurrency, "Currency", "‹ "+s.Bold.Render(d.draft.Currency)+" ›"),
		row(rowTheme, "Theme", "‹ "+s.Bold.Render(d.draft.Theme.Mode)+" ›"),
		"",
		s.Subtitle.Render("Trusted operators"),
	}
	if len(d.draft.TrustedEntities) == 0 {
		lines = append(lines, s.Muted.Render("  No trusted operators. Metadata will show raw identifiers."))
	}
	for i, e := range d.draft.TrustedEntities {
		value := fmt.Sprintf("%s %2d  %s", styles.RenderTrustBar(e.Trust, settings.MaxTrust), e.Trust, s.Muted.Render(resolve.ShortKey(e.PublicKey)))
		lines = append(lines, row(fieldRows+i, e.Name, value))
	}

	lines = append(lines, "", helpLine(d.keys.Up, d.keys.Down, d.keys.Switch, d.keys.Remove, d.keys.Confirm, d.keys.Cancel))
	if d.dirty {
		lines = append(lines, s.Warning.Render("Unsaved changes"))
	}
	return d.RenderDialog(strings.Join(lines, "\n"))
}
