package core

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/metanet/internal/tui/styles"
)

// TextInput is a single line text field for forms and dialogs.
type TextInput struct {
	value       []rune
	placeholder string
	focused     bool
	masked      bool
	limit       int
	cursorPos   int
}

// NewTextInput creates an empty text input.
func NewTextInput(placeholder string) *TextInput {
	return &TextInput{placeholder: placeholder}
}

// Value returns the current value
func (t *TextInput) Value() string {
	return string(t.value)
}

// SetValue sets the value and moves the cursor to the end.
func (t *TextInput) SetValue(value string) {
	t.value = []rune(value)
	if t.limit > 0 && len(t.value) > t.limit {
		t.value = t.value[:t.limit]
	}
	t.cursorPos = len(t.value)
}

// Reset clears the value.
func (t *TextInput) Reset() {
	t.SetValue("")
}

// SetMasked hides the characters, for passwords.
func (t *TextInput) SetMasked(masked bool) {
	t.masked = masked
}

// SetLimit caps the number of characters. Zero means no limit.
func (t *TextInput) SetLimit(n int) {
	t.limit = n
}

// Focus focuses the input
func (t *TextInput) Focus() {
	t.focused = true
}

// Blur removes focus
func (t *TextInput) Blur() {
	t.focused = false
}

// Focused reports whether keys go to this input.
func (t *TextInput) Focused() bool {
	return t.focused
}

// Update handles editing keys. Keys it does not use are ignored.
func (t *TextInput) Update(msg tea.Msg) tea.Cmd {
	if !t.focused {
		return nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch s := key.String(); s {
	case "backspace":
		if t.cursorPos > 0 {
			t.value = append(t.value[:t.cursorPos-1], t.value[t.cursorPos:]...)
			t.cursorPos--
		}
	case "delete":
		if t.cursorPos < len(t.value) {
			t.value = append(t.value[:t.cursorPos], t.value[t.cursorPos+1:]...)
		}
	case "left":
		if t.cursorPos > 0 {
			t.cursorPos--
		}
	case "right":
		if t.cursorPos < len(t.value) {
			t.cursorPos++
		}
	case "home", "ctrl+a":
		t.cursorPos = 0
	case "end", "ctrl+e":
		t.cursorPos = len(t.value)
	case "ctrl+u":
		t.Reset()
	case "space":
		t.insert(' ')
	default:
		if r := []rune(s); len(r) == 1 {
			t.insert(r[0])
		}
	}
	return nil
}

func (t *TextInput) insert(r rune) {
	if t.limit > 0 && len(t.value) >= t.limit {
		return
	}
	t.value = append(t.value[:t.cursorPos], append([]rune{r}, t.value[t.cursorPos:]...)...)
	t.cursorPos++
}

// View renders the input
func (t *TextInput) View() string {
	theme := styles.CurrentTheme()
	style := theme.S().Text

	display := t.value
	if t.masked {
		display = []rune(strings.Repeat("•", len(t.value)))
	}

	if !t.focused {
		if len(display) == 0 && t.placeholder != "" {
			return theme.S().Subtle.Render(t.placeholder)
		}
		return style.Render(string(display))
	}

	cursor := lipgloss.NewStyle().
		Background(theme.BorderFocus).
		Foreground(theme.FgInverted)

	if len(display) == 0 && t.placeholder != "" {
		ph := []rune(t.placeholder)
		return cursor.Render(string(ph[0])) + theme.S().Subtle.Render(string(ph[1:]))
	}
	if t.cursorPos < len(display) {
		return style.Render(string(display[:t.cursorPos])) +
			cursor.Render(string(display[t.cursorPos])) +
			style.Render(string(display[t.cursorPos+1:]))
	}
	return style.Render(string(display)) + cursor.Render(" ")
}
