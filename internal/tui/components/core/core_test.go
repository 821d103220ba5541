package core

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func typeText(in *TextInput, s string) {
	for _, r := range s {
		in.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func TestTextInputEditing(t *testing.T) {
	in := NewTextInput("phone")
	typeText(in, "ignored")
	assert.Empty(t, in.Value(), "unfocused input ignores keys")

	in.Focus()
	typeText(in, "+1555")
	in.Update(tea.KeyPressMsg{Code: tea.KeyBackspace})
	in.Update(tea.KeyPressMsg{Code: tea.KeyLeft})
	typeText(in, "9")
	assert.Equal(t, "+1595", in.Value())

	in.Update(tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	assert.Equal(t, "+159 5", in.Value())

	in.Update(tea.KeyPressMsg{Code: 'u', Mod: tea.ModCtrl})
	assert.Empty(t, in.Value())
}

func TestTextInputLimitAndMask(t *testing.T) {
	in := NewTextInput("")
	in.Focus()
	in.SetLimit(3)
	in.SetMasked(true)
	typeText(in, "secret")
	assert.Equal(t, "sec", in.Value())

	in.Blur()
	assert.Equal(t, "•••", ansi.Strip(in.View()))
}

func TestTextInputPlaceholder(t *testing.T) {
	in := NewTextInput("Code")
	assert.Equal(t, "Code", ansi.Strip(in.View()))
	in.SetValue("12")
	assert.Equal(t, "12", ansi.Strip(in.View()))
}

func TestTickerAge(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tk := NewTicker("approval", time.Second)
	tk.now = func() time.Time { return now }

	assert.Zero(t, tk.Age())
	assert.NotNil(t, tk.Start(now.Add(-75*time.Second)))
	assert.Nil(t, tk.Start(now.Add(-75*time.Second)), "already running")
	assert.Equal(t, 75*time.Second, tk.Age())

	assert.NotNil(t, tk.Update(TickMsg{ID: "approval"}))
	assert.Nil(t, tk.Update(TickMsg{ID: "other"}))
	tk.Stop()
	assert.Nil(t, tk.Update(TickMsg{ID: "approval"}))
}

func TestFormatAge(t *testing.T) {
	assert.Equal(t, "9s", FormatAge(9*time.Second+300*time.Millisecond))
	assert.Equal(t, "3m 07s", FormatAge(187*time.Second))
	assert.Equal(t, "2h 05m", FormatAge(2*time.Hour+5*time.Minute))
}
