package styles

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerFallsBackToDark(t *testing.T) {
	m := NewManager("purple")
	assert.Equal(t, DarkTheme, m.Current().Name)

	require.NoError(t, m.SetTheme(LightTheme))
	assert.False(t, m.Current().IsDark)
	assert.Error(t, m.SetTheme("purple"))
	assert.Equal(t, LightTheme, m.Current().Name)
}

func TestTrustBarClamps(t *testing.T) {
	SetDefaultManager(NewManager(DarkTheme))

	assert.Equal(t, "███░░", ansi.Strip(RenderTrustBar(3, 5)))
	assert.Equal(t, "█████", ansi.Strip(RenderTrustBar(12, 5)))
	assert.Equal(t, "░░", ansi.Strip(RenderTrustBar(-1, 2)))
	assert.Empty(t, RenderTrustBar(1, 0))
}

func TestGradientKeepsText(t *testing.T) {
	SetDefaultManager(NewManager(DarkTheme))
	assert.Equal(t, "MetaNet ✓", ansi.Strip(RenderThemeGradient("MetaNet ✓", true)))
	assert.Empty(t, RenderThemeGradient("", false))
}

func TestRenderMarkdown(t *testing.T) {
	SetDefaultManager(NewManager(DarkTheme))
	out := ansi.Strip(RenderMarkdown("Store your **tasks**", 40))
	assert.Contains(t, out, "Store your tasks")
	assert.Empty(t, RenderMarkdown("  ", 40))
}
