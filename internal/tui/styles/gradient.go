package styles

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// RenderThemeGradient renders text with the current theme's primary gradient
func RenderThemeGradient(text string, bold bool) string {
	theme := CurrentTheme()
	return ApplyGradient(text, theme.Primary, theme.Secondary, bold)
}

// ApplyGradient renders text with a horizontal gradient, one color per
// grapheme cluster.
func ApplyGradient(text string, from, to color.Color, bold bool) string {
	if text == "" {
		return ""
	}

	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}

	var out strings.Builder
	colors := blendColors(len(clusters), from, to)
	for i, cluster := range clusters {
		out.WriteString(lipgloss.NewStyle().Foreground(colors[i]).Bold(bold).Render(cluster))
	}
	return out.String()
}

// RenderTrustBar draws a score out of total as a bar that shifts from the
// error color to the success color.
func RenderTrustBar(score, total int) string {
	if total <= 0 {
		return ""
	}
	score = min(max(score, 0), total)

	theme := CurrentTheme()
	colors := blendColors(total, theme.Error, theme.Success)

	var bar strings.Builder
	for i := 0; i < total; i++ {
		if i < score {
			bar.WriteString(lipgloss.NewStyle().Foreground(colors[i]).Render("█"))
		} else {
			bar.WriteString(lipgloss.NewStyle().Foreground(theme.BgHighlight).Render("░"))
		}
	}
	return bar.String()
}

// blendColors creates a gradient between colors
func blendColors(steps int, from, to color.Color) []color.Color {
	if steps <= 0 {
		return nil
	}
	if steps == 1 {
		return []color.Color{from}
	}

	c1, _ := colorful.MakeColor(from)
	c2, _ := colorful.MakeColor(to)

	colors := make([]color.Color, steps)
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		// HCL keeps the blend perceptually even
		colors[i] = c1.BlendHcl(c2, t).Clamped()
	}
	return colors
}
