package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// band paints header and footer rows in one background color. lipgloss resets
// the background after every styled segment, so spaces between segments are
// painted explicitly.
type band struct {
	bg  lipgloss.Color
	gap string
}

func newBand(color string) band {
	bg := lipgloss.Color(color)
	return band{bg: bg, gap: lipgloss.NewStyle().Background(bg).Render(" ")}
}

// Render styles text on the band, word by word.
func (b band) Render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	style = style.Background(b.bg)
	words := strings.Split(text, " ")
	for i, w := range words {
		if w != "" {
			words[i] = style.Render(w)
		}
	}
	return strings.Join(words, b.gap)
}

// Spaces returns n painted spaces.
func (b band) Spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(b.gap, n)
}

// Join joins rendered parts with a painted separator.
func (b band) Join(parts []string, sep string) string {
	return strings.Join(parts, lipgloss.NewStyle().Background(b.bg).Render(sep))
}

// FillLine pads content to width on the band.
func (b band) FillLine(content string, width int) string {
	return lipgloss.NewStyle().Background(b.bg).Width(width).Render(content)
}
