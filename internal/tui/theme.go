package tui

import (
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

var background, _ = colorful.Hex("#101418")

// Theme holds the styles derived from the active preset colour.
type Theme struct {
	accent colorful.Color

	Title  lipgloss.Style
	Panel  lipgloss.Style
	Help   lipgloss.Style
	Status lipgloss.Style
}

// NewTheme builds a theme around hex. An unparsable colour falls back to
// a neutral grey.
func NewTheme(hex string) Theme {
	accent, err := colorful.Hex(hex)
	if err != nil {
		accent = colorful.Color{R: 0.7, G: 0.7, B: 0.7}
	}
	muted := background.BlendLab(accent, 0.45).Clamped()
	return Theme{
		accent: accent,
		Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(accent.Hex())),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(muted.Hex())).
			Padding(0, 1),
		Help:   lipgloss.NewStyle().Foreground(lipgloss.Color(muted.Hex())),
		Status: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#ff6f6f")),
	}
}

// Shade blends from the background to the accent colour; level is clamped
// to [0,1].
func (t Theme) Shade(level float64) lipgloss.Color {
	level = min(max(level, 0), 1)
	return lipgloss.Color(background.BlendLab(t.accent, 0.25+0.75*level).Clamped().Hex())
}
