package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var bars = []rune("▁▂▃▄▅▆▇█")

// Scope renders samples as a one-line strip of width cells. Each cell shows
// the peak magnitude of its slice of the buffer.
func Scope(samples []float64, width int, th Theme) string {
	if width <= 0 {
		return ""
	}
	var b strings.Builder
	for i := range width {
		lo := i * len(samples) / width
		hi := (i + 1) * len(samples) / width
		peak := 0.0
		for _, s := range samples[lo:hi] {
			peak = math.Max(peak, math.Abs(s))
		}
		level := math.Min(peak, 1)
		r := bars[int(level*float64(len(bars)-1)+0.5)]
		b.WriteString(lipgloss.NewStyle().Foreground(th.Shade(level)).Render(string(r)))
	}
	return b.String()
}
