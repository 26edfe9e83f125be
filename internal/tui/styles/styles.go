// Package styles holds small rendering helpers shared by the dashboard
// views.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

// Badge renders a padded label pill.
func Badge(text string, bg, fg lipgloss.Color) string {
	return lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Bold(true).
		Padding(0, 1).
		Render(text)
}

// Divider renders a horizontal rule.
func Divider(width int, color lipgloss.Color) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("─", width))
}

// FitLine truncates a (possibly styled) line to the given cell width,
// keeping ANSI sequences intact.
func FitLine(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return truncate.StringWithTail(s, uint(width), "…")
}

// PadTo right-pads a line to exactly width cells, truncating if longer.
func PadTo(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = FitLine(s, width)
	if gap := width - lipgloss.Width(s); gap > 0 {
		s += strings.Repeat(" ", gap)
	}
	return s
}

// Wrap reflows plain text to the given width.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wordwrap.String(s, width)
}

// CellWidth is the display width of a plain string.
func CellWidth(s string) int {
	return runewidth.StringWidth(s)
}
