// Package render draws a page of rows as a terminal table.
package render

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	HeaderColor = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#54A0FF"}
	BorderColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}
	MutedColor  = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"}
	ActiveColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"} // filtered/sorted column header

	headerStyle       = lipgloss.NewStyle().Bold(true).Foreground(HeaderColor).Padding(0, 1)
	activeHeaderStyle = headerStyle.Foreground(ActiveColor)
	cellStyle         = lipgloss.NewStyle().Padding(0, 1)
	oddCellStyle      = cellStyle.Foreground(MutedColor)
	borderStyle       = lipgloss.NewStyle().Foreground(BorderColor)
	summaryStyle      = lipgloss.NewStyle().Foreground(MutedColor)
	emptyStyle        = lipgloss.NewStyle().Italic(true).Foreground(MutedColor)
)

// swatches maps common color names to terminal colors for color columns.
var swatches = map[string]lipgloss.Color{
	"red":    lipgloss.Color("#FF6B6B"),
	"green":  lipgloss.Color("#73F59F"),
	"blue":   lipgloss.Color("#54A0FF"),
	"yellow": lipgloss.Color("#FECA57"),
	"orange": lipgloss.Color("#FAB387"),
	"purple": lipgloss.Color("#CBA6F7"),
}

// SetColor switches color output on or off for every subsequent render.
func SetColor(enabled bool) {
	if enabled {
		lipgloss.SetColorProfile(termenv.EnvColorProfile())
		return
	}
	lipgloss.SetColorProfile(termenv.Ascii)
}
