package chart

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

var (
	terminalTitleStyle = lipgloss.NewStyle().Bold(true)
	terminalTrackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	terminalValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E4E4E7"))
)

// RenderTerminal draws the figure as colored block bars, width columns wide
// for the bar area.
func RenderTerminal(fig *Figure, width int) string {
	if width <= 0 {
		width = 40
	}

	var b strings.Builder
	b.WriteString(terminalTitleStyle.Render(fig.Title))
	b.WriteString("\n")

	if len(fig.Bars) == 0 {
		b.WriteString(terminalTrackStyle.Render("(no data)"))
		b.WriteString("\n")
		return b.String()
	}

	labelWidth := 0
	for _, bar := range fig.Bars {
		labelWidth = max(labelWidth, runewidth.StringWidth(bar.Label))
	}

	for _, bar := range fig.Bars {
		filled := int(bar.Fraction*float64(width) + 0.5)
		filled = min(max(filled, 0), width)

		fmt.Fprintf(&b, "%s %s%s",
			runewidth.FillRight(bar.Label, labelWidth),
			lipgloss.NewStyle().Foreground(lipgloss.Color(bar.Color)).Render(strings.Repeat("█", filled)),
			terminalTrackStyle.Render(strings.Repeat("░", width-filled)),
		)
		if fig.Labels {
			b.WriteString(" ")
			b.WriteString(terminalValueStyle.Render(bar.ValueLabel))
		}
		b.WriteString("\n")
	}

	return b.String()
}
