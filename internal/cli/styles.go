package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	ember = lipgloss.Color("#FF7A45")
	ash   = lipgloss.Color("#8A8A93")
	coal  = lipgloss.Color("#2A2A30")
)

var replyStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ember).
	Padding(0, 1)

var (
	toneStyle  = lipgloss.NewStyle().Foreground(ember).Bold(true)
	traceStyle = lipgloss.NewStyle().Foreground(ash)
	fuseStyle  = lipgloss.NewStyle().Foreground(ember).Background(coal).Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Foreground(ash).Bold(true)
)

// fuseGauge renders remaining charge as filled and empty pips. With an
// unknown ceiling (max <= 0) it shows the count alone.
func fuseGauge(remaining, max int) string {
	if max <= 0 {
		return fuseStyle.Render(fmt.Sprintf("fuse %d", remaining))
	}
	pips := ""
	for i := 0; i < max; i++ {
		if i < remaining {
			pips += "●"
		} else {
			pips += "○"
		}
	}
	return fuseStyle.Render("fuse " + pips)
}
