package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/basil51/ai-school-sub003/internal/ui/theme"
)

// Bar is a labelled horizontal gauge for a [0,1] value.
type Bar struct {
	Label string
	Value float64
	Width int
}

func (p Bar) View() string {
	var out string
	if p.Label != "" {
		out = lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	barWidth := p.Width - lipgloss.Width(out) - 6
	if barWidth < 4 {
		barWidth = 4
	}
	v := p.Value
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	filled := int(float64(barWidth) * v)

	out += lipgloss.NewStyle().Background(theme.Secondary).Render(strings.Repeat(" ", filled))
	out += lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))
	out += theme.Level(v*100).Render(fmt.Sprintf("  %3d%%", int(v*100+0.5)))
	return out
}
