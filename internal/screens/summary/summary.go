// Package summary renders a completed adaptive session.
package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/basil51/ai-school-sub003/internal/router"
	"github.com/basil51/ai-school-sub003/internal/screen"
	"github.com/basil51/ai-school-sub003/internal/session"
	"github.com/basil51/ai-school-sub003/internal/ui/components"
	"github.com/basil51/ai-school-sub003/internal/ui/layout"
	"github.com/basil51/ai-school-sub003/internal/ui/theme"
)

type Screen struct {
	c *session.Completion
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

func New(c *session.Completion) *Screen {
	return &Screen{c: c}
}

func (s *Screen) Init() tea.Cmd { return nil }

func (s *Screen) Title() string { return "Session Summary" }

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Enter", Description: "Exit"}}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	c := s.c
	if c == nil {
		return ""
	}
	center := func(str string) string { return lipgloss.PlaceHorizontal(width, lipgloss.Center, str) }
	var b strings.Builder

	verdict := theme.Correct.Render("Passed")
	if !c.Passed {
		verdict = theme.Incorrect.Render("Not passed yet")
	}
	b.WriteString(center(theme.Title.Render("Session complete") + "  " + verdict))
	b.WriteString("\n\n")

	a := c.Analytics
	b.WriteString(center(theme.Body.Render(fmt.Sprintf(
		"Questions: %d      Correct: %d      Avg time: %.0fs      Hints: %d",
		a.Questions, a.Correct, a.Time.Average, a.Hints.Total))))
	b.WriteString("\n\n")

	barWidth := min(width-8, 60)
	b.WriteString(center(components.Bar{Label: "Score     ", Value: c.Score, Width: barWidth}.View()))
	b.WriteString("\n")
	b.WriteString(center(components.Bar{Label: "Confidence", Value: a.ConfidenceLevel, Width: barWidth}.View()))
	b.WriteString("\n")
	if c.Exhausted {
		b.WriteString("\n")
		b.WriteString(center(theme.Dim.Render("All questions in this assessment were used.")))
		b.WriteString("\n")
	}

	divider := theme.Dim.Render(strings.Repeat("─", barWidth))
	if len(c.Gaps) > 0 {
		b.WriteString("\n" + center(theme.Dim.Render("Learning gaps")) + "\n" + center(divider) + "\n")
		for _, g := range c.Gaps {
			b.WriteString(center(severity(g.Severity).Render(fmt.Sprintf("[%s] %s", g.Severity, g.Description))))
			b.WriteString("\n")
		}
	}
	if len(c.Recommendations) > 0 {
		b.WriteString("\n" + center(theme.Dim.Render("Next steps")) + "\n" + center(divider) + "\n")
		for _, r := range c.Recommendations {
			b.WriteString(center(theme.Body.Render(fmt.Sprintf("• %s: %s", r.Title, r.Description))))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func severity(s string) lipgloss.Style {
	switch s {
	case "high":
		return lipgloss.NewStyle().Foreground(theme.Error)
	case "medium":
		return lipgloss.NewStyle().Foreground(theme.Accent)
	}
	return theme.Body
}
