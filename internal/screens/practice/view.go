package practice

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/basil51/ai-school-sub003/internal/hints"
	"github.com/basil51/ai-school-sub003/internal/ui/components"
	"github.com/basil51/ai-school-sub003/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	switch {
	case s.phase == phaseFailed:
		return renderCentered(width, height, theme.Incorrect.Render("Something went wrong")+"\n\n"+
			theme.Dim.Render(s.err.Error()))
	case s.question == nil:
		return renderCentered(width, height, theme.Dim.Render("Loading..."))
	case s.phase == phaseConfirmQuit:
		return renderCentered(width, height, theme.Body.Render("Finish the session now?")+"\n\n"+
			theme.Dim.Render("Your answers so far will be scored."))
	}

	var b strings.Builder
	b.WriteString(s.renderInfo(width))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render(s.question.Prompt))
	b.WriteString("\n\n")

	if s.multipleChoice() {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choice.View()))
	} else {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, "Answer: "+s.input.View()))
		b.WriteString("\n")
	}

	for _, h := range s.hints {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render(fmt.Sprintf("  Hint %d (%s): %s", h.Number, h.Level, h.Text)))
	}
	if s.notice != "" {
		b.WriteString("\n\n" + theme.Dim.Render("  "+s.notice))
	}
	if s.phase == phaseFeedback {
		b.WriteString("\n\n")
		b.WriteString(s.renderFeedback(width))
	}
	return b.String()
}

func (s *Screen) renderInfo(width int) string {
	q := s.question
	left := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render(fmt.Sprintf("  %s · %s", orDash(q.Topic), hints.DifficultyLabel(q.Difficulty)))

	var right string
	if s.step != nil {
		right = components.Bar{Label: "Confidence", Value: s.step.Confidence, Width: 34}.View()
	}
	line := left
	if pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 2; pad > 0 {
		line += strings.Repeat(" ", pad) + right
	}
	return line + "\n" + theme.Dim.Render(strings.Repeat("─", max(width-2, 0)))
}

func (s *Screen) renderFeedback(width int) string {
	r := s.step.LastResult
	if r == nil {
		return ""
	}
	var b strings.Builder
	if r.Correct {
		b.WriteString(theme.Correct.Render("Correct!"))
	} else {
		b.WriteString(theme.Incorrect.Render("Not quite.") + " " +
			theme.Body.Render("Answer: "+r.CorrectAnswer))
	}
	if r.Feedback != "" {
		b.WriteString("\n" + theme.Body.Render(r.Feedback))
	}
	if e := s.explanation; e != nil && e.Text != "" {
		b.WriteString("\n\n" + theme.Body.Render(e.Text))
		for i, st := range e.Steps {
			b.WriteString(fmt.Sprintf("\n%s", theme.Dim.Render(fmt.Sprintf("  %d. %s", i+1, st))))
		}
	}
	return theme.Card.Width(min(width-4, 80)).Render(b.String())
}

func renderCentered(width, height int, content string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
