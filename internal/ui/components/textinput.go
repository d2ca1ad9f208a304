package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/basil51/ai-school-sub003/internal/ui/theme"
)

// AnswerInput is a free-text answer field that shows a check or cross
// once graded.
type AnswerInput struct {
	Model  textinput.Model
	graded bool
	ok     bool
}

func NewAnswerInput(placeholder string, limit int) AnswerInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if limit > 0 {
		ti.CharLimit = limit
	}
	ti.Focus()
	return AnswerInput{Model: ti}
}

func (a AnswerInput) Init() tea.Cmd {
	return a.Model.Focus()
}

// Update forwards keys to the text field until the answer is graded.
func (a AnswerInput) Update(msg tea.Msg) (AnswerInput, tea.Cmd) {
	if a.graded {
		return a, nil
	}
	var cmd tea.Cmd
	a.Model, cmd = a.Model.Update(msg)
	return a, cmd
}

func (a AnswerInput) View() string {
	v := a.Model.View()
	if a.graded {
		if a.ok {
			v += " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		} else {
			v += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
	}
	return v
}

// Value is the trimmed answer text.
func (a AnswerInput) Value() string {
	return strings.TrimSpace(a.Model.Value())
}

// Grade freezes the field with a result mark.
func (a *AnswerInput) Grade(correct bool) {
	a.graded = true
	a.ok = correct
}

// Reset clears the field for the next question.
func (a *AnswerInput) Reset() {
	a.Model.SetValue("")
	a.graded = false
	a.ok = false
}
