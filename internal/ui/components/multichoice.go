package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/basil51/ai-school-sub003/internal/ui/theme"
)

// Choice is a multiple-choice selector. The correct option is not known
// client-side; after grading the chosen line is marked right or wrong.
type Choice struct {
	Options  []string
	Selected int
	Chosen   int // -1 until submitted
	graded   bool
	ok       bool
}

func NewChoice(options []string) Choice {
	return Choice{Options: options, Chosen: -1}
}

// Update moves the cursor with arrows or j/k, picks with enter or a digit.
func (c Choice) Update(msg tea.Msg) (Choice, tea.Cmd) {
	if c.Chosen >= 0 {
		return c, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}
	switch key := kmsg.String(); key {
	case "up", "k":
		if c.Selected > 0 {
			c.Selected--
		}
	case "down", "j":
		if c.Selected < len(c.Options)-1 {
			c.Selected++
		}
	case "enter":
		c.Chosen = c.Selected
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(c.Options) {
				c.Selected = i
				c.Chosen = i
			}
		}
	}
	return c, nil
}

// Answer is the chosen option text, or "" before a choice is made.
func (c Choice) Answer() string {
	if c.Chosen < 0 || c.Chosen >= len(c.Options) {
		return ""
	}
	return c.Options[c.Chosen]
}

func (c *Choice) Grade(correct bool) {
	c.graded = true
	c.ok = correct
}

func (c Choice) View() string {
	var b strings.Builder
	for i, opt := range c.Options {
		prefix := "  "
		if i == c.Selected && c.Chosen < 0 {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d) %s", prefix, i+1, opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case c.graded && i == c.Chosen && c.ok:
			style = theme.Correct
		case c.graded && i == c.Chosen:
			style = theme.Incorrect
		case c.graded:
			style = theme.Dim
		case i == c.Selected:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
