// Package app hosts the practice TUI: a router of screens inside a
// header/footer frame.
package app

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/basil51/ai-school-sub003/internal/router"
	"github.com/basil51/ai-school-sub003/internal/screen"
	"github.com/basil51/ai-school-sub003/internal/screens/practice"
	"github.com/basil51/ai-school-sub003/internal/ui/layout"
)

// Options configures a practice run.
type Options struct {
	Sessions     practice.Sessions
	StudentID    string
	AssessmentID string
}

// Model is the root Bubble Tea model.
type Model struct {
	router *router.Router
	width  int
	height int
}

// NewModel builds the root model with the practice screen active.
func NewModel(ctx context.Context, opts Options) Model {
	return Model{
		router: router.New(practice.New(ctx, opts.Sessions, opts.StudentID, opts.AssessmentID)),
	}
}

func (m Model) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, m.router.Update(msg)
}

func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws the framed active screen for the current window size.
func (m Model) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	var status string
	if sp, ok := active.(screen.StatusProvider); ok {
		status = sp.Status()
	}
	hints := []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	if hp, ok := active.(screen.KeyHintProvider); ok {
		hints = append(hp.KeyHints(), hints...)
	}

	header := layout.RenderHeader(active.Title(), status, m.width)
	footer := layout.RenderFooter(hints, m.width)
	content := m.router.View(m.width, m.height-lipgloss.Height(header)-lipgloss.Height(footer))
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the TUI and blocks until the student quits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, opts))
	_, err := p.Run()
	return err
}
