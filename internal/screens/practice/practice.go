// Package practice is the TUI screen that drives one adaptive session.
package practice

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/basil51/ai-school-sub003/internal/hints"
	"github.com/basil51/ai-school-sub003/internal/router"
	"github.com/basil51/ai-school-sub003/internal/screen"
	"github.com/basil51/ai-school-sub003/internal/screens/summary"
	"github.com/basil51/ai-school-sub003/internal/session"
	"github.com/basil51/ai-school-sub003/internal/ui/components"
	"github.com/basil51/ai-school-sub003/internal/ui/layout"
)

// Sessions is the part of session.Manager the screen drives.
type Sessions interface {
	Start(ctx context.Context, studentID, assessmentID string) (*session.Step, error)
	Answer(ctx context.Context, sessionID string, in session.AnswerInput) (*session.Step, error)
	Hint(ctx context.Context, sessionID, questionID string) (*session.Step, error)
	Next(ctx context.Context, sessionID string) (*session.Step, error)
	Complete(ctx context.Context, sessionID string) (*session.Step, error)
}

type phase int

const (
	phaseLoading phase = iota
	phaseQuestion
	phaseFeedback
	phaseConfirmQuit
	phaseFailed
)

type op string

const (
	opStart    op = "start"
	opAnswer   op = "answer"
	opHint     op = "hint"
	opNext     op = "next"
	opComplete op = "complete"
)

// stepMsg carries the result of a session call back into Update.
type stepMsg struct {
	op   op
	step *session.Step
	err  error
}

type Screen struct {
	ctx          context.Context
	sessions     Sessions
	studentID    string
	assessmentID string

	phase       phase
	step        *session.Step
	question    *session.QuestionView
	input       components.AnswerInput
	choice      components.Choice
	hints       []*hints.Hint
	explanation *hints.Explanation
	notice      string
	err         error
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.StatusProvider = (*Screen)(nil)

func New(ctx context.Context, sessions Sessions, studentID, assessmentID string) *Screen {
	return &Screen{
		ctx:          ctx,
		sessions:     sessions,
		studentID:    studentID,
		assessmentID: assessmentID,
		input:        components.NewAnswerInput("Type your answer...", 64),
	}
}

func (s *Screen) Init() tea.Cmd {
	return tea.Batch(s.call(opStart, func(ctx context.Context) (*session.Step, error) {
		return s.sessions.Start(ctx, s.studentID, s.assessmentID)
	}), s.input.Init())
}

func (s *Screen) Title() string { return "Practice: " + s.assessmentID }

func (s *Screen) Status() string {
	if s.step == nil {
		return ""
	}
	return fmt.Sprintf("✓ %d/%d", s.step.Correct, s.step.Answered)
}

func (s *Screen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseQuestion:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Tab", Description: "Hint"},
			{Key: "Esc", Description: "Finish"},
		}
	case phaseFeedback:
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	case phaseConfirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "Finish now"},
			{Key: "N", Description: "Keep going"},
		}
	case phaseFailed:
		return []layout.KeyHint{{Key: "any key", Description: "Exit"}}
	}
	return nil
}

// call runs fn off the update loop and reports back with a stepMsg.
func (s *Screen) call(o op, fn func(context.Context) (*session.Step, error)) tea.Cmd {
	ctx := s.ctx
	return func() tea.Msg {
		step, err := fn(ctx)
		return stepMsg{op: o, step: step, err: err}
	}
}

func (s *Screen) sessionID() string {
	if s.step == nil {
		return ""
	}
	return s.step.SessionID
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case stepMsg:
		return s.handleStep(msg)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	if s.phase == phaseQuestion && !s.multipleChoice() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *Screen) multipleChoice() bool {
	return s.question != nil && len(s.question.Options) > 0
}

func (s *Screen) handleStep(msg stepMsg) (screen.Screen, tea.Cmd) {
	if msg.err != nil {
		if msg.op == opHint {
			s.notice = msg.err.Error()
			return s, nil
		}
		s.err = msg.err
		s.phase = phaseFailed
		return s, nil
	}
	s.step = msg.step
	s.notice = ""

	if msg.step.Completion != nil {
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: summary.New(msg.step.Completion)} }
	}

	switch msg.op {
	case opStart, opNext:
		s.phase = phaseQuestion
		s.hints = nil
		s.explanation = nil
		s.input.Reset()
		s.question = msg.step.Question
		if s.question != nil {
			s.choice = components.NewChoice(s.question.Options)
		}
	case opAnswer:
		s.phase = phaseFeedback
		s.explanation = msg.step.Explanation
		if r := msg.step.LastResult; r != nil {
			s.input.Grade(r.Correct)
			s.choice.Grade(r.Correct)
		}
	case opHint:
		if msg.step.Hint != nil {
			s.hints = append(s.hints, msg.step.Hint)
		}
	}
	return s, nil
}

func (s *Screen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	switch s.phase {
	case phaseLoading:
		return s, nil

	case phaseFailed:
		return s, func() tea.Msg { return router.PopScreenMsg{} }

	case phaseFeedback:
		s.phase = phaseLoading
		id := s.sessionID()
		return s, s.call(opNext, func(ctx context.Context) (*session.Step, error) {
			return s.sessions.Next(ctx, id)
		})

	case phaseConfirmQuit:
		switch key {
		case "y", "Y":
			s.phase = phaseLoading
			id := s.sessionID()
			return s, s.call(opComplete, func(ctx context.Context) (*session.Step, error) {
				return s.sessions.Complete(ctx, id)
			})
		case "n", "N", "esc":
			s.phase = phaseQuestion
		}
		return s, nil
	}

	// phaseQuestion
	if s.question == nil {
		return s, nil
	}
	switch key {
	case "esc":
		s.phase = phaseConfirmQuit
		return s, nil
	case "tab":
		id, qid := s.sessionID(), s.question.ID
		return s, s.call(opHint, func(ctx context.Context) (*session.Step, error) {
			return s.sessions.Hint(ctx, id, qid)
		})
	}

	var answer string
	if s.multipleChoice() {
		s.choice, _ = s.choice.Update(msg)
		answer = s.choice.Answer()
	} else if key == "enter" {
		answer = s.input.Value()
		if answer == "" {
			s.notice = "Type an answer first."
			return s, nil
		}
	} else {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	if answer == "" {
		return s, nil
	}

	s.phase = phaseLoading
	id, qid := s.sessionID(), s.question.ID
	return s, s.call(opAnswer, func(ctx context.Context) (*session.Step, error) {
		return s.sessions.Answer(ctx, id, session.AnswerInput{QuestionID: qid, Answer: answer})
	})
}
