package app

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/basil51/ai-school-sub003/internal/session"
)

type idleSessions struct{}

func (idleSessions) Start(context.Context, string, string) (*session.Step, error) {
	return &session.Step{}, nil
}
func (idleSessions) Answer(context.Context, string, session.AnswerInput) (*session.Step, error) {
	return &session.Step{}, nil
}
func (idleSessions) Hint(context.Context, string, string) (*session.Step, error) {
	return &session.Step{}, nil
}
func (idleSessions) Next(context.Context, string) (*session.Step, error) { return &session.Step{}, nil }
func (idleSessions) Complete(context.Context, string) (*session.Step, error) {
	return &session.Step{}, nil
}

func newTestModel() Model {
	return NewModel(context.Background(), Options{Sessions: idleSessions{}, StudentID: "stu-1", AssessmentID: "quiz"})
}

func TestModel_CtrlCQuits(t *testing.T) {
	_, cmd := newTestModel().Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("cmd() = %T, want tea.QuitMsg", cmd())
	}
}

func TestModel_ViewFramesActiveScreen(t *testing.T) {
	m, _ := newTestModel().Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	content := m.(Model).render()
	if !strings.Contains(content, "Practice: quiz") {
		t.Errorf("header missing screen title:\n%s", content)
	}
	if !strings.Contains(content, "Ctrl+C") {
		t.Error("footer missing quit hint")
	}
}

func TestModel_TooSmall(t *testing.T) {
	m, _ := newTestModel().Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(m.(Model).render(), "Terminal too small") {
		t.Error("expected resize message")
	}
}
