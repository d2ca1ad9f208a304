package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/basil51/ai-school-sub003/internal/screen"
)

type stubScreen struct {
	title   string
	initRan bool
	got     []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}

func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.got = append(s.got, msg)
	return s, nil
}

func (s *stubScreen) View(int, int) string { return s.title }
func (s *stubScreen) Title() string        { return s.title }

func TestPushAndPop(t *testing.T) {
	s1 := &stubScreen{title: "practice"}
	r := New(s1)

	s2 := &stubScreen{title: "summary"}
	r.Update(PushScreenMsg{Screen: s2})
	if r.Depth() != 2 {
		t.Fatalf("Depth = %d, want 2", r.Depth())
	}
	if !s2.initRan {
		t.Error("pushed screen was not initialized")
	}
	if r.View(80, 24) != "summary" {
		t.Errorf("View = %q, want summary", r.View(80, 24))
	}

	if cmd := r.Pop(); cmd != nil {
		t.Error("Pop above the bottom should not return a command")
	}
	if r.Active().Title() != "practice" {
		t.Errorf("Active = %q, want practice", r.Active().Title())
	}
}

func TestPopLastScreenQuits(t *testing.T) {
	r := New(&stubScreen{title: "practice"})
	cmd := r.Update(PopScreenMsg{})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("cmd() = %T, want tea.QuitMsg", cmd())
	}
	if r.Depth() != 1 {
		t.Errorf("Depth = %d, want 1", r.Depth())
	}
}

func TestReplace(t *testing.T) {
	r := New(&stubScreen{title: "practice"})
	r.Push(&stubScreen{title: "hint"})

	s3 := &stubScreen{title: "summary"}
	r.Update(ReplaceScreenMsg{Screen: s3})

	if r.Depth() != 2 {
		t.Errorf("Depth = %d, want 2", r.Depth())
	}
	if r.Active().Title() != "summary" {
		t.Errorf("Active = %q, want summary", r.Active().Title())
	}
	if !s3.initRan {
		t.Error("replacement screen was not initialized")
	}
}

func TestUpdateForwardsToActive(t *testing.T) {
	s1 := &stubScreen{title: "practice"}
	r := New(s1)
	r.Update(tea.KeyPressMsg{Code: 'a', Text: "a"})
	if len(s1.got) != 1 {
		t.Errorf("active screen got %d messages, want 1", len(s1.got))
	}
}
