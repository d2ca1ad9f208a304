// Package screen defines the contract between TUI screens and the router.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/basil51/ai-school-sub003/internal/ui/layout"
)

// Screen is one full-window view of the practice TUI.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the content area, excluding header and footer.
	View(width, height int) string

	Title() string
}

// KeyHintProvider lets a screen supply its own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider lets a screen supply the header's right-hand status.
type StatusProvider interface {
	Status() string
}
