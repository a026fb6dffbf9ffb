package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mindcheck/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is an optional interface for screens that show a status
// string on the right of the header.
type StatusProvider interface {
	Status() string
}

// ActionDoneMsg reports that a workflow action finished. The app forwards
// it to the active screen and then re-reads the session to decide which
// screen to show.
type ActionDoneMsg struct {
	Action string
	Err    error
}

// Do runs fn as a command and reports its result as an ActionDoneMsg.
func Do(action string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return ActionDoneMsg{Action: action, Err: fn()}
	}
}
