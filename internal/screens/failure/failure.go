// Package failure renders the full-screen error view shown while the
// session carries a general failure.
package failure

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mindcheck/internal/screen"
	"github.com/abhisek/mindcheck/internal/ui/layout"
	"github.com/abhisek/mindcheck/internal/ui/theme"
	"github.com/abhisek/mindcheck/internal/workflow"
)

// FailureScreen offers reload (back to welcome) or dismiss (back to the
// stage that failed, state intact).
type FailureScreen struct {
	ctrl   *workflow.Controller
	errMsg string
}

var _ screen.Screen = (*FailureScreen)(nil)
var _ screen.KeyHintProvider = (*FailureScreen)(nil)

func New(ctrl *workflow.Controller) *FailureScreen {
	return &FailureScreen{ctrl: ctrl}
}

func (s *FailureScreen) Init() tea.Cmd {
	return nil
}

func (s *FailureScreen) Title() string {
	return "Something went wrong"
}

func (s *FailureScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "R", Description: "Start over"},
		{Key: "Esc", Description: "Dismiss"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *FailureScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "r", "R":
		if err := s.ctrl.Reload(); err != nil {
			s.errMsg = err.Error()
		}
	case "esc", "enter":
		s.ctrl.DismissFailure()
	}
	return s, nil
}

func (s *FailureScreen) View(width, height int) string {
	f := s.ctrl.Session().Failure
	if f == nil {
		return ""
	}
	cw := min(width-10, 64)

	title := lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render(f.Kind.Title())
	msg := lipgloss.NewStyle().Foreground(theme.Text).Width(cw).Render(f.Message)
	keys := lipgloss.NewStyle().Foreground(theme.TextDim).Render("[R] Start over    [Esc] Dismiss")

	parts := []string{title, "", msg, "", keys}
	if s.errMsg != "" {
		parts = append(parts, "", theme.Warning.Render(s.errMsg))
	}

	box := theme.ErrorBox.Render(lipgloss.JoinVertical(lipgloss.Center, parts...))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
