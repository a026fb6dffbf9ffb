package components

import (
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mindcheck/internal/ui/theme"
)

// Busy is a spinner with a label, shown while a workflow call is in flight.
type Busy struct {
	spin spinner.Model
}

// NewBusy creates a Busy indicator.
func NewBusy() Busy {
	return Busy{
		spin: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Secondary)),
		),
	}
}

// Tick starts the animation.
func (b Busy) Tick() tea.Cmd {
	return b.spin.Tick
}

// Update advances the spinner. Callers stop forwarding ticks once the call
// has finished, which ends the animation loop.
func (b Busy) Update(msg tea.Msg) (Busy, tea.Cmd) {
	var cmd tea.Cmd
	b.spin, cmd = b.spin.Update(msg)
	return b, cmd
}

// View renders the spinner followed by label.
func (b Busy) View(label string) string {
	return b.spin.View() + " " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(label)
}
