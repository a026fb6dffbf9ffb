package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mindcheck/internal/ui/theme"
)

var optionLabels = []string{"A", "B", "C", "D", "E", "F"}

// MultiChoice is a single-question option picker. Unlike a quiz there is no
// correct answer; Chosen marks the option currently recorded.
type MultiChoice struct {
	Question string
	Options  []string
	Selected int
	Chosen   int // -1 when unanswered
	Flagged  bool
}

// NewMultiChoice creates a picker with the cursor on the chosen option, or
// on the first one when nothing is chosen yet.
func NewMultiChoice(question string, options []string, chosen string) MultiChoice {
	m := MultiChoice{Question: question, Options: options, Chosen: -1}
	for i, o := range options {
		if o == chosen {
			m.Chosen = i
			m.Selected = i
		}
	}
	return m
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update moves the cursor. Choosing is left to the caller, which reads
// Selected on enter or on a letter key.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	}

	return m, nil
}

// IndexForKey maps "a".."d" (or "1".."4") to an option index.
func (m MultiChoice) IndexForKey(key string) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	c := key[0]
	var i int
	switch {
	case c >= 'a' && c <= 'z':
		i = int(c - 'a')
	case c >= '1' && c <= '9':
		i = int(c - '1')
	default:
		return 0, false
	}
	if i >= len(m.Options) {
		return 0, false
	}
	return i, true
}

// View renders the question and its options.
func (m MultiChoice) View(width int) string {
	questionStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	if width > 0 {
		questionStyle = questionStyle.Width(width)
	}
	if m.Flagged {
		questionStyle = questionStyle.Foreground(theme.Error)
	}
	s := questionStyle.Render(m.Question) + "\n\n"

	for i, opt := range m.Options {
		label := "?"
		if i < len(optionLabels) {
			label = optionLabels[i]
		}
		prefix := "  "
		if i == m.Selected {
			prefix = "▸ "
		}
		mark := " "
		if i == m.Chosen {
			mark = "●"
		}

		line := fmt.Sprintf("%s%s %s)  %s", prefix, mark, label, opt)

		switch {
		case i == m.Selected:
			s += theme.Selected.Render(line) + "\n"
		case i == m.Chosen:
			s += theme.Answered.Render(line) + "\n"
		default:
			s += theme.Unselected.Render(line) + "\n"
		}
	}

	return s
}
