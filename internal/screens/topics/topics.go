// Package topics implements the topic selection screen: a list of preset
// wellbeing topics, a custom topic input and the question count toggle.
package topics

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mindcheck/internal/screen"
	"github.com/abhisek/mindcheck/internal/ui/components"
	"github.com/abhisek/mindcheck/internal/ui/layout"
	"github.com/abhisek/mindcheck/internal/ui/theme"
	"github.com/abhisek/mindcheck/internal/workflow"
)

// Presets are the built-in topics offered before the custom entry.
var Presets = []string{
	"Anxiety Check",
	"Stress Level",
	"Sleep Quality",
	"Mood",
	"Burnout",
	"Focus & Attention",
	"Self-Esteem",
	"Relationships",
}

const customLabel = "Custom topic…"

// pickMsg is emitted by the menu when an entry is chosen.
type pickMsg struct {
	topic  string
	custom bool
}

// TopicsScreen lets the user pick a topic and a question count.
type TopicsScreen struct {
	ctrl     *workflow.Controller
	menu     components.Menu
	input    components.TextInput
	busy     components.Busy
	counts   []int
	countIdx int
	custom   bool
}

var _ screen.Screen = (*TopicsScreen)(nil)
var _ screen.KeyHintProvider = (*TopicsScreen)(nil)
var _ screen.StatusProvider = (*TopicsScreen)(nil)

// New creates a TopicsScreen. The count toggle starts on the session's
// desired count.
func New(ctrl *workflow.Controller) *TopicsScreen {
	items := make([]components.MenuItem, 0, len(Presets)+1)
	for _, p := range Presets {
		topic := p
		items = append(items, components.MenuItem{
			Label:  topic,
			Action: func() tea.Cmd { return func() tea.Msg { return pickMsg{topic: topic} } },
		})
	}
	items = append(items, components.MenuItem{
		Label:  customLabel,
		Hint:   "describe your own",
		Action: func() tea.Cmd { return func() tea.Msg { return pickMsg{custom: true} } },
	})

	s := &TopicsScreen{
		ctrl:   ctrl,
		menu:   components.NewMenu(items),
		input:  components.NewTextInput("e.g. Loneliness after moving cities", 60),
		busy:   components.NewBusy(),
		counts: ctrl.Counts(),
	}
	want := ctrl.Session().DesiredCount
	for i, n := range s.counts {
		if n == want {
			s.countIdx = i
		}
	}
	return s
}

func (s *TopicsScreen) Init() tea.Cmd {
	return nil
}

func (s *TopicsScreen) Title() string {
	return "Choose a topic"
}

func (s *TopicsScreen) Status() string {
	return fmt.Sprintf("%d questions", s.count())
}

func (s *TopicsScreen) KeyHints() []layout.KeyHint {
	if s.ctrl.Session().Busy {
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}
	if s.custom {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Check topic"},
			{Key: "Esc", Description: "Back to list"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Tab", Description: "Question count"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *TopicsScreen) count() int {
	if len(s.counts) == 0 {
		return 0
	}
	return s.counts[s.countIdx]
}

func (s *TopicsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case pickMsg:
		if msg.custom {
			s.custom = true
			s.input.Reset()
			return s, s.input.Init()
		}
		return s, s.run("select-topic", func() error {
			return s.ctrl.SelectTopic(context.Background(), msg.topic, s.count())
		})

	case screen.ActionDoneMsg:
		return s, nil

	case tea.KeyMsg:
		if s.ctrl.Session().Busy {
			return s, nil
		}
		if s.custom {
			return s.handleCustomKey(msg)
		}
		return s.handleListKey(msg)
	}

	if s.ctrl.Session().Busy {
		var cmd tea.Cmd
		s.busy, cmd = s.busy.Update(msg)
		return s, cmd
	}

	if s.custom {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *TopicsScreen) handleListKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "tab", "right", "l":
		s.countIdx = (s.countIdx + 1) % len(s.counts)
		return s, nil
	case "shift+tab", "left", "h":
		s.countIdx = (s.countIdx - 1 + len(s.counts)) % len(s.counts)
		return s, nil
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *TopicsScreen) handleCustomKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.custom = false
		return s, nil
	case "enter":
		raw := s.input.Value()
		return s, s.run("validate-topic", func() error {
			return s.ctrl.ValidateCustomTopic(context.Background(), raw, s.count())
		})
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// run starts a workflow action along with the busy spinner.
func (s *TopicsScreen) run(action string, fn func() error) tea.Cmd {
	return tea.Batch(screen.Do(action, fn), s.busy.Tick())
}

func (s *TopicsScreen) View(width, height int) string {
	sess := s.ctrl.Session()
	cw := min(width-4, 70)

	var sections []string
	sections = append(sections, theme.Title.Width(cw).Render("What would you like to check in on?"), "")

	if s.custom {
		sections = append(sections,
			lipgloss.NewStyle().Foreground(theme.Text).Render("Describe a wellbeing topic in a few words:"),
			"",
			s.input.View(),
		)
	} else {
		sections = append(sections, s.menu.View())
	}

	sections = append(sections, "", s.renderCounts())

	if sess.ValidationError != "" {
		sections = append(sections, "", theme.Warning.Width(cw).Render("⚠ "+sess.ValidationError))
	}

	if sess.Busy {
		label := "Preparing your questions…"
		if s.custom {
			label = "Checking your topic…"
		}
		sections = append(sections, "", s.busy.View(label))
	}

	content := lipgloss.NewStyle().Width(cw).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (s *TopicsScreen) renderCounts() string {
	parts := make([]string, len(s.counts))
	for i, n := range s.counts {
		label := fmt.Sprintf(" %d questions ", n)
		if i == s.countIdx {
			parts[i] = theme.Selected.Reverse(true).Render(label)
		} else {
			parts[i] = theme.Unselected.Render(label)
		}
	}
	hint := lipgloss.NewStyle().Foreground(theme.TextDim).Render("Length: ")
	return hint + strings.Join(parts, " ")
}
