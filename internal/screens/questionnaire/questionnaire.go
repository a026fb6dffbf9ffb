// Package questionnaire implements the answering screen and its exit
// confirmation modal.
package questionnaire

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mindcheck/internal/screen"
	"github.com/abhisek/mindcheck/internal/ui/components"
	"github.com/abhisek/mindcheck/internal/ui/layout"
	"github.com/abhisek/mindcheck/internal/ui/theme"
	"github.com/abhisek/mindcheck/internal/workflow"
)

// QuestionnaireScreen shows one question at a time.
type QuestionnaireScreen struct {
	ctrl    *workflow.Controller
	busy    components.Busy
	current int
	cursor  int
	errMsg  string
}

var _ screen.Screen = (*QuestionnaireScreen)(nil)
var _ screen.KeyHintProvider = (*QuestionnaireScreen)(nil)
var _ screen.StatusProvider = (*QuestionnaireScreen)(nil)

// New creates a QuestionnaireScreen positioned on the first question.
func New(ctrl *workflow.Controller) *QuestionnaireScreen {
	s := &QuestionnaireScreen{ctrl: ctrl, busy: components.NewBusy()}
	s.moveTo(0, ctrl.Session())
	return s
}

func (s *QuestionnaireScreen) Init() tea.Cmd {
	return nil
}

func (s *QuestionnaireScreen) Title() string {
	return s.ctrl.Session().Topic
}

func (s *QuestionnaireScreen) Status() string {
	sess := s.ctrl.Session()
	return fmt.Sprintf("%d/%d answered", sess.AnsweredCount(), len(sess.Questions))
}

func (s *QuestionnaireScreen) KeyHints() []layout.KeyHint {
	sess := s.ctrl.Session()
	switch {
	case sess.Busy:
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	case sess.Stage == workflow.StageExitConfirmation:
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave test"},
			{Key: "N", Description: "Keep going"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Move"},
		{Key: "Enter/A-D", Description: "Answer"},
		{Key: "←→", Description: "Question"},
		{Key: "S", Description: "Submit"},
		{Key: "Esc", Description: "Exit"},
	}
}

// Current returns the index of the question on screen.
func (s *QuestionnaireScreen) Current() int {
	return s.current
}

// moveTo shows question i with the cursor on its recorded answer.
func (s *QuestionnaireScreen) moveTo(i int, sess workflow.Session) {
	if i < 0 || i >= len(sess.Questions) {
		return
	}
	s.current = i
	s.cursor = 0
	if ans, ok := sess.Answer(i); ok {
		for j, o := range sess.Questions[i].Options {
			if o == ans {
				s.cursor = j
			}
		}
	}
}

func (s *QuestionnaireScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	sess := s.ctrl.Session()

	switch msg := msg.(type) {
	case screen.ActionDoneMsg:
		// Jump to the first unanswered question after a rejected submit.
		if msg.Action == "submit" && len(sess.Unanswered) > 0 {
			s.moveTo(sess.UnansweredIndices()[0], sess)
		}
		return s, nil

	case tea.KeyMsg:
		if sess.Busy {
			return s, nil
		}
		s.errMsg = ""
		if sess.Stage == workflow.StageExitConfirmation {
			return s.handleExitKey(msg)
		}
		return s.handleKey(msg, sess)
	}

	if sess.Busy {
		var cmd tea.Cmd
		s.busy, cmd = s.busy.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuestionnaireScreen) handleExitKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		s.report(s.ctrl.ConfirmExit())
	case "n", "N", "esc":
		s.report(s.ctrl.CancelExit())
	}
	return s, nil
}

func (s *QuestionnaireScreen) handleKey(msg tea.KeyMsg, sess workflow.Session) (screen.Screen, tea.Cmd) {
	if len(sess.Questions) == 0 {
		return s, nil
	}
	q := sess.Questions[s.current]
	last := len(sess.Questions) - 1

	switch key := msg.String(); key {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(q.Options)-1 {
			s.cursor++
		}
	case "enter":
		s.choose(s.cursor, sess)
	case "right", "l", "tab":
		s.moveTo(min(s.current+1, last), sess)
	case "left", "h", "shift+tab":
		s.moveTo(max(s.current-1, 0), sess)
	case "s", "S":
		return s, tea.Batch(
			screen.Do("submit", func() error { return s.ctrl.SubmitForAnalysis(context.Background()) }),
			s.busy.Tick(),
		)
	case "esc":
		s.report(s.ctrl.RequestExit())
	default:
		mc := components.MultiChoice{Options: q.Options}
		if i, ok := mc.IndexForKey(key); ok {
			s.choose(i, sess)
		}
	}
	return s, nil
}

// choose records option i for the current question and advances.
func (s *QuestionnaireScreen) choose(i int, sess workflow.Session) {
	q := sess.Questions[s.current]
	if i < 0 || i >= len(q.Options) {
		return
	}
	if err := s.ctrl.RecordAnswer(s.current, q.Options[i]); err != nil {
		s.report(err)
		return
	}
	s.cursor = i
	if s.current < len(sess.Questions)-1 {
		s.moveTo(s.current+1, s.ctrl.Session())
	}
}

func (s *QuestionnaireScreen) report(err error) {
	if err != nil {
		s.errMsg = err.Error()
	}
}

func (s *QuestionnaireScreen) View(width, height int) string {
	sess := s.ctrl.Session()
	if len(sess.Questions) == 0 {
		return ""
	}
	if sess.Stage == workflow.StageExitConfirmation {
		return renderExitConfirm(width, height, sess)
	}

	cw := min(width-4, 76)
	total := len(sess.Questions)
	q := sess.Questions[s.current]
	ans, _ := sess.Answer(s.current)

	answered := make(map[int]bool, total)
	for i := range total {
		if _, ok := sess.Answer(i); ok {
			answered[i] = true
		}
	}

	mc := components.NewMultiChoice(q.Text, q.Options, ans)
	mc.Selected = s.cursor
	mc.Flagged = sess.Unanswered[s.current]

	counter := lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("Question %d of %d", s.current+1, total))
	strip := components.QuestionStrip{
		Total:    total,
		Current:  s.current,
		Answered: answered,
		Flagged:  sess.Unanswered,
	}

	sections := []string{
		counter + "   " + strip.View(),
		"",
		mc.View(cw),
		components.NewProgressBar("Answered", float64(len(answered))/float64(total), true, cw).View(),
	}

	if sess.ValidationError != "" {
		sections = append(sections, "", theme.Flagged.Width(cw).Render(sess.ValidationError))
	}
	if s.errMsg != "" {
		sections = append(sections, "", theme.Warning.Width(cw).Render(s.errMsg))
	}
	if sess.Busy {
		sections = append(sections, "", s.busy.View("Reflecting on your answers…"))
	}

	content := lipgloss.NewStyle().Width(cw).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func renderExitConfirm(width, height int, sess workflow.Session) string {
	title := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("Leave this test?")
	body := lipgloss.NewStyle().Foreground(theme.Text).Render(
		fmt.Sprintf("You've answered %d of %d questions.\nYour answers won't be saved.", sess.AnsweredCount(), len(sess.Questions)))
	keys := lipgloss.NewStyle().Foreground(theme.TextDim).Render("[Y] Leave    [N] Keep going")

	box := theme.Modal.Render(lipgloss.JoinVertical(lipgloss.Center, title, "", body, "", keys))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
