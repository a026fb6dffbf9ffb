// Package results shows the analysis, advice and stability assessment.
package results

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mindcheck/internal/analysis"
	"github.com/abhisek/mindcheck/internal/screen"
	"github.com/abhisek/mindcheck/internal/ui/components"
	"github.com/abhisek/mindcheck/internal/ui/layout"
	"github.com/abhisek/mindcheck/internal/ui/theme"
	"github.com/abhisek/mindcheck/internal/workflow"
)

// ResultsScreen renders the finished session. The body scrolls when it is
// taller than the content area.
type ResultsScreen struct {
	ctrl   *workflow.Controller
	busy   components.Busy
	offset int
	lines  int // rendered body height from the last View
	height int
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// New creates a ResultsScreen.
func New(ctrl *workflow.Controller) *ResultsScreen {
	return &ResultsScreen{ctrl: ctrl, busy: components.NewBusy()}
}

func (s *ResultsScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultsScreen) Title() string {
	return "Your results"
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "E", Description: "Export PDF"},
		{Key: "N", Description: "New test"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	sess := s.ctrl.Session()

	switch msg := msg.(type) {
	case screen.ActionDoneMsg:
		return s, nil

	case tea.KeyMsg:
		if sess.Busy {
			return s, nil
		}
		switch msg.String() {
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			if s.offset < s.maxOffset() {
				s.offset++
			}
		case "pgdown", "space":
			s.offset = min(s.offset+s.height/2, s.maxOffset())
		case "pgup":
			s.offset = max(s.offset-s.height/2, 0)
		case "e", "E":
			return s, tea.Batch(
				screen.Do("export", func() error {
					_, err := s.ctrl.ExportResults(context.Background())
					return err
				}),
				s.busy.Tick(),
			)
		case "n", "N":
			// Stage change is picked up by the app.
			_ = s.ctrl.StartNewTest()
		}
		return s, nil
	}

	if sess.Busy {
		var cmd tea.Cmd
		s.busy, cmd = s.busy.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *ResultsScreen) maxOffset() int {
	return max(s.lines-s.height, 0)
}

func (s *ResultsScreen) View(width, height int) string {
	sess := s.ctrl.Session()
	cw := min(width-4, 80)

	body := RenderBody(sess, cw)
	if sess.LastExport != "" {
		body += "\n\n" + theme.Answered.Width(cw).Render("Saved to "+sess.LastExport)
	}
	if sess.Busy {
		body += "\n\n" + s.busy.View("Writing PDF…")
	}

	lines := strings.Split(body, "\n")
	s.lines = len(lines)
	s.height = height
	s.offset = min(s.offset, s.maxOffset())

	end := min(s.offset+height, len(lines))
	visible := strings.Join(lines[s.offset:end], "\n")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, visible)
}

// RenderBody renders the results without scrolling.
func RenderBody(sess workflow.Session, width int) string {
	heading := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	text := lipgloss.NewStyle().Foreground(theme.Text).Width(width)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Width(width)

	var sections []string
	sections = append(sections,
		theme.Title.Width(width).Render(sess.Topic),
		theme.Subtitle.Width(width).Render(fmt.Sprintf("%d questions", len(sess.Questions))),
		"",
	)

	switch {
	case len(sess.Stability) > 0:
		sections = append(sections, heading.Render("Stability"), renderStability(sess.Stability), "")
	case sess.StabilityUnavailable:
		sections = append(sections, dim.Render("A stability assessment isn't available for this test."), "")
	}

	if sess.Analysis != nil {
		sections = append(sections, heading.Render("Analysis"), text.Render(sess.Analysis.Text), "")
		if sess.Analysis.Advice != "" {
			sections = append(sections, heading.Render("Advice"), text.Render(sess.Analysis.Advice), "")
		}
	}

	sections = append(sections, dim.Render(
		"This check-in is for reflection only and is not a diagnosis. If you are struggling, please reach out to someone you trust or a professional."))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderStability(st analysis.Stability) string {
	label := lipgloss.NewStyle().Foreground(theme.TextDim).Width(12)
	value := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)

	rows := make([]string, 0, len(analysis.Categories))
	for _, c := range analysis.Categories {
		lv, ok := st[c]
		if !ok {
			continue
		}
		rows = append(rows, "  "+label.Render(c.Label())+lv.Emoji+"  "+value.Render(lv.Level))
	}
	return strings.Join(rows, "\n")
}
