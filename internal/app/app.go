package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/mindcheck/internal/router"
	"github.com/abhisek/mindcheck/internal/screen"
	"github.com/abhisek/mindcheck/internal/screens/failure"
	"github.com/abhisek/mindcheck/internal/screens/questionnaire"
	"github.com/abhisek/mindcheck/internal/screens/results"
	"github.com/abhisek/mindcheck/internal/screens/topics"
	"github.com/abhisek/mindcheck/internal/screens/welcome"
	"github.com/abhisek/mindcheck/internal/ui/layout"
	"github.com/abhisek/mindcheck/internal/workflow"
)

// Options holds the dependencies for the TUI.
type Options struct {
	Controller *workflow.Controller
	Logger     *zap.Logger
}

// AppModel is the root Bubble Tea model. The bottom screen follows the
// session stage; the error view is pushed over it while a failure is set.
type AppModel struct {
	ctrl           *workflow.Controller
	logger         *zap.Logger
	router         *router.Router
	stage          workflow.Stage
	showingFailure bool
	width          int
	height         int
}

// newAppModel creates an AppModel showing the screen for the current stage.
func newAppModel(opts Options) AppModel {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := AppModel{
		ctrl:   opts.Controller,
		logger: logger.Named("app"),
	}
	m.stage = screenStage(m.ctrl.Session().Stage)
	m.router = router.New(m.screenFor(m.stage))
	return m
}

// screenStage folds the exit modal into the questionnaire screen.
func screenStage(st workflow.Stage) workflow.Stage {
	if st == workflow.StageExitConfirmation {
		return workflow.StageQuestionnaire
	}
	return st
}

func (m AppModel) screenFor(st workflow.Stage) screen.Screen {
	switch st {
	case workflow.StageTopicSelection:
		return topics.New(m.ctrl)
	case workflow.StageQuestionnaire:
		return questionnaire.New(m.ctrl)
	case workflow.StageResults:
		return results.New(m.ctrl)
	default:
		return welcome.New(m.ctrl)
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case screen.ActionDoneMsg:
		if msg.Err != nil {
			m.logger.Debug("action finished with error",
				zap.String("action", msg.Action), zap.Error(msg.Err))
		}
	}

	cmd := m.router.Update(msg)
	syncCmd := m.sync()
	return m, tea.Batch(cmd, syncCmd)
}

// sync brings the screen stack in line with the session.
func (m *AppModel) sync() tea.Cmd {
	sess := m.ctrl.Session()
	var cmds []tea.Cmd

	if st := screenStage(sess.Stage); st != m.stage {
		m.logger.Debug("stage changed", zap.String("from", string(m.stage)), zap.String("to", string(st)))
		m.stage = st
		m.showingFailure = false
		cmds = append(cmds, m.router.Reset(m.screenFor(st)))
	}

	switch {
	case sess.Failure != nil && !m.showingFailure:
		m.showingFailure = true
		cmds = append(cmds, m.router.Push(failure.New(m.ctrl)))
	case sess.Failure == nil && m.showingFailure:
		m.showingFailure = false
		cmds = append(cmds, m.router.Pop())
	}

	return tea.Batch(cmds...)
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws the header, active screen and footer.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title, status := "", ""
	var footerHints []layout.KeyHint
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
		if kp, ok := active.(screen.KeyHintProvider); ok {
			footerHints = kp.KeyHints()
		}
	}
	if footerHints == nil {
		footerHints = []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}

	header := layout.RenderHeader(title, status, m.width)
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	if opts.Controller == nil {
		return fmt.Errorf("app: controller is required")
	}
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
