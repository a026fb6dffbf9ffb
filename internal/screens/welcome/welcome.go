package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mindcheck/internal/screen"
	"github.com/abhisek/mindcheck/internal/ui/layout"
	"github.com/abhisek/mindcheck/internal/ui/theme"
	"github.com/abhisek/mindcheck/internal/workflow"
)

const (
	tickInterval = 100 * time.Millisecond
	phase1End    = 500 * time.Millisecond
	phase2End    = 1200 * time.Millisecond
	totalDur     = 2000 * time.Millisecond
)

const mascotArt = `    ╭─────╮ ╭─────╮
   ╭╯     ╰─╯     ╰╮
   │   ◠       ◠   │
   │       ‿       │
   ╰╮             ╭╯
    ╰──╮       ╭──╯
       ╰───────╯`

// breathing frames pulse around the mascot
var pulseFrames = []string{"·", "∘", "○", "∘"}

type tickMsg time.Time

// WelcomeScreen plays a short splash, then starts the workflow on a key press.
type WelcomeScreen struct {
	ctrl      *workflow.Controller
	elapsed   time.Duration
	tickCount int
	started   bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)
var _ screen.KeyHintProvider = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen for ctrl.
func New(ctrl *workflow.Controller) *WelcomeScreen {
	return &WelcomeScreen{ctrl: ctrl}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Any key", Description: "Start"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.elapsed < totalDur {
			w.elapsed += tickInterval
		}
		w.tickCount++
		return w, tea.Tick(tickInterval, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})

	case tea.KeyPressMsg:
		// A key press during the animation skips it.
		if w.elapsed < totalDur {
			w.elapsed = totalDur
			return w, nil
		}
		return w, w.begin()
	}

	return w, nil
}

func (w *WelcomeScreen) begin() tea.Cmd {
	if w.started {
		return nil
	}
	w.started = true
	return screen.Do("begin", w.ctrl.Begin)
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	rendered := lipgloss.NewStyle().Foreground(theme.Secondary).Render(mascotArt)

	if w.elapsed >= phase1End {
		pulse := lipgloss.NewStyle().Foreground(theme.Accent).
			Render(pulseFrames[w.tickCount%len(pulseFrames)])

		lines := strings.Split(rendered, "\n")
		if len(lines) > 3 {
			lines[3] = pulse + "  " + lines[3] + "  " + pulse
		}
		rendered = strings.Join(lines, "\n")
	}

	sections = append(sections, rendered)

	if w.elapsed >= phase2End {
		sections = append(sections, "", RenderBanner(width), "")

		tagline := lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Render("A few honest questions. A kinder look at how you're doing.")
		sections = append(sections, tagline)

		sections = append(sections, "")
		hint := lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Italic(true).
			Render("press any key to begin")
		sections = append(sections, hint)
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
