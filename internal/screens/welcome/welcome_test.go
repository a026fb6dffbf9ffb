package welcome

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mindcheck/internal/screen"
	"github.com/abhisek/mindcheck/internal/workflow"
	"github.com/abhisek/mindcheck/internal/workflow/workflowtest"
)

func newTestWelcome(t *testing.T) (*WelcomeScreen, *workflow.Controller) {
	env := workflowtest.New(t)
	return New(env.Controller), env.Controller
}

func sendTicks(w *WelcomeScreen, n int) {
	var s screen.Screen = w
	for i := 0; i < n; i++ {
		s, _ = s.Update(tickMsg(time.Now()))
	}
}

func TestPhaseTransitions(t *testing.T) {
	w, _ := newTestWelcome(t)

	if strings.Contains(w.View(100, 30), "press any key") {
		t.Error("hint should not be visible at start")
	}

	sendTicks(w, 5)
	if w.elapsed != 500*time.Millisecond {
		t.Errorf("expected elapsed 500ms, got %v", w.elapsed)
	}

	sendTicks(w, 10)
	if !strings.Contains(w.View(100, 30), "press any key") {
		t.Error("hint should be visible after phase 2")
	}
}

func TestKeypressDuringAnimationSkips(t *testing.T) {
	w, ctrl := newTestWelcome(t)
	sendTicks(w, 3)

	_, cmd := w.Update(tea.KeyPressMsg{Code: ' '})
	if cmd != nil {
		t.Error("first keypress should only skip the animation")
	}
	if w.elapsed != totalDur {
		t.Errorf("expected elapsed %v, got %v", totalDur, w.elapsed)
	}
	if ctrl.Session().Stage != workflow.StageWelcome {
		t.Error("stage should not change yet")
	}
}

func TestKeypressAfterAnimationBegins(t *testing.T) {
	w, ctrl := newTestWelcome(t)
	sendTicks(w, 25)

	_, cmd := w.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command from keypress after animation")
	}

	msg, ok := cmd().(screen.ActionDoneMsg)
	if !ok {
		t.Fatalf("expected ActionDoneMsg, got %T", msg)
	}
	if msg.Err != nil {
		t.Fatalf("begin failed: %v", msg.Err)
	}
	if got := ctrl.Session().Stage; got != workflow.StageTopicSelection {
		t.Errorf("stage = %q, want topicSelection", got)
	}
}

func TestBeginOnlyOnce(t *testing.T) {
	w, _ := newTestWelcome(t)
	sendTicks(w, 25)

	w.Update(tea.KeyPressMsg{Code: 'a', Text: "a"})
	_, cmd := w.Update(tea.KeyPressMsg{Code: 'b', Text: "b"})
	if cmd != nil {
		t.Error("second keypress should not produce a command")
	}
}

func TestElapsedCapped(t *testing.T) {
	w, _ := newTestWelcome(t)
	sendTicks(w, 45)
	if w.elapsed != totalDur {
		t.Errorf("expected elapsed capped at %v, got %v", totalDur, w.elapsed)
	}
}

func TestRenderBanner(t *testing.T) {
	if got := RenderBanner(40); !strings.Contains(got, bannerCompact) {
		t.Errorf("narrow banner should be compact, got %q", got)
	}
	wide := RenderBanner(120)
	if strings.Contains(wide, bannerCompact) {
		t.Error("wide banner should use block letters")
	}
	if lines := strings.Count(bannerArt(bannerWord), "\n") + 1; lines != 6 {
		t.Errorf("banner has %d rows, want 6", lines)
	}
}
