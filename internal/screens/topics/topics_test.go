package topics

import (
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mindcheck/internal/llm"
	"github.com/abhisek/mindcheck/internal/screen"
	"github.com/abhisek/mindcheck/internal/workflow"
	"github.com/abhisek/mindcheck/internal/workflow/workflowtest"
)

func keyPress(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

// press sends a key and follows up the resulting messages one level deep,
// returning the workflow action result if one was produced.
func press(t *testing.T, s *TopicsScreen, k string) *screen.ActionDoneMsg {
	t.Helper()
	_, cmd := s.Update(keyPress(k))
	for _, msg := range workflowtest.Drain(cmd) {
		if done, ok := msg.(screen.ActionDoneMsg); ok {
			return &done
		}
		if _, ok := msg.(pickMsg); ok {
			_, next := s.Update(msg)
			for _, m := range workflowtest.Drain(next) {
				if done, ok := m.(screen.ActionDoneMsg); ok {
					return &done
				}
			}
		}
	}
	return nil
}

func typeText(s *TopicsScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func newScreen(t *testing.T, responses ...llm.MockResponse) (*TopicsScreen, *workflowtest.Env) {
	env := workflowtest.New(t, responses...)
	require.NoError(t, env.Controller.Begin())
	return New(env.Controller), env
}

func TestSelectPreset(t *testing.T) {
	s, env := newScreen(t, workflowtest.NumberedBatch(5))

	done := press(t, s, "enter")
	require.NotNil(t, done)
	require.NoError(t, done.Err)

	sess := env.Controller.Session()
	assert.Equal(t, workflow.StageQuestionnaire, sess.Stage)
	assert.Equal(t, "Anxiety Check", sess.Topic)
	assert.Len(t, sess.Questions, 5)
}

func TestCountToggle(t *testing.T) {
	s, env := newScreen(t, workflowtest.NumberedBatch(15))
	assert.Equal(t, "5 questions", s.Status())

	press(t, s, "tab")
	assert.Equal(t, "15 questions", s.Status())

	done := press(t, s, "2")
	require.NotNil(t, done)
	require.NoError(t, done.Err)

	sess := env.Controller.Session()
	assert.Equal(t, "Stress Level", sess.Topic)
	assert.Equal(t, 15, sess.DesiredCount)
	assert.Len(t, sess.Questions, 15)

	press(t, s, "tab")
	assert.Equal(t, "5 questions", s.Status(), "toggle wraps around")
}

func TestCustomTopicOffDomain(t *testing.T) {
	s, env := newScreen(t, workflowtest.Classify(false, "That is about food."))

	press(t, s, "9")
	require.True(t, s.custom)

	typeText(s, "pizza")
	done := press(t, s, "enter")
	require.NotNil(t, done)

	var verr *workflow.ValidationError
	assert.True(t, errors.As(done.Err, &verr))
	assert.Equal(t, workflow.StageTopicSelection, env.Controller.Session().Stage)

	view := s.View(100, 30)
	assert.Contains(t, view, "doesn't look like a wellbeing topic")
	assert.Contains(t, view, "That is about food.")
}

func TestCustomTopicOnDomain(t *testing.T) {
	s, env := newScreen(t,
		workflowtest.Classify(true, ""),
		workflowtest.NumberedBatch(5),
	)

	press(t, s, "9")
	typeText(s, "Loneliness")
	done := press(t, s, "enter")
	require.NotNil(t, done)
	require.NoError(t, done.Err)

	sess := env.Controller.Session()
	assert.Equal(t, workflow.StageQuestionnaire, sess.Stage)
	assert.Equal(t, "Loneliness", sess.Topic)
	assert.Equal(t, 2, env.Provider.CallCount())
}

func TestCustomTopicEmpty(t *testing.T) {
	s, env := newScreen(t)

	press(t, s, "9")
	done := press(t, s, "enter")
	require.NotNil(t, done)
	assert.Error(t, done.Err)
	assert.Equal(t, 0, env.Provider.CallCount(), "no network call for empty input")
	assert.Contains(t, s.View(100, 30), "Please enter a topic.")
}

func TestCustomEscReturnsToList(t *testing.T) {
	s, _ := newScreen(t)

	press(t, s, "9")
	require.True(t, s.custom)
	press(t, s, "esc")
	assert.False(t, s.custom)
	assert.Contains(t, s.View(100, 30), "Anxiety Check")
}

func TestGeneratorFailureSetsFailure(t *testing.T) {
	s, env := newScreen(t, workflowtest.Failure(&llm.ErrTimeout{Err: errors.New("slow")}))

	done := press(t, s, "enter")
	require.NotNil(t, done)
	assert.Error(t, done.Err)

	sess := env.Controller.Session()
	require.NotNil(t, sess.Failure)
	assert.Equal(t, workflow.KindTimeout, sess.Failure.Kind)
	assert.False(t, sess.Busy)
	assert.Equal(t, workflow.StageTopicSelection, sess.Stage)
}

func TestViewListsPresets(t *testing.T) {
	s, _ := newScreen(t)
	view := s.View(100, 30)
	for _, p := range Presets {
		assert.True(t, strings.Contains(view, p), "missing preset %q", p)
	}
}
