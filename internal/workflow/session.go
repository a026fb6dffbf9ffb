package workflow

import (
	"sort"

	"github.com/abhisek/mindcheck/internal/analysis"
	"github.com/abhisek/mindcheck/internal/questions"
)

// Stage is a discrete step of the test-taking flow.
type Stage string

const (
	StageWelcome          Stage = "welcome"
	StageTopicSelection   Stage = "topicSelection"
	StageQuestionnaire    Stage = "questionnaire"
	StageExitConfirmation Stage = "exitConfirmation"
	StageResults          Stage = "results"
)

// Failure is a general error shown as a full-screen takeover.
type Failure struct {
	Kind    Kind
	Message string
}

// Session is the state of one test-taking flow. Values returned by
// Controller.Session are copies and safe to read without locking.
type Session struct {
	Stage        Stage
	Topic        string
	DesiredCount int

	// Questions is replaced wholesale on each generation, never edited.
	Questions []questions.Question

	// Answers maps a question index to the chosen option text.
	Answers map[int]string

	Analysis  *analysis.Result
	Stability analysis.Stability

	// StabilityUnavailable is set when the stability call failed and the
	// results omit that section.
	StabilityUnavailable bool

	// Unanswered flags question indices the user skipped on submit.
	Unanswered map[int]bool

	ValidationError string
	Busy            bool
	Failure         *Failure

	// LastExport is the path of the most recent successful export.
	LastExport string
}

func newSession(stage Stage, defaultCount int) Session {
	return Session{Stage: stage, DesiredCount: defaultCount}
}

// Clone returns a deep copy of s.
func (s Session) Clone() Session {
	out := s

	if s.Questions != nil {
		out.Questions = make([]questions.Question, len(s.Questions))
		for i, q := range s.Questions {
			out.Questions[i] = questions.Question{
				Text:    q.Text,
				Options: append([]string(nil), q.Options...),
			}
		}
	}
	if s.Answers != nil {
		out.Answers = make(map[int]string, len(s.Answers))
		for k, v := range s.Answers {
			out.Answers[k] = v
		}
	}
	if s.Unanswered != nil {
		out.Unanswered = make(map[int]bool, len(s.Unanswered))
		for k, v := range s.Unanswered {
			out.Unanswered[k] = v
		}
	}
	if s.Analysis != nil {
		a := *s.Analysis
		out.Analysis = &a
	}
	if s.Failure != nil {
		f := *s.Failure
		out.Failure = &f
	}
	out.Stability = s.Stability.Clone()
	return out
}

// Answer returns the option chosen for question i.
func (s Session) Answer(i int) (string, bool) {
	a, ok := s.Answers[i]
	return a, ok
}

// AnsweredCount returns how many questions have an answer.
func (s Session) AnsweredCount() int {
	return len(s.Answers)
}

// UnansweredIndices returns the flagged indices in ascending order.
func (s Session) UnansweredIndices() []int {
	out := make([]int, 0, len(s.Unanswered))
	for i := range s.Unanswered {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// missingAnswers returns indices in [0, len(Questions)) with no answer.
func (s Session) missingAnswers() []int {
	var missing []int
	for i := range s.Questions {
		if _, ok := s.Answers[i]; !ok {
			missing = append(missing, i)
		}
	}
	return missing
}

// pairs builds the (question, answer) list sent for analysis.
func (s Session) pairs() []analysis.Answer {
	out := make([]analysis.Answer, len(s.Questions))
	for i, q := range s.Questions {
		out[i] = analysis.Answer{Question: q.Text, Answer: s.Answers[i]}
	}
	return out
}

func (s Session) questionTexts() []string {
	out := make([]string, len(s.Questions))
	for i, q := range s.Questions {
		out[i] = q.Text
	}
	return out
}
