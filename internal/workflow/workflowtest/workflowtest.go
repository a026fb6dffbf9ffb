// Package workflowtest builds workflow controllers backed by a mock LLM
// provider and an in-memory store, for screen and command tests.
package workflowtest

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mindcheck/internal/analysis"
	"github.com/abhisek/mindcheck/internal/export"
	"github.com/abhisek/mindcheck/internal/llm"
	"github.com/abhisek/mindcheck/internal/questions"
	"github.com/abhisek/mindcheck/internal/store"
	"github.com/abhisek/mindcheck/internal/workflow"
)

// Options is the fixed answer set used in generated batches.
var Options = []string{"Never", "Sometimes", "Often", "Almost always"}

// Env is a controller wired to a mock provider.
type Env struct {
	Controller *workflow.Controller
	Provider   *llm.MockProvider
	Store      *store.Store
	ExportDir  string
}

// New returns an Env. Responses are consumed by the controller's LLM calls
// in order: classify (custom topics only), generate, analyze, stability.
func New(t testing.TB, responses ...llm.MockResponse) *Env {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open(fmt.Sprintf("file:wt_%s?mode=memory&cache=shared", name), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	mock := llm.NewMockProvider(responses...)
	dir := t.TempDir()

	cfg := workflow.DefaultConfig()
	cfg.UserID = "test-user"
	ctrl := workflow.New(cfg, workflow.Deps{
		Generator: questions.New(mock, questions.DefaultConfig()),
		Analysis:  analysis.New(mock, analysis.DefaultConfig()),
		Asked:     st.AskedRepo(),
		Exporter:  export.NewPDFExporter(dir, nil),
	})

	return &Env{Controller: ctrl, Provider: mock, Store: st, ExportDir: dir}
}

// Batch returns a generator response with one question per text.
func Batch(texts ...string) llm.MockResponse {
	type item struct {
		Question string   `json:"question"`
		Options  []string `json:"options"`
	}
	var out struct {
		Questions []item `json:"questions"`
	}
	for _, t := range texts {
		out.Questions = append(out.Questions, item{Question: t, Options: Options})
	}
	return jsonResponse(out)
}

// NumberedBatch returns a batch of n questions "Question 1".."Question n".
func NumberedBatch(n int) llm.MockResponse {
	texts := make([]string, n)
	for i := range texts {
		texts[i] = fmt.Sprintf("Question %d", i+1)
	}
	return Batch(texts...)
}

// Classify returns a classifier response.
func Classify(onDomain bool, reason string) llm.MockResponse {
	return jsonResponse(map[string]any{"on_domain": onDomain, "reason": reason})
}

// Analysis returns an analyze response.
func Analysis(text, advice string) llm.MockResponse {
	return jsonResponse(map[string]string{"analysis": text, "advice": advice})
}

// Stability returns a stability response with the same level everywhere.
func Stability(level, emoji string) llm.MockResponse {
	lv := map[string]string{"level": level, "emoji": emoji}
	return jsonResponse(map[string]any{"emotional": lv, "mental": lv, "physical": lv})
}

// Failure returns a response that fails with err.
func Failure(err error) llm.MockResponse {
	return llm.MockResponse{Err: err}
}

func jsonResponse(v any) llm.MockResponse {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return llm.MockResponse{Content: b}
}

// AnswerAll records the first option for every question.
func AnswerAll(t testing.TB, c *workflow.Controller) {
	t.Helper()
	for i, q := range c.Session().Questions {
		if err := c.RecordAnswer(i, q.Options[0]); err != nil {
			t.Fatalf("record answer %d: %v", i, err)
		}
	}
}

// Drain runs cmd synchronously and returns the messages it produced,
// expanding batches. Commands are run once; follow-up commands returned
// by Update are not chased.
func Drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, Drain(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}
