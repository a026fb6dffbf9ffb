package workflow

import (
	"context"
	"strings"
	"sync"

	"github.com/abhisek/mindcheck/internal/analysis"
	"github.com/abhisek/mindcheck/internal/export"
	"github.com/abhisek/mindcheck/internal/questions"
	"github.com/abhisek/mindcheck/internal/store"
)

var testOptions = []string{"Never", "Sometimes", "Often", "Always"}

func q(text string) questions.Question {
	return questions.Question{Text: text, Options: append([]string(nil), testOptions...)}
}

func qs(texts ...string) []questions.Question {
	out := make([]questions.Question, len(texts))
	for i, t := range texts {
		out[i] = q(t)
	}
	return out
}

// fakeGenerator returns batches in order. If gate is non-nil, Generate
// waits for it (or for ctx) before answering.
type fakeGenerator struct {
	mu      sync.Mutex
	batches [][]questions.Question
	err     error
	gate    chan struct{}
	started chan struct{}
	calls   []questions.Request
}

func (f *fakeGenerator) Generate(ctx context.Context, req questions.Request) ([]questions.Question, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	gate, started := f.gate, f.started
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if len(f.batches) == 0 {
		return nil, nil
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b, nil
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeAnalysis struct {
	mu sync.Mutex

	classification *analysis.Classification
	classifyErr    error
	result         *analysis.Result
	analyzeErr     error
	stability      analysis.Stability
	stabilityErr   error

	log      []string
	requests []analysis.Request
}

func (f *fakeAnalysis) record(call string, req analysis.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append(f.log, call)
	f.requests = append(f.requests, req)
}

func (f *fakeAnalysis) Classify(_ context.Context, raw string) (*analysis.Classification, error) {
	f.record("classify:"+raw, analysis.Request{})
	if f.classifyErr != nil {
		return nil, f.classifyErr
	}
	return f.classification, nil
}

func (f *fakeAnalysis) Analyze(_ context.Context, req analysis.Request) (*analysis.Result, error) {
	f.record("analyze", req)
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	return f.result, nil
}

func (f *fakeAnalysis) Stability(_ context.Context, req analysis.Request) (analysis.Stability, error) {
	f.record("stability", req)
	if f.stabilityErr != nil {
		return nil, f.stabilityErr
	}
	return f.stability, nil
}

func (f *fakeAnalysis) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.log...)
}

// fakeAsked is an in-memory store.AskedRepo keyed by topic slug.
type fakeAsked struct {
	mu       sync.Mutex
	records  map[string][]string
	readErr  error
	mergeErr error
	clears   int
}

func newFakeAsked() *fakeAsked {
	return &fakeAsked{records: map[string][]string{}}
}

func (f *fakeAsked) k(key store.AskedKey) string {
	return key.Namespace + "|" + key.UserID + "|" + store.Slug(key.Topic)
}

func (f *fakeAsked) seed(topic string, texts ...string) {
	f.records[f.k(store.AskedKey{Namespace: "mindcheck", UserID: "u1", Topic: topic})] = texts
}

func (f *fakeAsked) get(topic string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[f.k(store.AskedKey{Namespace: "mindcheck", UserID: "u1", Topic: topic})]
}

func (f *fakeAsked) Asked(_ context.Context, key store.AskedKey) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	return append([]string{}, f.records[f.k(key)]...), nil
}

func (f *fakeAsked) MergeAsked(_ context.Context, key store.AskedKey, texts []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mergeErr != nil {
		return f.mergeErr
	}
	cur := f.records[f.k(key)]
	have := map[string]bool{}
	for _, t := range cur {
		have[t] = true
	}
	for _, t := range texts {
		if !have[t] && strings.TrimSpace(t) != "" {
			cur = append(cur, t)
			have[t] = true
		}
	}
	f.records[f.k(key)] = cur
	return nil
}

func (f *fakeAsked) ClearAsked(_ context.Context, key store.AskedKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	delete(f.records, f.k(key))
	return nil
}

func (f *fakeAsked) AskedTopics(context.Context, string, string) ([]store.AskedTopic, error) {
	return nil, nil
}

type fakeExporter struct {
	got  *export.Results
	path string
	err  error
}

func (f *fakeExporter) Export(res export.Results) (string, error) {
	f.got = &res
	if f.err != nil {
		return "", f.err
	}
	return f.path, nil
}

type fixture struct {
	c        *Controller
	gen      *fakeGenerator
	svc      *fakeAnalysis
	asked    *fakeAsked
	exporter *fakeExporter
}

func newFixture(counts ...int) *fixture {
	cfg := DefaultConfig()
	cfg.UserID = "u1"
	if len(counts) > 0 {
		cfg.Counts = counts
	}
	f := &fixture{
		gen: &fakeGenerator{},
		svc: &fakeAnalysis{
			classification: &analysis.Classification{OnDomain: true},
			result:         &analysis.Result{Text: "You seem well rested.", Advice: "Keep your routine."},
			stability: analysis.Stability{
				analysis.CategoryEmotional: {Level: "Stable", Emoji: "🙂"},
				analysis.CategoryMental:    {Level: "Stable", Emoji: "🙂"},
				analysis.CategoryPhysical:  {Level: "Tired", Emoji: "😴"},
			},
		},
		asked:    newFakeAsked(),
		exporter: &fakeExporter{path: "/tmp/out.pdf"},
	}
	f.c = New(cfg, Deps{
		Generator: f.gen,
		Analysis:  f.svc,
		Asked:     f.asked,
		Exporter:  f.exporter,
	})
	return f
}

// toQuestionnaire drives the fixture into the questionnaire with the given
// questions for topic.
func (f *fixture) toQuestionnaire(topic string, texts ...string) error {
	f.gen.batches = append(f.gen.batches, qs(texts...))
	if err := f.c.Begin(); err != nil {
		return err
	}
	return f.c.SelectTopic(context.Background(), topic, len(texts))
}

func (f *fixture) answerAll() error {
	s := f.c.Session()
	for i := range s.Questions {
		if err := f.c.RecordAnswer(i, testOptions[i%len(testOptions)]); err != nil {
			return err
		}
	}
	return nil
}
