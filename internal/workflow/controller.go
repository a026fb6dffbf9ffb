package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/mindcheck/internal/analysis"
	"github.com/abhisek/mindcheck/internal/export"
	"github.com/abhisek/mindcheck/internal/llm"
	"github.com/abhisek/mindcheck/internal/questions"
	"github.com/abhisek/mindcheck/internal/store"
	"go.uber.org/zap"
)

// Exporter renders results to a document and returns its path.
type Exporter interface {
	Export(res export.Results) (string, error)
}

// Timeouts bounds each kind of external call. Zero means no deadline.
type Timeouts struct {
	Classify  time.Duration
	Generate  time.Duration
	Analyze   time.Duration
	Stability time.Duration
	Store     time.Duration
}

// Config holds the controller's static settings.
type Config struct {
	Namespace    string
	UserID       string
	Counts       []int // allowed question counts, e.g. {5, 15}
	DefaultCount int
	Timeouts     Timeouts
}

// DefaultConfig returns the standard counts and timeouts.
func DefaultConfig() Config {
	return Config{
		Namespace:    "mindcheck",
		Counts:       []int{5, 15},
		DefaultCount: 5,
		Timeouts: Timeouts{
			Classify:  20 * time.Second,
			Generate:  60 * time.Second,
			Analyze:   90 * time.Second,
			Stability: 30 * time.Second,
			Store:     10 * time.Second,
		},
	}
}

// Deps are the controller's collaborators. Exporter and Logger are optional.
type Deps struct {
	Generator questions.Generator
	Analysis  analysis.Service
	Asked     store.AskedRepo
	Exporter  Exporter
	Logger    *zap.Logger
}

// Controller owns one Session and sequences every transition on it.
// It is safe for concurrent use; external calls run without holding the
// lock so Session can be read while they are outstanding.
type Controller struct {
	cfg      Config
	gen      questions.Generator
	svc      analysis.Service
	asked    store.AskedRepo
	exporter Exporter
	logger   *zap.Logger

	mu sync.Mutex
	s  Session
}

// New creates a controller with a fresh Session at the welcome stage.
func New(cfg Config, deps Deps) *Controller {
	if len(cfg.Counts) == 0 {
		cfg.Counts = DefaultConfig().Counts
	}
	if cfg.DefaultCount == 0 {
		cfg.DefaultCount = cfg.Counts[0]
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		cfg:      cfg,
		gen:      deps.Generator,
		svc:      deps.Analysis,
		asked:    deps.Asked,
		exporter: deps.Exporter,
		logger:   logger.Named("workflow"),
		s:        newSession(StageWelcome, cfg.DefaultCount),
	}
}

// Session returns a snapshot of the current state.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.Clone()
}

// Counts returns the allowed question counts.
func (c *Controller) Counts() []int {
	return append([]int(nil), c.cfg.Counts...)
}

// guard checks busy and stage. Callers hold c.mu.
func (c *Controller) guard(action string, allowed ...Stage) error {
	if c.s.Busy {
		return ErrBusy
	}
	for _, st := range allowed {
		if c.s.Stage == st {
			return nil
		}
	}
	return &StageError{Action: action, Stage: c.s.Stage}
}

// fail records err as a general failure and clears Busy. Callers hold c.mu.
func (c *Controller) fail(action string, err error) {
	c.s.Busy = false
	c.s.Failure = &Failure{Kind: KindOf(err), Message: err.Error()}
	c.logger.Error(action+" failed",
		zap.String("stage", string(c.s.Stage)),
		zap.String("kind", string(c.s.Failure.Kind)),
		zap.Error(err))
}

func (c *Controller) reset(stage Stage) {
	c.s = newSession(stage, c.cfg.DefaultCount)
}

func (c *Controller) validCount(n int) bool {
	for _, v := range c.cfg.Counts {
		if v == n {
			return true
		}
	}
	return false
}

func (c *Controller) askedKey(topic string) store.AskedKey {
	return store.AskedKey{Namespace: c.cfg.Namespace, UserID: c.cfg.UserID, Topic: topic}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// timedOut reports an expired action deadline as an llm.ErrTimeout carrying
// the configured limit. Call it before cancelling ctx.
func timedOut(ctx context.Context, d time.Duration, err error) error {
	var te *llm.ErrTimeout
	if err == nil || errors.As(err, &te) || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return err
	}
	return &llm.ErrTimeout{After: d, Err: err}
}

// Begin moves from the welcome screen to topic selection.
func (c *Controller) Begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard("begin", StageWelcome); err != nil {
		return err
	}
	c.s.Stage = StageTopicSelection
	return nil
}

// SelectTopic sets the topic and count, then generates questions.
func (c *Controller) SelectTopic(ctx context.Context, topic string, count int) error {
	topic = strings.TrimSpace(topic)

	c.mu.Lock()
	if err := c.guard("select a topic", StageWelcome, StageTopicSelection); err != nil {
		c.mu.Unlock()
		return err
	}
	if !c.validCount(count) {
		c.mu.Unlock()
		return fmt.Errorf("unsupported question count %d (allowed: %v)", count, c.cfg.Counts)
	}
	if topic == "" {
		verr := &ValidationError{Message: "Please choose a topic."}
		c.s.ValidationError = verr.Message
		c.mu.Unlock()
		return verr
	}
	c.s.Busy = true
	c.s.Failure = nil
	c.s.ValidationError = ""
	c.mu.Unlock()

	return c.generateQuestions(ctx, topic, count)
}

// ValidateCustomTopic checks a free-text topic with the classifier and,
// if it is on-domain, continues as SelectTopic.
func (c *Controller) ValidateCustomTopic(ctx context.Context, raw string, count int) error {
	topic := strings.TrimSpace(raw)

	c.mu.Lock()
	if err := c.guard("validate a custom topic", StageTopicSelection); err != nil {
		c.mu.Unlock()
		return err
	}
	if !c.validCount(count) {
		c.mu.Unlock()
		return fmt.Errorf("unsupported question count %d (allowed: %v)", count, c.cfg.Counts)
	}
	if topic == "" {
		verr := &ValidationError{Message: "Please enter a topic."}
		c.s.ValidationError = verr.Message
		c.mu.Unlock()
		return verr
	}
	c.s.Busy = true
	c.s.Failure = nil
	c.s.ValidationError = ""
	c.mu.Unlock()

	cctx, cancel := withTimeout(ctx, c.cfg.Timeouts.Classify)
	cls, err := c.svc.Classify(cctx, topic)
	err = timedOut(cctx, c.cfg.Timeouts.Classify, err)
	cancel()

	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.fail("classify topic", err)
		return err
	}

	if !cls.OnDomain {
		c.mu.Lock()
		defer c.mu.Unlock()
		msg := fmt.Sprintf("%q doesn't look like a wellbeing topic.", topic)
		if cls.Reason != "" {
			msg += " " + cls.Reason
		}
		c.s.Busy = false
		c.s.ValidationError = msg
		c.logger.Info("custom topic rejected", zap.String("topic", topic), zap.String("reason", cls.Reason))
		return &ValidationError{Message: msg}
	}

	return c.generateQuestions(ctx, topic, count)
}

// generateQuestions runs with Busy already set and finishes the transition.
// Topic and count are committed to the session only on success.
func (c *Controller) generateQuestions(ctx context.Context, topic string, count int) error {
	qs, err := c.fetchQuestions(ctx, topic, count)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.fail("generate questions", err)
		return err
	}

	c.s.Topic = topic
	c.s.DesiredCount = count
	c.s.Questions = qs
	c.s.Answers = make(map[int]string, len(qs))
	c.s.Unanswered = nil
	c.s.ValidationError = ""
	c.s.Analysis = nil
	c.s.Stability = nil
	c.s.StabilityUnavailable = false
	c.s.Stage = StageQuestionnaire
	c.s.Busy = false

	c.logger.Info("questionnaire ready", zap.String("topic", topic), zap.Int("questions", len(qs)))
	return nil
}

func (c *Controller) fetchQuestions(ctx context.Context, topic string, count int) ([]questions.Question, error) {
	key := c.askedKey(topic)

	sctx, cancel := withTimeout(ctx, c.cfg.Timeouts.Store)
	asked, err := c.asked.Asked(sctx, key)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("read asked questions: %w", err)
	}

	gctx, cancel := withTimeout(ctx, c.cfg.Timeouts.Generate)
	batch, err := c.gen.Generate(gctx, questions.Request{Topic: topic, Count: count, Asked: asked})
	err = timedOut(gctx, c.cfg.Timeouts.Generate, err)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	accepted, exhausted := selectQuestions(batch, asked, count)
	if exhausted {
		c.logger.Info("question pool exhausted, clearing asked record",
			zap.String("topic", topic), zap.Int("asked", len(asked)))

		sctx, cancel := withTimeout(ctx, c.cfg.Timeouts.Store)
		err := c.asked.ClearAsked(sctx, key)
		cancel()
		if err != nil {
			c.logger.Warn("failed to clear asked record", zap.String("topic", topic), zap.Error(err))
		}
	}
	return accepted, nil
}

// selectQuestions applies the repetition rules to a generated batch.
// Duplicate texts inside the batch are always dropped. Questions already
// asked are filtered out, except when too few fresh ones remain and the
// asked list was non-empty: then the pool counts as exhausted and the
// unfiltered batch is used. The result never exceeds want.
func selectQuestions(batch []questions.Question, asked []string, want int) (accepted []questions.Question, exhausted bool) {
	seen := make(map[string]bool, len(asked))
	for _, t := range asked {
		seen[t] = true
	}

	inBatch := make(map[string]bool, len(batch))
	var unique, fresh []questions.Question
	for _, q := range batch {
		if inBatch[q.Text] {
			continue
		}
		inBatch[q.Text] = true
		unique = append(unique, q)
		if !seen[q.Text] {
			fresh = append(fresh, q)
		}
	}

	switch {
	case len(fresh) < want && len(asked) > 0:
		accepted, exhausted = unique, true
	case len(fresh) == 0:
		accepted = unique
	default:
		accepted = fresh
	}

	if len(accepted) > want {
		accepted = accepted[:want]
	}
	return accepted, exhausted
}

// RecordAnswer stores option as the answer to question index.
func (c *Controller) RecordAnswer(index int, option string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard("record an answer", StageQuestionnaire); err != nil {
		return err
	}
	if index < 0 || index >= len(c.s.Questions) {
		return fmt.Errorf("question index %d out of range [0, %d)", index, len(c.s.Questions))
	}
	if !c.s.Questions[index].HasOption(option) {
		return fmt.Errorf("%q is not an option for question %d", option, index+1)
	}

	c.s.Answers[index] = option
	if c.s.Unanswered[index] {
		delete(c.s.Unanswered, index)
		if len(c.s.Unanswered) == 0 {
			c.s.Unanswered = nil
			c.s.ValidationError = ""
		}
	}
	return nil
}

// SubmitForAnalysis validates that every question is answered, then runs
// analysis, the stability assessment and the asked-record merge in order.
func (c *Controller) SubmitForAnalysis(ctx context.Context) error {
	c.mu.Lock()
	if err := c.guard("submit answers", StageQuestionnaire); err != nil {
		c.mu.Unlock()
		return err
	}

	if missing := c.s.missingAnswers(); len(missing) > 0 {
		c.s.Unanswered = make(map[int]bool, len(missing))
		for _, i := range missing {
			c.s.Unanswered[i] = true
		}
		msg := fmt.Sprintf("Please answer all questions before submitting (%d unanswered).", len(missing))
		c.s.ValidationError = msg
		c.mu.Unlock()
		return &ValidationError{Message: msg, Missing: missing}
	}

	c.s.Busy = true
	c.s.Unanswered = nil
	c.s.ValidationError = ""
	c.s.Failure = nil

	topic := c.s.Topic
	texts := c.s.questionTexts()
	req := analysis.Request{
		Topic:   topic,
		Answers: c.s.pairs(),
		Depth:   analysis.DepthFor(c.s.DesiredCount),
	}
	c.mu.Unlock()

	actx, cancel := withTimeout(ctx, c.cfg.Timeouts.Analyze)
	result, err := c.svc.Analyze(actx, req)
	err = timedOut(actx, c.cfg.Timeouts.Analyze, err)
	cancel()
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.fail("analyze answers", err)
		return err
	}

	sctx, cancel := withTimeout(ctx, c.cfg.Timeouts.Stability)
	stability, err := c.svc.Stability(sctx, req)
	err = timedOut(sctx, c.cfg.Timeouts.Stability, err)
	cancel()
	if err != nil {
		c.logger.Warn("stability assessment failed, continuing without it",
			zap.String("topic", topic), zap.Error(err))
		stability = nil
	}

	mctx, cancel := withTimeout(ctx, c.cfg.Timeouts.Store)
	if merr := c.asked.MergeAsked(mctx, c.askedKey(topic), texts); merr != nil {
		c.logger.Warn("failed to record asked questions", zap.String("topic", topic), zap.Error(merr))
	}
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.Analysis = result
	c.s.Stability = stability
	c.s.StabilityUnavailable = stability == nil
	c.s.Stage = StageResults
	c.s.Busy = false

	c.logger.Info("analysis complete",
		zap.String("topic", topic),
		zap.String("depth", string(req.Depth)),
		zap.Bool("stability", stability != nil))
	return nil
}

// RequestExit opens the exit confirmation from the questionnaire.
func (c *Controller) RequestExit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard("exit", StageQuestionnaire); err != nil {
		return err
	}
	c.s.Stage = StageExitConfirmation
	return nil
}

// CancelExit returns to the questionnaire with progress intact.
func (c *Controller) CancelExit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard("cancel exit", StageExitConfirmation); err != nil {
		return err
	}
	c.s.Stage = StageQuestionnaire
	return nil
}

// ConfirmExit discards the test and returns to topic selection.
func (c *Controller) ConfirmExit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard("confirm exit", StageExitConfirmation); err != nil {
		return err
	}
	c.logger.Info("test abandoned", zap.String("topic", c.s.Topic), zap.Int("answered", len(c.s.Answers)))
	c.reset(StageTopicSelection)
	return nil
}

// StartNewTest clears the results and returns to the welcome screen.
func (c *Controller) StartNewTest() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard("start a new test", StageResults); err != nil {
		return err
	}
	c.reset(StageWelcome)
	return nil
}

// Reload resets the session to the welcome screen from any stage.
func (c *Controller) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.s.Busy {
		return ErrBusy
	}
	c.reset(StageWelcome)
	return nil
}

// DismissFailure clears the current general error.
func (c *Controller) DismissFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.Failure = nil
}

// ExportResults renders the results to a document and returns its path.
// Stage and results are left unchanged whether or not it succeeds.
func (c *Controller) ExportResults(ctx context.Context) (string, error) {
	c.mu.Lock()
	if err := c.guard("export results", StageResults); err != nil {
		c.mu.Unlock()
		return "", err
	}
	if c.exporter == nil {
		err := fmt.Errorf("export is not available")
		c.fail("export results", err)
		c.mu.Unlock()
		return "", err
	}
	if c.s.Analysis == nil || c.s.Analysis.Text == "" {
		err := fmt.Errorf("there are no results to export")
		c.fail("export results", err)
		c.mu.Unlock()
		return "", err
	}

	res := export.Results{
		Topic:       c.s.Topic,
		Items:       make([]export.Item, len(c.s.Questions)),
		Analysis:    c.s.Analysis.Text,
		Advice:      c.s.Analysis.Advice,
		Stability:   c.s.Stability.Clone(),
		GeneratedAt: time.Now(),
	}
	for i, q := range c.s.Questions {
		res.Items[i] = export.Item{Question: q.Text, Answer: c.s.Answers[i]}
	}
	c.s.Busy = true
	c.s.Failure = nil
	c.mu.Unlock()

	var (
		path string
		err  = ctx.Err()
	)
	if err == nil {
		path, err = c.exporter.Export(res)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.fail("export results", err)
		return "", err
	}
	c.s.Busy = false
	c.s.LastExport = path
	c.logger.Info("results exported", zap.String("path", path))
	return path, nil
}
