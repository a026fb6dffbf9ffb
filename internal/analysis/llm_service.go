package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/mindcheck/internal/llm"
)

// Config holds configuration for the LLM analysis service.
type Config struct {
	ClassifyMaxTokens  int
	AnalysisMaxTokens  int
	StabilityMaxTokens int
	Temperature        float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ClassifyMaxTokens:  256,
		AnalysisMaxTokens:  2048,
		StabilityMaxTokens: 256,
		Temperature:        0.4,
	}
}

// LLMService implements Service on top of an llm.Provider.
type LLMService struct {
	provider llm.Provider
	cfg      Config
}

// New creates an LLM-backed analysis service.
func New(provider llm.Provider, cfg Config) *LLMService {
	return &LLMService{provider: provider, cfg: cfg}
}

type classifyOutput struct {
	OnDomain bool   `json:"on_domain"`
	Reason   string `json:"reason"`
}

type analysisOutput struct {
	Analysis string `json:"analysis"`
	Advice   string `json:"advice"`
}

type levelOutput struct {
	Level string `json:"level"`
	Emoji string `json:"emoji"`
}

type stabilityOutput struct {
	Emotional *levelOutput `json:"emotional"`
	Mental    *levelOutput `json:"mental"`
	Physical  *levelOutput `json:"physical"`
}

// Classify asks the LLM whether raw is a wellbeing topic.
func (s *LLMService) Classify(ctx context.Context, raw string) (*Classification, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeClassify)

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: classifySystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: "Topic: " + strings.TrimSpace(raw)},
		},
		Schema:      ClassifySchema,
		MaxTokens:   s.cfg.ClassifyMaxTokens,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM classification failed: %w", err)
	}

	var out classifyOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("parse classification: %w", err)}
	}

	return &Classification{OnDomain: out.OnDomain, Reason: strings.TrimSpace(out.Reason)}, nil
}

// Analyze asks the LLM for an analysis of the answers and advice.
func (s *LLMService) Analyze(ctx context.Context, req Request) (*Result, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeAnalysis)

	if req.Depth == "" {
		req.Depth = DepthFor(len(req.Answers))
	}
	resp, err := s.generate(ctx, analysisSystemPrompt, AnalysisSchema, s.cfg.AnalysisMaxTokens, req)
	if err != nil {
		return nil, fmt.Errorf("LLM analysis failed: %w", err)
	}

	var out analysisOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("parse analysis: %w", err)}
	}

	res := &Result{Text: strings.TrimSpace(out.Analysis), Advice: strings.TrimSpace(out.Advice)}
	if res.Text == "" {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("analysis text is empty")}
	}
	return res, nil
}

// Stability asks the LLM for the three-category stability assessment.
func (s *LLMService) Stability(ctx context.Context, req Request) (Stability, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeStability)

	// Verbosity does not apply here.
	req.Depth = ""
	resp, err := s.generate(ctx, stabilitySystemPrompt, StabilitySchema, s.cfg.StabilityMaxTokens, req)
	if err != nil {
		return nil, fmt.Errorf("LLM stability assessment failed: %w", err)
	}

	var out stabilityOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("parse stability: %w", err)}
	}

	st := make(Stability, len(Categories))
	for cat, lv := range map[Category]*levelOutput{
		CategoryEmotional: out.Emotional,
		CategoryMental:    out.Mental,
		CategoryPhysical:  out.Physical,
	} {
		if lv == nil || strings.TrimSpace(lv.Level) == "" {
			return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("stability category %q is missing", cat)}
		}
		st[cat] = Level{Level: strings.TrimSpace(lv.Level), Emoji: strings.TrimSpace(lv.Emoji)}
	}
	return st, nil
}

func (s *LLMService) generate(ctx context.Context, system string, schema *llm.Schema, maxTokens int, req Request) (*llm.Response, error) {
	if len(req.Answers) == 0 {
		return nil, fmt.Errorf("no answers to analyze")
	}

	userMsg, err := buildAnswersMessage(req)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	return s.provider.Generate(ctx, llm.Request{
		System: system,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      schema,
		MaxTokens:   maxTokens,
		Temperature: s.cfg.Temperature,
	})
}
