package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/mindcheck/internal/llm"
)

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// batchOutput is the raw LLM response before validation.
type batchOutput struct {
	Questions []struct {
		Question string   `json:"question"`
		Options  []string `json:"options"`
	} `json:"questions"`
}

// Generate produces a batch of questions for req.Topic.
func (g *LLMGenerator) Generate(ctx context.Context, req Request) ([]Question, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, fmt.Errorf("generate questions: empty topic")
	}
	if req.Count < 1 {
		return nil, fmt.Errorf("generate questions: count must be positive, got %d", req.Count)
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionGen)

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(req, g.config)},
		},
		Schema:      BatchSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw batchOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, &llm.ErrInvalidResponse{
			Content: resp.Content,
			Err:     fmt.Errorf("parse question batch: %w", err),
		}
	}
	if len(raw.Questions) == 0 {
		return nil, &llm.ErrInvalidResponse{
			Content: resp.Content,
			Err:     fmt.Errorf("question batch is empty"),
		}
	}

	out := make([]Question, 0, len(raw.Questions))
	for i, r := range raw.Questions {
		q := Question{
			Text:    strings.TrimSpace(r.Question),
			Options: make([]string, len(r.Options)),
		}
		for j, o := range r.Options {
			q.Options[j] = strings.TrimSpace(o)
		}

		for _, v := range g.config.Validators {
			if verr := v.Validate(&q, req); verr != nil {
				verr.Index = i
				return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: verr}
			}
		}
		out = append(out, q)
	}

	return out, nil
}
