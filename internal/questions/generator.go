package questions

import "context"

// Generator produces multiple-choice questions for a topic.
type Generator interface {
	// Generate returns up to req.Count validated questions.
	// A response that fails the shape contract yields *llm.ErrInvalidResponse.
	Generate(ctx context.Context, req Request) ([]Question, error)
}
