package llm

import "context"

// Purposes label each request in the event log.
const (
	PurposeQuestionGen = "question-gen"
	PurposeClassify    = "topic-classify"
	PurposeAnalysis    = "analysis"
	PurposeStability   = "stability"
)

type purposeKey struct{}

// WithPurpose tags ctx with the reason for the request.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the tag set by WithPurpose, or "unknown" when a
// request was made without one.
func PurposeFrom(ctx context.Context) string {
	if p, _ := ctx.Value(purposeKey{}).(string); p != "" {
		return p
	}
	return "unknown"
}
