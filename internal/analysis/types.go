package analysis

import "context"

// Depth controls how verbose the analysis is.
type Depth string

const (
	DepthBrief Depth = "brief"
	DepthDeep  Depth = "deep"
)

// DepthFor returns the depth used for a questionnaire of n questions.
// Short runs get a brief analysis; anything longer gets a deep one.
func DepthFor(n int) Depth {
	if n <= 5 {
		return DepthBrief
	}
	return DepthDeep
}

// Answer pairs a question with the option the user picked.
type Answer struct {
	Question string
	Answer   string
}

// Request is the input for Analyze and Stability.
type Request struct {
	Topic   string
	Answers []Answer
	Depth   Depth
}

// Classification is the result of checking a free-text topic.
type Classification struct {
	OnDomain bool
	Reason   string
}

// Result is the textual analysis shown on the results screen.
type Result struct {
	Text   string
	Advice string
}

// Category is one of the three stability dimensions.
type Category string

const (
	CategoryEmotional Category = "emotional"
	CategoryMental    Category = "mental"
	CategoryPhysical  Category = "physical"
)

// Categories lists the stability categories in display order.
var Categories = []Category{CategoryEmotional, CategoryMental, CategoryPhysical}

// Label returns the display name, e.g. "Emotional".
func (c Category) Label() string {
	switch c {
	case CategoryEmotional:
		return "Emotional"
	case CategoryMental:
		return "Mental"
	case CategoryPhysical:
		return "Physical"
	}
	return string(c)
}

// Level is a short label plus an icon for one category.
type Level struct {
	Level string
	Emoji string
}

// Stability maps each category to its assessment. A valid Stability holds
// exactly the three Categories.
type Stability map[Category]Level

// Clone returns an independent copy.
func (s Stability) Clone() Stability {
	if s == nil {
		return nil
	}
	out := make(Stability, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Service is the analysis collaborator used by the workflow.
type Service interface {
	// Classify reports whether a free-text topic is about mental or
	// emotional wellbeing.
	Classify(ctx context.Context, raw string) (*Classification, error)

	// Analyze returns an analysis and advice for the answered questionnaire.
	Analyze(ctx context.Context, req Request) (*Result, error)

	// Stability returns the three-category stability assessment.
	Stability(ctx context.Context, req Request) (Stability, error)
}
