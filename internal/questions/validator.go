package questions

import (
	"fmt"
	"strings"
)

// OptionCount is the number of choices every question carries.
const OptionCount = 4

// Validator checks a generated question.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier used in error messages, e.g. "structural".
	Name() string

	// Validate returns nil if q passes.
	Validate(q *Question, req Request) *ValidationError
}

// ValidationError describes why a question failed validation.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Index     int    // Position of the question in the batch
	Message   string // Human-readable description of the failure
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: question %d: %s", e.Validator, e.Index+1, e.Message)
}

// StructuralValidator checks that required fields are present and within
// length limits.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question, _ Request) *ValidationError {
	switch {
	case q.Text == "":
		return &ValidationError{Validator: v.Name(), Message: "question text is empty"}
	case len(q.Text) > 500:
		return &ValidationError{Validator: v.Name(), Message: "question text exceeds 500 characters"}
	case len(q.Options) != OptionCount:
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("expected %d options, got %d", OptionCount, len(q.Options)),
		}
	}
	for i, o := range q.Options {
		if o == "" {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("option %d is empty", i+1)}
		}
		if len(o) > 200 {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("option %d exceeds 200 characters", i+1)}
		}
	}
	return nil
}

// DistinctOptionsValidator rejects questions whose options repeat,
// ignoring case and surrounding whitespace.
type DistinctOptionsValidator struct{}

func (v *DistinctOptionsValidator) Name() string { return "distinct-options" }

func (v *DistinctOptionsValidator) Validate(q *Question, _ Request) *ValidationError {
	seen := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		k := strings.ToLower(strings.TrimSpace(o))
		if seen[k] {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("option %q repeats", o)}
		}
		seen[k] = true
	}
	return nil
}
