package questions

// Question is one multiple-choice item shown to the user.
// Questions are immutable once generated.
type Question struct {
	// Text is the prompt, e.g. "How often do you feel rested when you wake up?"
	Text string

	// Options holds exactly 4 answer choices in display order.
	Options []string
}

// HasOption reports whether opt is one of the question's choices.
func (q Question) HasOption(opt string) bool {
	for _, o := range q.Options {
		if o == opt {
			return true
		}
	}
	return false
}

// Request holds everything needed to generate one batch.
type Request struct {
	// Topic is the user-facing topic, e.g. "Anxiety Check".
	Topic string

	// Count is how many questions to ask for.
	Count int

	// Asked lists question texts the user has already seen for this topic.
	// The prompt asks the model to avoid them; callers still filter.
	Asked []string
}
