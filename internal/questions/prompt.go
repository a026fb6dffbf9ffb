package questions

import (
	"fmt"
	"strings"
)

const systemPrompt = `You write short self-assessment questionnaires about mental and emotional wellbeing.

Rules:
- Generate exactly the requested number of multiple-choice questions about the given topic.
- Each question must be a single, neutral, non-judgemental sentence addressed to the user ("you").
- Each question has exactly 4 options. Options are short, mutually exclusive, and cover the range of likely answers (for example: "Never", "Sometimes", "Often", "Almost always").
- Never diagnose, never mention medication, and never ask for identifying information.
- Questions in one batch must all be different from each other.
- Do not repeat any question from the "already asked" list, even with small rewording.`

// buildUserMessage constructs the user message from a Request and Config limits.
func buildUserMessage(req Request, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	fmt.Fprintf(&b, "Number of questions: %d\n", req.Count)

	b.WriteString("\nAlready asked:\n")
	b.WriteString(buildDedup(req.Asked, cfg.MaxAsked))

	return b.String()
}

// buildDedup formats already-asked questions for the prompt, keeping the
// most recent max entries. Returns "None" if there are none.
func buildDedup(asked []string, max int) string {
	if len(asked) == 0 {
		return "None"
	}

	if max > 0 && len(asked) > max {
		asked = asked[len(asked)-max:]
	}

	var b strings.Builder
	for i, q := range asked {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}
