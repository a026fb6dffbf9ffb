package analysis

import (
	"bytes"
	"text/template"
)

const classifySystemPrompt = `You decide whether a topic is suitable for a short self-assessment questionnaire about wellbeing.

Suitable topics concern the user's mental, emotional or physical wellbeing: mood, stress, anxiety, sleep, focus, relationships, burnout, self-esteem and similar.
Unsuitable topics are anything else: food, trivia, sport results, products, school subjects, or requests that are not a topic at all.

Keep the reason to one friendly sentence addressed to the user.`

const analysisSystemPrompt = `You are a supportive wellbeing coach reviewing a user's answers to a self-assessment questionnaire.

Rules:
- Speak to the user directly in second person, warmly and without judgement.
- Base every statement on the answers given; do not invent symptoms.
- Never diagnose a condition and never mention medication.
- If the answers suggest serious distress, gently recommend talking to a qualified professional.
- Return plain text paragraphs with no markdown.`

const stabilitySystemPrompt = `You summarise a user's questionnaire answers as three stability levels: emotional, mental and physical.

For each category give a short level label (2-3 words, for example "Stable", "Slightly strained", "Needs attention") and one emoji that matches it.
Judge only from the answers given. If the answers say little about a category, use a neutral label.`

var answersTemplate = template.Must(template.New("answers").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`Topic: {{.Topic}}
{{- if .Depth}}
Detail: {{if eq .Depth "deep"}}deep. Write 3-4 paragraphs of analysis and 4-6 concrete pieces of advice.{{else}}brief. Write one short paragraph of analysis and 2-3 pieces of advice.{{end}}
{{- end}}

Answers:
{{range $i, $a := .Answers}}{{inc $i}}. {{$a.Question}}
   Answer: {{$a.Answer}}
{{end}}`))

func buildAnswersMessage(req Request) (string, error) {
	var buf bytes.Buffer
	if err := answersTemplate.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}
