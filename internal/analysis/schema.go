package analysis

import "github.com/abhisek/mindcheck/internal/llm"

// ClassifySchema defines the JSON schema for topic classification responses.
var ClassifySchema = &llm.Schema{
	Name:        "topic-classification",
	Description: "Whether a topic is suitable for a mental or emotional wellbeing questionnaire",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"on_domain": map[string]any{
				"type":        "boolean",
				"description": "True if the topic concerns mental, emotional or physical wellbeing",
			},
			"reason": map[string]any{
				"type":        "string",
				"description": "One sentence explaining the decision, addressed to the user",
			},
		},
		"required":             []any{"on_domain", "reason"},
		"additionalProperties": false,
	},
}

// AnalysisSchema defines the JSON schema for questionnaire analysis responses.
var AnalysisSchema = &llm.Schema{
	Name:        "questionnaire-analysis",
	Description: "Analysis of a completed self-assessment questionnaire with advice",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"analysis": map[string]any{
				"type":        "string",
				"description": "What the answers suggest, written to the user in second person",
			},
			"advice": map[string]any{
				"type":        "string",
				"description": "Practical, supportive next steps",
			},
		},
		"required":             []any{"analysis", "advice"},
		"additionalProperties": false,
	},
}

var levelSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"level": map[string]any{
			"type":        "string",
			"description": "A short label such as \"Stable\", \"Slightly strained\" or \"Needs attention\"",
		},
		"emoji": map[string]any{
			"type":        "string",
			"description": "A single emoji matching the level",
		},
	},
	"required":             []any{"level", "emoji"},
	"additionalProperties": false,
}

// StabilitySchema defines the JSON schema for the stability assessment.
var StabilitySchema = &llm.Schema{
	Name:        "stability-assessment",
	Description: "Emotional, mental and physical stability levels derived from questionnaire answers",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"emotional": levelSchema,
			"mental":    levelSchema,
			"physical":  levelSchema,
		},
		"required":             []any{"emotional", "mental", "physical"},
		"additionalProperties": false,
	},
}
