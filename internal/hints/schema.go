package hints

import "github.com/basil51/ai-school-sub003/internal/llm"

// HintSchema is the structured output of hint generation.
var HintSchema = &llm.Schema{
	Name:        "question-hint",
	Description: "One progressive hint for an assessment question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"hint": map[string]any{
				"type":        "string",
				"description": "The hint text (1-3 sentences). Must not state the final answer.",
			},
			"type": map[string]any{
				"type": "string",
				"enum": []any{"concept", "approach", "formula", "example"},
			},
		},
		"required":             []any{"hint", "type"},
		"additionalProperties": false,
	},
}

// ExplanationSchema is the structured output of explanation generation.
var ExplanationSchema = &llm.Schema{
	Name:        "answer-explanation",
	Description: "Step-by-step explanation of the correct answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"description": "Why the correct answer is correct, addressing the student's answer when it is wrong",
			},
			"steps": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"key_concepts": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []any{"explanation", "steps", "key_concepts"},
		"additionalProperties": false,
	},
}
