package quizgen

import "github.com/abhisek/cogniquiz/internal/llm"

// QuizSchema describes the JSON payload a model must return for a quiz.
// Option counts and index bounds are left to the validator chain.
var QuizSchema = &llm.Schema{
	Name:        "course-quiz",
	Description: "A multiple-choice quiz derived from course content",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question_text": map[string]any{"type": "string"},
						"options": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"text":        map[string]any{"type": "string"},
									"explanation": map[string]any{"type": "string"},
								},
								"required": []any{"text"},
							},
						},
						"correct_option_index": map[string]any{"type": "integer"},
						"explanation":          map[string]any{"type": "string"},
						"source_context":       map[string]any{"type": "string"},
					},
					"required": []any{"question_text", "options", "correct_option_index"},
				},
			},
		},
		"required": []any{"questions"},
	},
}
