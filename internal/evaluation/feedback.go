package evaluation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/cogniquiz/internal/difficulty"
	"github.com/abhisek/cogniquiz/internal/llm"
	"github.com/abhisek/cogniquiz/internal/sanitize"
)

// Feedback is the narrative part of a result.
type Feedback struct {
	Summary         string
	Strengths       []string
	Weaknesses      []string
	Recommendations []string
	CourseValidated bool
}

// Score bands for rule-based feedback, in percent.
const (
	excellentBand = 90.0
	passBand      = 70.0
	partialBand   = 50.0
)

// RuleFeedback returns the deterministic feedback for a score.
func RuleFeedback(score float64) Feedback {
	switch {
	case score >= excellentBand:
		return Feedback{
			Summary:         "Excellent performance! You've mastered this level.",
			Strengths:       []string{"Excellent understanding", "Strong grasp of concepts"},
			Weaknesses:      []string{},
			Recommendations: []string{"Ready for the next challenge!"},
			CourseValidated: true,
		}
	case score >= passBand:
		return Feedback{
			Summary:         "Good job! You passed the quiz.",
			Strengths:       []string{"Good understanding"},
			Weaknesses:      []string{"Minor areas to review"},
			Recommendations: []string{"Review incorrect answers before moving on"},
			CourseValidated: true,
		}
	case score >= partialBand:
		return Feedback{
			Summary:         "You're making progress. Keep practicing!",
			Strengths:       []string{"Effort shown", "Partial understanding"},
			Weaknesses:      []string{"Some concepts need more review"},
			Recommendations: []string{"Focus on the topics you missed"},
		}
	default:
		return Feedback{
			Summary:         "Keep studying! Review the material carefully.",
			Strengths:       []string{"Taking initiative to learn"},
			Weaknesses:      []string{"Core concepts need reinforcement"},
			Recommendations: []string{"Re-read course content", "Try easier questions first"},
		}
	}
}

// EvaluationSchema describes the JSON payload a model returns for feedback.
var EvaluationSchema = &llm.Schema{
	Name:        "quiz-evaluation",
	Description: "Personalised feedback on a graded quiz",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"feedback":               map[string]any{"type": "string", "minLength": 1},
			"strengths":              stringArray(),
			"weaknesses":             stringArray(),
			"recommendations":        stringArray(),
			"recommended_difficulty": map[string]any{"type": "string"},
			"course_validated":       map[string]any{"type": "boolean"},
		},
		"required": []any{"feedback"},
	},
}

func stringArray() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}

type evaluationOutput struct {
	Feedback        string   `json:"feedback"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
	CourseValidated *bool    `json:"course_validated"`
}

// parseFeedback decodes a model response. The model's course_validated flag
// can only withhold validation from a passing score, never grant it to a
// failing one; a missing flag means the score decides.
func parseFeedback(raw string, score, passingScore float64) (Feedback, error) {
	payload, err := sanitize.Clean(raw)
	if err != nil {
		return Feedback{}, err
	}
	if err := llm.ValidateJSON(EvaluationSchema, []byte(payload)); err != nil {
		return Feedback{}, err
	}
	var out evaluationOutput
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return Feedback{}, fmt.Errorf("decode evaluation: %w", err)
	}

	fb := Feedback{
		Summary:         out.Feedback,
		Strengths:       out.Strengths,
		Weaknesses:      out.Weaknesses,
		Recommendations: out.Recommendations,
		CourseValidated: score >= passingScore,
	}
	if out.CourseValidated != nil {
		fb.CourseValidated = *out.CourseValidated && score >= passingScore
	}
	return fb, nil
}

const evaluationSystemPrompt = `You are a supportive tutor reviewing a student's quiz results. Respond with JSON only.`

func buildEvaluationPrompt(level difficulty.Level, sc Scorecard) string {
	weak := "none"
	if len(sc.WeakTopics) > 0 {
		weak = strings.Join(sc.WeakTopics, ", ")
	}

	var b strings.Builder
	b.WriteString("Evaluate quiz results and recommend the NEXT appropriate difficulty level.\n\n")
	b.WriteString("CURRENT QUIZ INFO:\n")
	fmt.Fprintf(&b, "- Current Difficulty: %s\n", level)
	fmt.Fprintf(&b, "- Score: %.1f%%\n", sc.ScorePercent)
	fmt.Fprintf(&b, "- Correct: %d/%d\n", sc.Correct, sc.Total)
	fmt.Fprintf(&b, "- Weak topics: %s\n\n", weak)
	b.WriteString(`DIFFICULTY PROGRESSION RULES:
- If score >= 90% at current level, recommend NEXT HIGHER level
- If score >= 70% at current level, recommend SAME level or SLIGHTLY higher
- If score < 70%, recommend SAME level or LOWER level
- Available levels in order: EASY -> MEDIUM -> HARD -> EXPERT

Return JSON: {"feedback": "message", "strengths": [], "weaknesses": [],
"recommendations": [], "recommended_difficulty": "EASY|MEDIUM|HARD|EXPERT",
"course_validated": true/false}`)
	return b.String()
}
