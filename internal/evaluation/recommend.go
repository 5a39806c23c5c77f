package evaluation

import (
	"context"
	"fmt"
)

// Recommendations returns study advice based on the student's average
// score across every result on the course.
func (e *Evaluator) Recommendations(ctx context.Context, studentID, courseID string) ([]string, error) {
	scores, err := e.results.RecentScores(ctx, studentID, courseID, 0)
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	return Recommend(scores), nil
}

// Recommend maps a score history to advice.
func Recommend(scores []float64) []string {
	if len(scores) == 0 {
		return []string{
			"Start with an easy quiz to assess your current understanding.",
			"Read through the course material before attempting quizzes.",
		}
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	avg := sum / float64(len(scores))

	switch {
	case avg >= 80:
		return []string{
			"Excellent progress! Try harder difficulty levels.",
			"Consider helping other students with this topic.",
		}
	case avg >= 60:
		return []string{
			"Good progress. Review the topics where you made mistakes.",
			"Practice with medium difficulty quizzes to reinforce learning.",
		}
	default:
		return []string{
			"Focus on understanding the core concepts first.",
			"Re-read the course material and take notes.",
			"Start with easier quizzes to build confidence.",
		}
	}
}
