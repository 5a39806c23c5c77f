package evaluation

import "github.com/abhisek/cogniquiz/internal/quiz"

// Unanswered is the SelectedIndex recorded for a skipped question.
const Unanswered = -1

// Scorecard is the mechanical grading of one submission.
type Scorecard struct {
	Answers      []quiz.Answer
	Correct      int
	Total        int
	ScorePercent float64

	// WeakTopics holds the source excerpts of incorrectly answered
	// questions, in question order.
	WeakTopics []string
}

// Score grades answers against q. A missing answer counts as incorrect.
// A quiz without questions scores 0.
func Score(q *quiz.Quiz, answers map[string]int) Scorecard {
	sc := Scorecard{
		Answers: make([]quiz.Answer, 0, len(q.Questions)),
		Total:   len(q.Questions),
	}
	for _, question := range q.Questions {
		selected, ok := answers[question.ID]
		if !ok {
			selected = Unanswered
		}
		correct := ok && selected == question.CorrectIndex
		if correct {
			sc.Correct++
		} else if question.SourceExcerpt != "" {
			sc.WeakTopics = append(sc.WeakTopics, question.SourceExcerpt)
		}
		sc.Answers = append(sc.Answers, quiz.Answer{
			QuestionID:    question.ID,
			SelectedIndex: selected,
			CorrectIndex:  question.CorrectIndex,
			IsCorrect:     correct,
		})
	}
	if sc.Total > 0 {
		sc.ScorePercent = float64(sc.Correct) / float64(sc.Total) * 100
	}
	return sc
}
