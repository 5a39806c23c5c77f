// Package quiz defines the quiz data model shared by generation, evaluation
// and persistence.
package quiz

import (
	"fmt"
	"time"

	"github.com/abhisek/cogniquiz/internal/difficulty"
)

// OptionCount is the number of options every question carries.
const OptionCount = 4

// PassingScore is the default score, in percent, at which a result passes.
const PassingScore = 70.0

// Course identifies the course a quiz is generated for.
type Course struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Spec is a request to generate a quiz.
type Spec struct {
	CourseID  string
	StudentID string

	// Difficulty, when non-nil, is used verbatim instead of the level
	// derived from the student's history.
	Difficulty *difficulty.Level

	QuestionCount int
}

// Option is one answer choice.
type Option struct {
	Text      string `json:"text"`
	Rationale string `json:"rationale,omitempty"`
}

// Question is a multiple-choice question with exactly one correct option.
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Options       []Option `json:"options"`
	CorrectIndex  int      `json:"correct_index"`
	Rationale     string   `json:"rationale,omitempty"`
	SourceExcerpt string   `json:"source_excerpt,omitempty"`
}

// Validate checks the single-correct-answer invariant.
func (q Question) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("question text is empty")
	}
	if len(q.Options) != OptionCount {
		return fmt.Errorf("question has %d options, want %d", len(q.Options), OptionCount)
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("correct index %d out of range", q.CorrectIndex)
	}
	for i, o := range q.Options {
		if o.Text == "" {
			return fmt.Errorf("option %d is empty", i)
		}
	}
	return nil
}

// Provenance records how a quiz's questions were produced.
type Provenance struct {
	Fallback bool   `json:"fallback"`
	Reason   string `json:"reason,omitempty"`
	Model    string `json:"model,omitempty"`
}

func (p Provenance) String() string {
	if p.Fallback {
		return p.Reason
	}
	return "model: " + p.Model
}

// Quiz is an immutable generated quiz.
type Quiz struct {
	ID         string           `json:"id"`
	CourseID   string           `json:"course_id"`
	StudentID  string           `json:"student_id"`
	Title      string           `json:"title"`
	Difficulty difficulty.Level `json:"difficulty"`
	Questions  []Question       `json:"questions"`
	Provenance Provenance       `json:"provenance"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Submission holds a student's selected option index per question ID.
type Submission struct {
	StudentID string
	Answers   map[string]int
}

// Answer is the graded answer to a single question.
// SelectedIndex is -1 when the question was left unanswered.
type Answer struct {
	QuestionID    string `json:"question_id"`
	SelectedIndex int    `json:"selected_index"`
	CorrectIndex  int    `json:"correct_index"`
	IsCorrect     bool   `json:"is_correct"`
}

// Result is the graded outcome of one quiz submission.
type Result struct {
	ID              string           `json:"id"`
	QuizID          string           `json:"quiz_id"`
	StudentID       string           `json:"student_id"`
	CourseID        string           `json:"course_id"`
	Difficulty      difficulty.Level `json:"difficulty"`
	TotalQuestions  int              `json:"total_questions"`
	CorrectCount    int              `json:"correct_count"`
	ScorePercent    float64          `json:"score_percent"`
	Passed          bool             `json:"passed"`
	CourseValidated bool             `json:"course_validated"`
	Feedback        string           `json:"feedback"`
	Strengths       []string         `json:"strengths,omitempty"`
	Weaknesses      []string         `json:"weaknesses,omitempty"`
	Recommendations []string         `json:"recommendations,omitempty"`
	WeakTopics      []string         `json:"weak_topics,omitempty"`
	NextDifficulty  difficulty.Level `json:"next_difficulty"`
	Answers         []Answer         `json:"answers"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Progress is a student's completion state for one course.
type Progress struct {
	StudentID       string `json:"student_id"`
	CourseID        string `json:"course_id"`
	Completed       bool   `json:"completed"`
	ProgressPercent int    `json:"progress_percent"`
}
