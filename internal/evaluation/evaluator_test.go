package evaluation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cogniquiz/internal/difficulty"
	"github.com/abhisek/cogniquiz/internal/llm"
	"github.com/abhisek/cogniquiz/internal/progress"
	"github.com/abhisek/cogniquiz/internal/quiz"
	"github.com/abhisek/cogniquiz/internal/store"
)

func sampleQuiz(id string, n int, level difficulty.Level) *quiz.Quiz {
	q := &quiz.Quiz{
		ID:         id,
		CourseID:   "c1",
		StudentID:  "s1",
		Title:      "Quiz: Biology",
		Difficulty: level,
	}
	for i := 1; i <= n; i++ {
		q.Questions = append(q.Questions, quiz.Question{
			ID:            fmt.Sprintf("%s-q%d", id, i),
			Text:          fmt.Sprintf("Question %d", i),
			Options:       []quiz.Option{{Text: "a"}, {Text: "b"}, {Text: "c"}, {Text: "d"}},
			CorrectIndex:  i % quiz.OptionCount,
			SourceExcerpt: fmt.Sprintf("topic %d", i),
		})
	}
	return q
}

// answersWithCorrect answers the first `correct` questions correctly and
// the rest wrongly.
func answersWithCorrect(q *quiz.Quiz, correct int) map[string]int {
	out := make(map[string]int, len(q.Questions))
	for i, question := range q.Questions {
		if i < correct {
			out[question.ID] = question.CorrectIndex
		} else {
			out[question.ID] = (question.CorrectIndex + 1) % quiz.OptionCount
		}
	}
	return out
}

func newEvaluator(mem *store.Memory, provider llm.Provider) *Evaluator {
	return New(mem, progress.New(mem, 0, nil), provider,
		WithClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }))
}

func TestEvaluate_FourOfFivePasses(t *testing.T) {
	mem := store.NewMemory()
	q := sampleQuiz("quiz-1", 5, difficulty.Medium)
	require.NoError(t, mem.SaveQuiz(context.Background(), q))

	r, err := newEvaluator(mem, nil).Evaluate(context.Background(), q, quiz.Submission{
		StudentID: "s1",
		Answers:   answersWithCorrect(q, 4),
	})
	require.NoError(t, err)

	assert.Equal(t, 5, r.TotalQuestions)
	assert.Equal(t, 4, r.CorrectCount)
	assert.InDelta(t, 80.0, r.ScorePercent, 1e-9)
	assert.True(t, r.Passed)
	assert.True(t, r.CourseValidated)
	assert.Equal(t, "Good job! You passed the quiz.", r.Feedback)
	assert.Equal(t, difficulty.Medium, r.NextDifficulty)
	assert.Equal(t, []string{"topic 5"}, r.WeakTopics)
	assert.Len(t, r.Answers, 5)

	stored, err := mem.GetResult(context.Background(), "quiz-1")
	require.NoError(t, err)
	assert.Equal(t, r.ID, stored.ID)

	p, err := mem.GetProgress(context.Background(), "s1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 30, p.ProgressPercent)
	assert.False(t, p.Completed)
}

func TestEvaluate_MissingAnswersAreIncorrect(t *testing.T) {
	mem := store.NewMemory()
	q := sampleQuiz("quiz-1", 4, difficulty.Easy)

	r, err := newEvaluator(mem, nil).Evaluate(context.Background(), q, quiz.Submission{
		StudentID: "s1",
		Answers:   map[string]int{"quiz-1-q1": q.Questions[0].CorrectIndex},
	})
	require.NoError(t, err)

	assert.InDelta(t, 25.0, r.ScorePercent, 1e-9)
	assert.False(t, r.Passed)
	assert.Equal(t, Unanswered, r.Answers[1].SelectedIndex)
	assert.False(t, r.Answers[1].IsCorrect)
	assert.Equal(t, "Keep studying! Review the material carefully.", r.Feedback)
	assert.Equal(t, difficulty.Easy, r.NextDifficulty, "EASY must not drop below itself")
}

func TestEvaluate_AlreadySubmitted(t *testing.T) {
	mem := store.NewMemory()
	q := sampleQuiz("quiz-1", 3, difficulty.Medium)
	ev := newEvaluator(mem, nil)
	sub := quiz.Submission{StudentID: "s1", Answers: answersWithCorrect(q, 3)}

	_, err := ev.Evaluate(context.Background(), q, sub)
	require.NoError(t, err)

	_, err = ev.Evaluate(context.Background(), q, sub)
	assert.ErrorIs(t, err, quiz.ErrAlreadySubmitted)
}

func TestEvaluate_Ownership(t *testing.T) {
	mem := store.NewMemory()
	q := sampleQuiz("quiz-1", 3, difficulty.Medium)

	_, err := newEvaluator(mem, nil).Evaluate(context.Background(), q, quiz.Submission{StudentID: "intruder"})
	assert.ErrorIs(t, err, quiz.ErrOwnership)

	_, err = mem.GetResult(context.Background(), "quiz-1")
	assert.ErrorIs(t, err, quiz.ErrNotFound, "no result may be stored for a foreign submission")
}

func TestEvaluate_EmptyQuizScoresZero(t *testing.T) {
	mem := store.NewMemory()
	q := sampleQuiz("quiz-1", 0, difficulty.Hard)

	r, err := newEvaluator(mem, nil).Evaluate(context.Background(), q, quiz.Submission{StudentID: "s1"})
	require.NoError(t, err)
	assert.Zero(t, r.ScorePercent)
	assert.Equal(t, difficulty.Medium, r.NextDifficulty)
}

func TestEvaluate_PerfectScorePromotes(t *testing.T) {
	mem := store.NewMemory()
	q := sampleQuiz("quiz-1", 5, difficulty.Hard)

	r, err := newEvaluator(mem, nil).Evaluate(context.Background(), q, quiz.Submission{
		StudentID: "s1",
		Answers:   answersWithCorrect(q, 5),
	})
	require.NoError(t, err)
	assert.Equal(t, difficulty.Expert, r.NextDifficulty)
	assert.Equal(t, "Excellent performance! You've mastered this level.", r.Feedback)
	assert.Empty(t, r.WeakTopics)
}

func TestEvaluate_ModelFeedback(t *testing.T) {
	mem := store.NewMemory()
	q := sampleQuiz("quiz-1", 5, difficulty.Medium)
	mock := llm.NewMockProvider(llm.MockResponse{Content: "```json\n" +
		`{"feedback":"Solid work on cells.","strengths":["cell structure"],"weaknesses":["mitosis"],` +
		`"recommendations":["Revisit mitosis"],"recommended_difficulty":"EXPERT","course_validated":false}` + "\n```"})

	r, err := newEvaluator(mem, mock).Evaluate(context.Background(), q, quiz.Submission{
		StudentID: "s1",
		Answers:   answersWithCorrect(q, 4),
	})
	require.NoError(t, err)

	assert.Equal(t, "Solid work on cells.", r.Feedback)
	assert.Equal(t, []string{"cell structure"}, r.Strengths)
	assert.Equal(t, []string{"Revisit mitosis"}, r.Recommendations)
	assert.False(t, r.CourseValidated)
	// The model's difficulty suggestion is ignored.
	assert.Equal(t, difficulty.Medium, r.NextDifficulty)

	require.Equal(t, 1, mock.CallCount())
	prompt := mock.Calls[0].Messages[0].Content
	assert.Contains(t, prompt, "Score: 80.0%")
	assert.Contains(t, prompt, "Correct: 4/5")
	assert.Contains(t, prompt, "Weak topics: topic 5")
}

func TestEvaluate_ModelFailureUsesRules(t *testing.T) {
	tests := []struct {
		name string
		mock *llm.MockProvider
	}{
		{"provider error", llm.AlwaysFail(errors.New("connection reset"))},
		{"prose", llm.NewMockProvider(llm.MockResponse{Content: "Great job overall!"})},
		{"empty feedback", llm.NewMockProvider(llm.MockResponse{Content: `{"feedback":""}`})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := store.NewMemory()
			q := sampleQuiz("quiz-1", 10, difficulty.Medium)
			r, err := newEvaluator(mem, tt.mock).Evaluate(context.Background(), q, quiz.Submission{
				StudentID: "s1",
				Answers:   answersWithCorrect(q, 6),
			})
			require.NoError(t, err)
			assert.Equal(t, "You're making progress. Keep practicing!", r.Feedback)
			assert.False(t, r.CourseValidated)
		})
	}
}

func TestEvaluate_ModelCannotValidateFailingScore(t *testing.T) {
	mem := store.NewMemory()
	q := sampleQuiz("quiz-1", 5, difficulty.Medium)
	mock := llm.NewMockProvider(llm.MockResponse{Content: `{"feedback":"Keep going.","course_validated":true}`})

	r, err := newEvaluator(mem, mock).Evaluate(context.Background(), q, quiz.Submission{
		StudentID: "s1",
		Answers:   answersWithCorrect(q, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, "Keep going.", r.Feedback)
	assert.False(t, r.Passed)
	assert.False(t, r.CourseValidated)
}

// hangingProvider blocks until its context ends.
type hangingProvider struct{}

func (hangingProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (hangingProvider) ModelID() string { return "hanging" }

func TestEvaluate_FeedbackTimeoutUsesRules(t *testing.T) {
	mem := store.NewMemory()
	q := sampleQuiz("quiz-1", 10, difficulty.Medium)
	e := New(mem, progress.New(mem, 0, nil), hangingProvider{}, WithTimeout(20*time.Millisecond))

	r, err := e.Evaluate(context.Background(), q, quiz.Submission{
		StudentID: "s1",
		Answers:   answersWithCorrect(q, 6),
	})
	require.NoError(t, err)
	assert.Equal(t, "You're making progress. Keep practicing!", r.Feedback)

	_, err = mem.GetResult(context.Background(), q.ID)
	require.NoError(t, err)
}

func TestEvaluate_CallerDeadlineStillSaves(t *testing.T) {
	mem := store.NewMemory()
	q := sampleQuiz("quiz-1", 5, difficulty.Medium)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	r, err := newEvaluator(mem, hangingProvider{}).Evaluate(ctx, q, quiz.Submission{
		StudentID: "s1",
		Answers:   answersWithCorrect(q, 5),
	})
	require.NoError(t, err)
	assert.True(t, r.Passed)

	_, err = mem.GetResult(context.Background(), q.ID)
	require.NoError(t, err)
}

type failingTracker struct{}

func (failingTracker) OnResult(context.Context, string, string, float64) (quiz.Progress, error) {
	return quiz.Progress{}, errors.New("progress table locked")
}

func TestEvaluate_TrackerFailureKeepsResult(t *testing.T) {
	mem := store.NewMemory()
	q := sampleQuiz("quiz-1", 5, difficulty.Medium)

	r, err := New(mem, failingTracker{}, nil).Evaluate(context.Background(), q, quiz.Submission{
		StudentID: "s1",
		Answers:   answersWithCorrect(q, 4),
	})
	require.NoError(t, err)
	require.NotNil(t, r)

	saved, err := mem.GetResult(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, saved.ID)
}

func TestRuleFeedbackBands(t *testing.T) {
	tests := []struct {
		score     float64
		summary   string
		validated bool
	}{
		{100, "Excellent performance! You've mastered this level.", true},
		{90, "Excellent performance! You've mastered this level.", true},
		{89.9, "Good job! You passed the quiz.", true},
		{70, "Good job! You passed the quiz.", true},
		{69.9, "You're making progress. Keep practicing!", false},
		{50, "You're making progress. Keep practicing!", false},
		{49.9, "Keep studying! Review the material carefully.", false},
		{0, "Keep studying! Review the material carefully.", false},
	}
	for _, tt := range tests {
		fb := RuleFeedback(tt.score)
		assert.Equal(t, tt.summary, fb.Summary, "score %v", tt.score)
		assert.Equal(t, tt.validated, fb.CourseValidated, "score %v", tt.score)
	}
}

func TestRecommendations(t *testing.T) {
	mem := store.NewMemory()
	ev := newEvaluator(mem, nil)
	ctx := context.Background()

	recs, err := ev.Recommendations(ctx, "s1", "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Start with an easy quiz to assess your current understanding.",
		"Read through the course material before attempting quizzes.",
	}, recs)

	for i, correct := range []int{5, 4} {
		q := sampleQuiz(fmt.Sprintf("quiz-%d", i), 5, difficulty.Medium)
		_, err := ev.Evaluate(ctx, q, quiz.Submission{StudentID: "s1", Answers: answersWithCorrect(q, correct)})
		require.NoError(t, err)
	}
	recs, err = ev.Recommendations(ctx, "s1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "Excellent progress! Try harder difficulty levels.", recs[0])
}

func TestRecommendBands(t *testing.T) {
	assert.Len(t, Recommend([]float64{60, 70}), 2)
	assert.Equal(t, "Good progress. Review the topics where you made mistakes.", Recommend([]float64{60, 70})[0])
	assert.Len(t, Recommend([]float64{20, 40}), 3)
	assert.Equal(t, "Focus on understanding the core concepts first.", Recommend([]float64{59.9})[0])
}
