// Package evaluation grades quiz submissions, writes feedback and records
// the student's next recommended difficulty.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/cogniquiz/internal/difficulty"
	"github.com/abhisek/cogniquiz/internal/llm"
	"github.com/abhisek/cogniquiz/internal/quiz"
)

// ProgressTracker is notified after every persisted result.
type ProgressTracker interface {
	OnResult(ctx context.Context, studentID, courseID string, score float64) (quiz.Progress, error)
}

// Evaluator grades submissions. A nil provider is valid and makes all
// feedback rule-based.
type Evaluator struct {
	results      quiz.Repository
	tracker      ProgressTracker
	client       *llm.TextClient
	passingScore float64
	timeout      time.Duration
	logger       *slog.Logger
	now          func() time.Time
	newID        func() string
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

// WithClock overrides the result timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

// WithPassingScore overrides quiz.PassingScore.
func WithPassingScore(score float64) Option {
	return func(e *Evaluator) {
		if score > 0 {
			e.passingScore = score
		}
	}
}

// WithTimeout bounds the feedback generation call. When it expires the
// feedback falls back to rules. Zero leaves the call unbounded.
func WithTimeout(d time.Duration) Option {
	return func(e *Evaluator) { e.timeout = d }
}

// New creates an Evaluator.
func New(results quiz.Repository, tracker ProgressTracker, provider llm.Provider, opts ...Option) *Evaluator {
	e := &Evaluator{
		results:      results,
		tracker:      tracker,
		passingScore: quiz.PassingScore,
		timeout:      llm.DefaultConfig().Timeout,
		logger:       slog.Default(),
		now:          time.Now,
		newID:        uuid.NewString,
	}
	if provider != nil {
		e.client = llm.NewTextClient(provider).WithSystem(evaluationSystemPrompt).WithTemperature(0.3)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate grades sub against q, persists the result and updates progress.
//
// It returns quiz.ErrOwnership when sub is from another student and
// quiz.ErrAlreadySubmitted when q already has a result.
func (e *Evaluator) Evaluate(ctx context.Context, q *quiz.Quiz, sub quiz.Submission) (*quiz.Result, error) {
	if sub.StudentID != q.StudentID {
		return nil, quiz.ErrOwnership
	}
	_, err := e.results.GetResult(ctx, q.ID)
	switch {
	case err == nil:
		return nil, quiz.ErrAlreadySubmitted
	case !errors.Is(err, quiz.ErrNotFound):
		return nil, fmt.Errorf("check existing result: %w", err)
	}

	sc := Score(q, sub.Answers)
	fb := e.feedback(ctx, q, sc)

	r := &quiz.Result{
		ID:              e.newID(),
		QuizID:          q.ID,
		StudentID:       q.StudentID,
		CourseID:        q.CourseID,
		Difficulty:      q.Difficulty,
		TotalQuestions:  sc.Total,
		CorrectCount:    sc.Correct,
		ScorePercent:    sc.ScorePercent,
		Passed:          sc.ScorePercent >= e.passingScore,
		CourseValidated: fb.CourseValidated,
		Feedback:        fb.Summary,
		Strengths:       fb.Strengths,
		Weaknesses:      fb.Weaknesses,
		Recommendations: fb.Recommendations,
		WeakTopics:      sc.WeakTopics,
		NextDifficulty:  difficulty.Next(q.Difficulty, sc.ScorePercent),
		Answers:         sc.Answers,
		CreatedAt:       e.now().UTC(),
	}

	saveCtx, cancel, err := persistContext(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	if err := e.results.SaveResult(saveCtx, r); err != nil {
		return nil, fmt.Errorf("save result: %w", err)
	}

	// The result is stored; a progress failure must not turn it into an
	// error the client would retry into ErrAlreadySubmitted.
	if e.tracker != nil {
		if _, err := e.tracker.OnResult(saveCtx, r.StudentID, r.CourseID, r.ScorePercent); err != nil {
			e.logger.ErrorContext(ctx, "progress update failed",
				"quiz_id", q.ID,
				"student_id", r.StudentID,
				"course_id", r.CourseID,
				"error", err,
			)
		}
	}

	e.logger.InfoContext(ctx, "quiz evaluated",
		"quiz_id", q.ID,
		"student_id", r.StudentID,
		"score", r.ScorePercent,
		"passed", r.Passed,
		"next_difficulty", r.NextDifficulty.String(),
	)
	return r, nil
}

// feedback asks the model for feedback and falls back to RuleFeedback.
func (e *Evaluator) feedback(ctx context.Context, q *quiz.Quiz, sc Scorecard) Feedback {
	if e.client == nil {
		return RuleFeedback(sc.ScorePercent)
	}

	genCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	raw, err := e.client.Call(llm.WithPurpose(genCtx, llm.PurposeEvaluation), buildEvaluationPrompt(q.Difficulty, sc))
	if err == nil {
		var fb Feedback
		if fb, err = parseFeedback(raw, sc.ScorePercent, e.passingScore); err == nil {
			return fb
		}
	}

	e.logger.WarnContext(ctx, "evaluation feedback fell back to rules",
		"quiz_id", q.ID,
		"course_id", q.CourseID,
		"error", err,
	)
	return RuleFeedback(sc.ScorePercent)
}

// persistTimeout bounds the save of a result whose caller deadline already
// passed during feedback generation.
const persistTimeout = 5 * time.Second

// persistContext returns the context to save under. A cancelled caller gets
// its error back; an expired deadline gets a short detached one.
func persistContext(ctx context.Context) (context.Context, context.CancelFunc, error) {
	err := ctx.Err()
	switch {
	case err == nil:
		return ctx, func() {}, nil
	case errors.Is(err, context.DeadlineExceeded):
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		return saveCtx, cancel, nil
	default:
		return nil, nil, err
	}
}
