// Package progress maintains each student's completion state per course.
package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abhisek/cogniquiz/internal/quiz"
)

const (
	// RequiredPasses is how many passed quizzes validate a course.
	RequiredPasses = 2

	// PercentPerPass is the progress credited for each passed quiz until
	// the course is validated.
	PercentPerPass = 30

	// MaxPartialPercent caps progress on a course that is not yet validated.
	MaxPartialPercent = 90
)

// Tracker updates enrollment progress after each graded result.
type Tracker struct {
	repo         quiz.ProgressRepository
	passingScore float64
	logger       *slog.Logger
}

// New creates a Tracker. A non-positive passingScore uses quiz.PassingScore.
func New(repo quiz.ProgressRepository, passingScore float64, logger *slog.Logger) *Tracker {
	if passingScore <= 0 {
		passingScore = quiz.PassingScore
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{repo: repo, passingScore: passingScore, logger: logger}
}

// OnResult records the effect of a result that has already been persisted.
// The course is completed once the current score passes and the student has
// at least RequiredPasses passed results on it, the current one included.
func (t *Tracker) OnResult(ctx context.Context, studentID, courseID string, score float64) (quiz.Progress, error) {
	passed, err := t.repo.PassedCount(ctx, studentID, courseID)
	if err != nil {
		return quiz.Progress{}, fmt.Errorf("count passed results: %w", err)
	}

	p := quiz.Progress{StudentID: studentID, CourseID: courseID}
	if score >= t.passingScore && passed >= RequiredPasses {
		p.Completed = true
		p.ProgressPercent = 100
	} else {
		p.ProgressPercent = min(MaxPartialPercent, passed*PercentPerPass)
	}

	if err := t.repo.SetProgress(ctx, p); err != nil {
		return quiz.Progress{}, fmt.Errorf("save progress: %w", err)
	}

	if p.Completed {
		t.logger.InfoContext(ctx, "course validated", "student_id", studentID, "course_id", courseID)
	}
	return p, nil
}

// Get returns the recorded progress, or a zero progress when none exists.
func (t *Tracker) Get(ctx context.Context, studentID, courseID string) (quiz.Progress, error) {
	p, err := t.repo.GetProgress(ctx, studentID, courseID)
	if err == nil {
		return p, nil
	}
	if errors.Is(err, quiz.ErrNotFound) {
		return quiz.Progress{StudentID: studentID, CourseID: courseID}, nil
	}
	return quiz.Progress{}, err
}
