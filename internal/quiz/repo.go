package quiz

import "context"

// Repository persists quizzes and their results.
type Repository interface {
	SaveQuiz(ctx context.Context, q *Quiz) error

	// GetQuiz returns ErrNotFound when the quiz does not exist.
	GetQuiz(ctx context.Context, id string) (*Quiz, error)

	// SaveResult stores the single result of a quiz. It returns
	// ErrAlreadySubmitted if the quiz already has one.
	SaveResult(ctx context.Context, r *Result) error

	// GetResult returns ErrNotFound when the quiz has no result yet.
	GetResult(ctx context.Context, quizID string) (*Result, error)

	// RecentScores returns the student's scores on a course, most recent first.
	// A limit of 0 means no limit.
	RecentScores(ctx context.Context, studentID, courseID string, limit int) ([]float64, error)
}

// CourseRepository stores course metadata registered at indexing time.
type CourseRepository interface {
	SaveCourse(ctx context.Context, c Course) error

	// GetCourse returns ErrNotFound when the course is unknown.
	GetCourse(ctx context.Context, id string) (Course, error)
}

// ProgressRepository is the enrollment progress collaborator.
type ProgressRepository interface {
	PassedCount(ctx context.Context, studentID, courseID string) (int, error)
	SetProgress(ctx context.Context, p Progress) error

	// GetProgress returns ErrNotFound when nothing has been recorded.
	GetProgress(ctx context.Context, studentID, courseID string) (Progress, error)
}
