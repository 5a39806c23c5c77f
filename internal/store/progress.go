package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/cogniquiz/internal/quiz"
)

// PassedCount counts the student's passed results on the course.
func (s *Store) PassedCount(ctx context.Context, studentID, courseID string) (int, error) {
	q, args := s.builder().
		Select(entsql.Count("*")).
		From(s.builder().Table(tableResults)).
		Where(entsql.And(
			entsql.EQ("student_id", studentID),
			entsql.EQ("course_id", courseID),
			entsql.EQ("passed", true),
		)).
		Query()
	return s.queryInt(ctx, q, args)
}

// SetProgress upserts the enrollment progress row.
func (s *Store) SetProgress(ctx context.Context, p quiz.Progress) error {
	q, args := s.builder().Insert(tableProgress).
		Columns("student_id", "course_id", "completed", "progress_percent", "updated_at").
		Values(p.StudentID, p.CourseID, p.Completed, p.ProgressPercent, time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("student_id", "course_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if err := s.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("set progress: %w", err)
	}
	return nil
}

// GetProgress returns quiz.ErrNotFound when nothing was recorded.
func (s *Store) GetProgress(ctx context.Context, studentID, courseID string) (quiz.Progress, error) {
	q, args := s.builder().
		Select("completed", "progress_percent").
		From(s.builder().Table(tableProgress)).
		Where(entsql.And(
			entsql.EQ("student_id", studentID),
			entsql.EQ("course_id", courseID),
		)).
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return quiz.Progress{}, fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()

	p := quiz.Progress{StudentID: studentID, CourseID: courseID}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return quiz.Progress{}, err
		}
		return quiz.Progress{}, fmt.Errorf("progress of %s on %s: %w", studentID, courseID, quiz.ErrNotFound)
	}
	if err := rows.Scan(&p.Completed, &p.ProgressPercent); err != nil {
		return quiz.Progress{}, fmt.Errorf("scan progress: %w", err)
	}
	return p, nil
}
