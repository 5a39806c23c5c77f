package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/cogniquiz/internal/quiz"
)

// SaveCourse registers the course or updates its title.
func (s *Store) SaveCourse(ctx context.Context, c quiz.Course) error {
	q, args := s.builder().Insert(tableCourses).
		Columns("id", "title", "created_at").
		Values(c.ID, c.Title, time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("title")
			}),
		).
		Query()
	if err := s.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("save course %s: %w", c.ID, err)
	}
	return nil
}

// GetCourse returns quiz.ErrNotFound for unknown courses.
func (s *Store) GetCourse(ctx context.Context, id string) (quiz.Course, error) {
	q, args := s.builder().
		Select("id", "title").
		From(s.builder().Table(tableCourses)).
		Where(entsql.EQ("id", id)).
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return quiz.Course{}, fmt.Errorf("query course: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return quiz.Course{}, err
		}
		return quiz.Course{}, fmt.Errorf("course %s: %w", id, quiz.ErrNotFound)
	}
	var c quiz.Course
	if err := rows.Scan(&c.ID, &c.Title); err != nil {
		return quiz.Course{}, fmt.Errorf("scan course: %w", err)
	}
	return c, nil
}

// ListCourses returns every registered course ordered by ID.
func (s *Store) ListCourses(ctx context.Context) ([]quiz.Course, error) {
	q, args := s.builder().
		Select("id", "title").
		From(s.builder().Table(tableCourses)).
		OrderBy("id").
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	var out []quiz.Course
	for rows.Next() {
		var c quiz.Course
		if err := rows.Scan(&c.ID, &c.Title); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
