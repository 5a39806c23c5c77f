package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/cogniquiz/internal/difficulty"
	"github.com/abhisek/cogniquiz/internal/quiz"
)

// SaveQuiz inserts a generated quiz. Quizzes are immutable.
func (s *Store) SaveQuiz(ctx context.Context, qz *quiz.Quiz) error {
	questions, err := json.Marshal(qz.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}

	q, args := s.builder().Insert(tableQuizzes).
		Columns("id", "course_id", "student_id", "title", "difficulty", "questions",
			"fallback", "fallback_reason", "model", "created_at").
		Values(qz.ID, qz.CourseID, qz.StudentID, qz.Title, qz.Difficulty.String(), string(questions),
			qz.Provenance.Fallback, qz.Provenance.Reason, qz.Provenance.Model, qz.CreatedAt.UTC()).
		Query()
	if err := s.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("save quiz %s: %w", qz.ID, err)
	}
	return nil
}

// GetQuiz returns quiz.ErrNotFound for unknown IDs.
func (s *Store) GetQuiz(ctx context.Context, id string) (*quiz.Quiz, error) {
	q, args := s.builder().
		Select("id", "course_id", "student_id", "title", "difficulty", "questions",
			"fallback", "fallback_reason", "model", "created_at").
		From(s.builder().Table(tableQuizzes)).
		Where(entsql.EQ("id", id)).
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query quiz: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("quiz %s: %w", id, quiz.ErrNotFound)
	}

	var (
		qz        quiz.Quiz
		level     string
		questions string
		createdAt time.Time
	)
	if err := rows.Scan(&qz.ID, &qz.CourseID, &qz.StudentID, &qz.Title, &level, &questions,
		&qz.Provenance.Fallback, &qz.Provenance.Reason, &qz.Provenance.Model, &createdAt); err != nil {
		return nil, fmt.Errorf("scan quiz: %w", err)
	}
	lvl, err := difficulty.Parse(level)
	if err != nil {
		return nil, fmt.Errorf("quiz %s: %w", id, err)
	}
	qz.Difficulty = lvl
	if err := json.Unmarshal([]byte(questions), &qz.Questions); err != nil {
		return nil, fmt.Errorf("decode questions of quiz %s: %w", id, err)
	}
	qz.CreatedAt = createdAt.UTC()
	return &qz, nil
}

// resultDetails is the JSON payload of the list-valued result fields.
type resultDetails struct {
	Strengths       []string      `json:"strengths,omitempty"`
	Weaknesses      []string      `json:"weaknesses,omitempty"`
	Recommendations []string      `json:"recommendations,omitempty"`
	WeakTopics      []string      `json:"weak_topics,omitempty"`
	Answers         []quiz.Answer `json:"answers"`
}

// SaveResult stores a quiz result. A second result for the same quiz
// returns quiz.ErrAlreadySubmitted.
func (s *Store) SaveResult(ctx context.Context, r *quiz.Result) error {
	details, err := json.Marshal(resultDetails{
		Strengths:       r.Strengths,
		Weaknesses:      r.Weaknesses,
		Recommendations: r.Recommendations,
		WeakTopics:      r.WeakTopics,
		Answers:         r.Answers,
	})
	if err != nil {
		return fmt.Errorf("marshal result details: %w", err)
	}

	q, args := s.builder().Insert(tableResults).
		Columns("id", "quiz_id", "student_id", "course_id", "difficulty", "total_questions",
			"correct_count", "score_percent", "passed", "course_validated", "next_difficulty",
			"feedback", "details", "created_at").
		Values(r.ID, r.QuizID, r.StudentID, r.CourseID, r.Difficulty.String(), r.TotalQuestions,
			r.CorrectCount, r.ScorePercent, r.Passed, r.CourseValidated, r.NextDifficulty.String(),
			r.Feedback, string(details), r.CreatedAt.UTC()).
		OnConflict(entsql.ConflictColumns("quiz_id"), entsql.DoNothing()).
		Query()

	var res sql.Result
	if err := s.drv.Exec(ctx, q, args, &res); err != nil {
		return fmt.Errorf("save result of quiz %s: %w", r.QuizID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("quiz %s: %w", r.QuizID, quiz.ErrAlreadySubmitted)
	}
	return nil
}

var resultColumns = []string{
	"id", "quiz_id", "student_id", "course_id", "difficulty", "total_questions",
	"correct_count", "score_percent", "passed", "course_validated", "next_difficulty",
	"feedback", "details", "created_at",
}

// GetResult returns quiz.ErrNotFound when the quiz has no result.
func (s *Store) GetResult(ctx context.Context, quizID string) (*quiz.Result, error) {
	q, args := s.builder().
		Select(resultColumns...).
		From(s.builder().Table(tableResults)).
		Where(entsql.EQ("quiz_id", quizID)).
		Query()

	results, err := s.queryResults(ctx, q, args)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("result of quiz %s: %w", quizID, quiz.ErrNotFound)
	}
	return results[0], nil
}

// ListResults returns a student's results on a course, most recent first.
func (s *Store) ListResults(ctx context.Context, studentID, courseID string) ([]*quiz.Result, error) {
	q, args := s.builder().
		Select(resultColumns...).
		From(s.builder().Table(tableResults)).
		Where(entsql.And(
			entsql.EQ("student_id", studentID),
			entsql.EQ("course_id", courseID),
		)).
		OrderBy(entsql.Desc("created_at")).
		Query()
	return s.queryResults(ctx, q, args)
}

// RecentScores returns score percentages, most recent first. A limit of 0
// returns all of them.
func (s *Store) RecentScores(ctx context.Context, studentID, courseID string, limit int) ([]float64, error) {
	sel := s.builder().
		Select("score_percent").
		From(s.builder().Table(tableResults)).
		Where(entsql.And(
			entsql.EQ("student_id", studentID),
			entsql.EQ("course_id", courseID),
		)).
		OrderBy(entsql.Desc("created_at"))
	if limit > 0 {
		sel.Limit(limit)
	}
	q, args := sel.Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) queryResults(ctx context.Context, q string, args []any) ([]*quiz.Result, error) {
	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []*quiz.Result
	for rows.Next() {
		var (
			r           quiz.Result
			level, next string
			details     string
			createdAt   time.Time
		)
		if err := rows.Scan(&r.ID, &r.QuizID, &r.StudentID, &r.CourseID, &level, &r.TotalQuestions,
			&r.CorrectCount, &r.ScorePercent, &r.Passed, &r.CourseValidated, &next,
			&r.Feedback, &details, &createdAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}

		var err error
		if r.Difficulty, err = difficulty.Parse(level); err != nil {
			return nil, fmt.Errorf("result %s: %w", r.ID, err)
		}
		if r.NextDifficulty, err = difficulty.Parse(next); err != nil {
			return nil, fmt.Errorf("result %s: %w", r.ID, err)
		}

		var d resultDetails
		if err := json.Unmarshal([]byte(details), &d); err != nil {
			return nil, fmt.Errorf("decode result %s: %w", r.ID, err)
		}
		r.Strengths = d.Strengths
		r.Weaknesses = d.Weaknesses
		r.Recommendations = d.Recommendations
		r.WeakTopics = d.WeakTopics
		r.Answers = d.Answers
		r.CreatedAt = createdAt.UTC()

		out = append(out, &r)
	}
	return out, rows.Err()
}
