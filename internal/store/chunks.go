package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/cogniquiz/internal/chunking"
)

// chunkInsertBatch keeps multi-row inserts under SQLite's bound-parameter limit.
const chunkInsertBatch = 500

// ReplaceChunks swaps the course's chunks for chunks in one transaction.
func (s *Store) ReplaceChunks(ctx context.Context, courseID string, chunks []chunking.Chunk) error {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := s.replaceChunks(ctx, tx, courseID, chunks); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w: rollback: %v", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chunks: %w", err)
	}
	return nil
}

func (s *Store) replaceChunks(ctx context.Context, tx dialect.Tx, courseID string, chunks []chunking.Chunk) error {
	q, args := s.builder().Delete(tableChunks).
		Where(entsql.EQ("course_id", courseID)).
		Query()
	if err := tx.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}

	for start := 0; start < len(chunks); start += chunkInsertBatch {
		end := min(start+chunkInsertBatch, len(chunks))
		ins := s.builder().Insert(tableChunks).
			Columns("course_id", "idx", "text", "start_offset", "end_offset")
		for _, c := range chunks[start:end] {
			ins.Values(courseID, c.Index, c.Text, c.StartOffset, c.EndOffset)
		}
		q, args = ins.Query()
		if err := tx.Exec(ctx, q, args, nil); err != nil {
			return fmt.Errorf("insert chunks: %w", err)
		}
	}
	return nil
}

// Chunks returns the course's chunks ordered by index.
func (s *Store) Chunks(ctx context.Context, courseID string) ([]chunking.Chunk, error) {
	q, args := s.builder().
		Select("idx", "text", "start_offset", "end_offset").
		From(s.builder().Table(tableChunks)).
		Where(entsql.EQ("course_id", courseID)).
		OrderBy("idx").
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var out []chunking.Chunk
	for rows.Next() {
		c := chunking.Chunk{CourseID: courseID}
		if err := rows.Scan(&c.Index, &c.Text, &c.StartOffset, &c.EndOffset); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteChunks removes every chunk of the course.
func (s *Store) DeleteChunks(ctx context.Context, courseID string) error {
	q, args := s.builder().Delete(tableChunks).
		Where(entsql.EQ("course_id", courseID)).
		Query()
	if err := s.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}

// CountChunks returns how many chunks the course has.
func (s *Store) CountChunks(ctx context.Context, courseID string) (int, error) {
	q, args := s.builder().
		Select(entsql.Count("*")).
		From(s.builder().Table(tableChunks)).
		Where(entsql.EQ("course_id", courseID)).
		Query()
	return s.queryInt(ctx, q, args)
}

func (s *Store) queryInt(ctx context.Context, q string, args []any) (int, error) {
	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return 0, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, fmt.Errorf("scan: %w", err)
		}
	}
	return n, rows.Err()
}
