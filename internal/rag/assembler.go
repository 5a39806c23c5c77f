// Package rag indexes course material into chunks and assembles those
// chunks into generation context.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/cogniquiz/internal/chunking"
	"github.com/abhisek/cogniquiz/internal/quiz"
)

// ChunkSeparator joins chunks in an assembled context.
const ChunkSeparator = "\n\n"

// ChunkStore persists a course's chunks.
type ChunkStore interface {
	// ReplaceChunks atomically swaps the course's chunks.
	ReplaceChunks(ctx context.Context, courseID string, chunks []chunking.Chunk) error

	// Chunks returns the course's chunks ordered by index.
	Chunks(ctx context.Context, courseID string) ([]chunking.Chunk, error)

	DeleteChunks(ctx context.Context, courseID string) error
}

// ContextCache caches assembled full contexts. Implementations may be
// remote; every failure is logged and otherwise ignored.
type ContextCache interface {
	GetContext(ctx context.Context, courseID string) (string, bool, error)
	SetContext(ctx context.Context, courseID, text string) error
	InvalidateContext(ctx context.Context, courseID string) error
}

// Stats summarizes a course's index.
type Stats struct {
	ChunkCount       int     `json:"chunk_count"`
	TotalCharacters  int     `json:"total_characters"`
	AverageChunkSize float64 `json:"average_chunk_size"`
}

// Assembler indexes course text and serves it back as context.
type Assembler struct {
	chunker *chunking.Chunker
	chunks  ChunkStore
	courses quiz.CourseRepository
	cache   ContextCache
	logger  *slog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithChunker replaces the default 500/50 chunker.
func WithChunker(c *chunking.Chunker) Option {
	return func(a *Assembler) { a.chunker = c }
}

// WithCache enables context caching.
func WithCache(c ContextCache) Option {
	return func(a *Assembler) { a.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) { a.logger = l }
}

// New creates an Assembler over the given stores.
func New(chunks ChunkStore, courses quiz.CourseRepository, opts ...Option) *Assembler {
	a := &Assembler{
		chunker: chunking.New(chunking.DefaultConfig()),
		chunks:  chunks,
		courses: courses,
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Index chunks text and replaces the course's stored chunks. The course is
// registered and any cached context is dropped. Blank text clears the
// index and returns zero.
func (a *Assembler) Index(ctx context.Context, course quiz.Course, text string) (int, error) {
	if course.ID == "" {
		return 0, fmt.Errorf("index: course ID is required")
	}
	if err := a.courses.SaveCourse(ctx, course); err != nil {
		return 0, fmt.Errorf("register course %s: %w", course.ID, err)
	}

	chunks := a.chunker.Chunk(text)
	for i := range chunks {
		chunks[i].CourseID = course.ID
	}
	if len(chunks) == 0 {
		a.logger.WarnContext(ctx, "no content available to index", "course_id", course.ID)
	}

	if err := a.chunks.ReplaceChunks(ctx, course.ID, chunks); err != nil {
		return 0, fmt.Errorf("store chunks for %s: %w", course.ID, err)
	}
	a.invalidate(ctx, course.ID)

	a.logger.InfoContext(ctx, "indexed course",
		"course_id", course.ID,
		"chunks", len(chunks),
		"bytes", len(text))
	return len(chunks), nil
}

// Delete removes the course's chunks.
func (a *Assembler) Delete(ctx context.Context, courseID string) error {
	if err := a.chunks.DeleteChunks(ctx, courseID); err != nil {
		return fmt.Errorf("delete chunks for %s: %w", courseID, err)
	}
	a.invalidate(ctx, courseID)
	return nil
}

// Chunks returns every chunk of the course in index order.
func (a *Assembler) Chunks(ctx context.Context, courseID string) ([]chunking.Chunk, error) {
	chunks, err := a.chunks.Chunks(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("load chunks for %s: %w", courseID, err)
	}
	return chunks, nil
}

// FullContext joins all chunks with a blank line. An unindexed course
// yields "".
func (a *Assembler) FullContext(ctx context.Context, courseID string) (string, error) {
	if a.cache != nil {
		text, ok, err := a.cache.GetContext(ctx, courseID)
		switch {
		case err != nil:
			a.logger.WarnContext(ctx, "context cache read failed", "course_id", courseID, "error", err)
		case ok:
			return text, nil
		}
	}

	chunks, err := a.Chunks(ctx, courseID)
	if err != nil {
		return "", err
	}
	text := Join(chunks)

	if a.cache != nil && text != "" {
		if err := a.cache.SetContext(ctx, courseID, text); err != nil {
			a.logger.WarnContext(ctx, "context cache write failed", "course_id", courseID, "error", err)
		}
	}
	return text, nil
}

// Sampled returns up to k chunks spread evenly across the course: every
// (len/k)-th chunk starting at 0. When k <= 0 or k >= len, all chunks are
// returned.
func (a *Assembler) Sampled(ctx context.Context, courseID string, k int) ([]chunking.Chunk, error) {
	chunks, err := a.Chunks(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return Sample(chunks, k), nil
}

// Sample picks every (len/k)-th chunk starting at index 0, at most k.
func Sample(chunks []chunking.Chunk, k int) []chunking.Chunk {
	if k <= 0 || k >= len(chunks) {
		return chunks
	}
	step := len(chunks) / k
	out := make([]chunking.Chunk, 0, k)
	for i := 0; i < k && i*step < len(chunks); i++ {
		out = append(out, chunks[i*step])
	}
	return out
}

// ByKeyword returns chunks containing keyword, case-insensitively, in index
// order. A limit of 0 means no limit.
func (a *Assembler) ByKeyword(ctx context.Context, courseID, keyword string, limit int) ([]chunking.Chunk, error) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return nil, nil
	}
	chunks, err := a.Chunks(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var out []chunking.Chunk
	for _, c := range chunks {
		if !strings.Contains(strings.ToLower(c.Text), keyword) {
			continue
		}
		out = append(out, c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// IsIndexed reports whether the course has at least one chunk.
func (a *Assembler) IsIndexed(ctx context.Context, courseID string) (bool, error) {
	n, err := a.ChunkCount(ctx, courseID)
	return n > 0, err
}

// ChunkCount returns how many chunks the course has.
func (a *Assembler) ChunkCount(ctx context.Context, courseID string) (int, error) {
	if c, ok := a.chunks.(interface {
		CountChunks(ctx context.Context, courseID string) (int, error)
	}); ok {
		return c.CountChunks(ctx, courseID)
	}
	chunks, err := a.Chunks(ctx, courseID)
	return len(chunks), err
}

// Stats reports chunk count and sizes. Characters are counted as runes.
func (a *Assembler) Stats(ctx context.Context, courseID string) (Stats, error) {
	chunks, err := a.Chunks(ctx, courseID)
	if err != nil {
		return Stats{}, err
	}
	if len(chunks) == 0 {
		return Stats{}, nil
	}
	total := 0
	for _, c := range chunks {
		total += utf8.RuneCountInString(c.Text)
	}
	return Stats{
		ChunkCount:       len(chunks),
		TotalCharacters:  total,
		AverageChunkSize: float64(total) / float64(len(chunks)),
	}, nil
}

// Join concatenates chunk texts with ChunkSeparator.
func Join(chunks []chunking.Chunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return strings.Join(texts, ChunkSeparator)
}

func (a *Assembler) invalidate(ctx context.Context, courseID string) {
	if a.cache == nil {
		return
	}
	if err := a.cache.InvalidateContext(ctx, courseID); err != nil {
		a.logger.WarnContext(ctx, "context cache invalidation failed", "course_id", courseID, "error", err)
	}
}
